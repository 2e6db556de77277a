package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in
	// the Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the token subject inside the Gin context.
	ContextUsernameKey = "username"
)

// AuthRequired ensures the request carries a valid bearer token and exposes
// the token identity to handlers via the context.
func AuthRequired(tokens utils.TokenManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortMsg(ctx, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.AbortMsg(ctx, http.StatusUnauthorized, "Invalid Authorization Header")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.AbortMsg(ctx, http.StatusUnauthorized, "Invalid Authorization Header")
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			utils.AbortMsg(ctx, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// Username returns the authenticated token subject from the context.
func Username(ctx *gin.Context) (string, bool) {
	v, ok := ctx.Get(ContextUsernameKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}
