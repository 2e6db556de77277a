package utils

import "github.com/gin-gonic/gin"

// Msg writes the flat {"msg": ...} JSON body the API contract uses for every
// informational and error response.
func Msg(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, gin.H{"msg": msg})
}

// AbortMsg writes a message body and stops the handler chain, for middleware.
func AbortMsg(ctx *gin.Context, status int, msg string) {
	ctx.AbortWithStatusJSON(status, gin.H{"msg": msg})
}
