package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims defines the JWT claims carried by issued bearer tokens. The
// username doubles as the registered subject; identity resolution on
// authenticated requests still looks the user up by that name.
type TokenClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies bearer tokens. Verification is stateless:
// no store round-trip is needed to validate a signature.
type TokenManager interface {
	Issue(userID uint, username string, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// JWTManager signs tokens with HMAC-SHA256.
type JWTManager struct {
	secret []byte
}

// NewJWTManager creates a JWTManager with the given signing secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{secret: []byte(secret)}
}

// Issue creates a signed JWT for the specified user identity.
func (m *JWTManager) Issue(userID uint, username string, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates a JWT and returns its claims.
func (m *JWTManager) Verify(tokenStr string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
