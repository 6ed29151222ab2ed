package middleware

import (
	"log/slog"
	"strings"

	"parking-hold-engine/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware reads the caller's user id from a bearer token issued by the auth provider.
// Identity management lives outside the engine, so a missing or bad token never rejects a request.
type AuthMiddleware struct {
	verifier *jwt.Verifier
}

const ctxUserIDKey = "user_id"

func NewAuthMiddleware(verifier *jwt.Verifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// OptionalAuth authenticates the request if a token is present, but does not abort on failure.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.verifier.Enabled() {
			c.Next()
			return
		}

		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			// No token present; continue without setting context.
			c.Next()
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			slog.Debug("ignoring invalid bearer token", "error", err.Error())
			c.Next()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}
