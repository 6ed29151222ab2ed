//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"parking-hold-engine/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	verifier *jwt.Verifier
}

func NewJWTHelper(secret string) *JWTHelper {
	return &JWTHelper{verifier: jwt.NewVerifier(secret)}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := h.verifier.Sign(userID, time.Hour, time.Now())
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := h.verifier.Sign(userID, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	return token
}
