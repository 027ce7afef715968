package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/vestflow/internal/domain"
)

func signToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	claims := Claims{
		Subject: "reporting",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTManager_Verify(t *testing.T) {
	manager := NewJWTManager("test-secret")

	t.Run("valid token", func(t *testing.T) {
		signed := signToken(t, "test-secret", time.Now().Add(time.Hour))

		claims, err := manager.Verify(signed)
		require.NoError(t, err)
		assert.Equal(t, "reporting", claims.Subject)
	})

	t.Run("expired token", func(t *testing.T) {
		signed := signToken(t, "test-secret", time.Now().Add(-time.Hour))

		_, err := manager.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := signToken(t, "other-secret", time.Now().Add(time.Hour))

		_, err := manager.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := manager.Verify("not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
