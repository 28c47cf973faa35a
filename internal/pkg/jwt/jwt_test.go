package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret-key", "1h")

	tokenString, expiresAt, err := svc.GenerateAccessToken(
		"user-1", "employee-1", "company-1", "admin",
	)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	assert.Greater(t, expiresAt, time.Now().Unix())

	// The token must verify against the same JWTAuth the router's
	// Verifier middleware uses, and round-trip every identity claim.
	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "employee-1", claims["employee_id"])
	assert.Equal(t, "company-1", claims["company_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestGenerateAccessTokenBadExpiration(t *testing.T) {
	svc := NewJWTService("test-secret-key", "not-a-duration")

	_, _, err := svc.GenerateAccessToken("user-1", "employee-1", "company-1", "employee")
	assert.Error(t, err)
}
