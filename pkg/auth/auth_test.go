package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	token, err := svc.GenerateToken("admin@summit.test")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@summit.test", claims.Email)
	assert.Equal(t, "admin@summit.test", claims.Subject)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("one", time.Minute).GenerateToken("admin@summit.test")
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Minute).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute)
	// negative lifespans fall back to the default, so build an expired service by hand
	svc.tokenLifespan = -time.Minute

	token, err := svc.GenerateToken("admin@summit.test")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
