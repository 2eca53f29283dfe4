package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/auth"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

func TestLoginUseCase(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	uc := NewLoginUseCase(AdminCredentials{Email: "admin@summit.test", PasswordHash: hash}, jwtSvc, logger.NewNopLogger())
	ctx := context.Background()

	out, err := uc.Execute(ctx, LoginInput{Email: " Admin@Summit.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@summit.test", claims.Email)

	_, err = uc.Execute(ctx, LoginInput{Email: "admin@summit.test", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = uc.Execute(ctx, LoginInput{Email: "other@summit.test", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginUseCase_NotConfigured(t *testing.T) {
	uc := NewLoginUseCase(AdminCredentials{}, auth.NewJWTService("k", 0), logger.NewNopLogger())
	_, err := uc.Execute(context.Background(), LoginInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
