package auth

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/auth"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// AdminCredentials is the single console operator, taken from configuration.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

type LoginUseCase struct {
	admin  AdminCredentials
	jwtSvc *auth.JWTService
	logger logger.Logger
}

func NewLoginUseCase(admin AdminCredentials, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		admin:  admin,
		jwtSvc: jwtSvc,
		logger: log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	_, span := tracer.Start(ctx, "Execute")
	defer span.End()

	if uc.admin.Email == "" || uc.admin.PasswordHash == "" {
		err := apperror.NewUnauthorized("admin login is not configured", nil)
		span.RecordError(err)
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(input.Email), uc.admin.Email) ||
		!auth.CheckPasswordHash(input.Password, uc.admin.PasswordHash) {
		err := apperror.NewUnauthorized("email or password is incorrect", nil)
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(uc.admin.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("email", uc.admin.Email))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("email", uc.admin.Email))
	return &LoginOutput{AccessToken: token}, nil
}
