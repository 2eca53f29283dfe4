package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpAdapter "github.com/khoahotran/summit-cms/adapters/http"
	authUC "github.com/khoahotran/summit-cms/internal/application/usecase/auth"
	feedUC "github.com/khoahotran/summit-cms/internal/application/usecase/feed"
	"github.com/khoahotran/summit-cms/internal/bootstrap"
	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/internal/presentation"
	"github.com/khoahotran/summit-cms/pkg/auth"
	"github.com/khoahotran/summit-cms/pkg/logger"
	"github.com/khoahotran/summit-cms/pkg/tracing"
)

const serviceName = "summit-cms-api"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start Summit CMS API Server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Dependencies
	app, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot wire application", err)
	}
	defer app.Close()

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	loginUseCase := authUC.NewLoginUseCase(authUC.AdminCredentials{
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	}, jwtSvc, appLogger)

	constraints := presentation.DefaultConstraints()
	if cfg.Presentation.ColumnWidth > 0 {
		constraints = presentation.Constraints{
			ColumnWidth: cfg.Presentation.ColumnWidth,
			MinHeight:   cfg.Presentation.MinHeight,
			MaxHeight:   cfg.Presentation.MaxHeight,
		}
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.Handlers{
		Auth:   httpAdapter.NewAuthHandler(loginUseCase, appLogger),
		Media:  httpAdapter.NewMediaHandler(app.Items, appLogger),
		Upload: httpAdapter.NewUploadHandler(app.Uploader, cfg.Media.DefaultFolder, appLogger),
		Public: httpAdapter.NewPublicHandler(app.Items, constraints, appLogger),
		Orphan: httpAdapter.NewOrphanHandler(app.Reconciler, appLogger),
		RSS:    httpAdapter.NewRSSHandler(feedUC.NewCollectionFeedUseCase(app.Items, cfg.App.PublicURL, appLogger), appLogger),
	}, jwtSvc, appLogger, serviceName)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
