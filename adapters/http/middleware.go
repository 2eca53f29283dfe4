package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/auth"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

const (
	GinContextKeyAdminEmail = "adminEmail"
)

func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Rejected token", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyAdminEmail, claims.Email)

		c.Next()
	}
}

func GetAdminEmailFromGinContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(GinContextKeyAdminEmail)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		body := gin.H{"error": apperror.ErrInternal.Error(), "message": "An internal server error occurred"}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			body = appErr.ToJSON()
		}

		var orphanErr *media.RecordCreateError
		if errors.As(err, &orphanErr) {
			body = gin.H{
				"error":      apperror.ErrRecordCreateFailed.Error(),
				"message":    "Image uploaded but the record could not be saved",
				"remote_ref": orphanErr.Asset.RemoteRef,
			}
		}
		var partialErr *media.PartialReorderError
		if errors.As(err, &partialErr) {
			body = gin.H{
				"error":      apperror.ErrPartialReorder.Error(),
				"message":    "Some order updates failed; the collection order is inconsistent",
				"applied":    partialErr.Applied,
				"failed_ids": partialErr.FailedIDs(),
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path), zap.Int("status", status))
		} else {
			log.Warn("Request rejected", zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(err))
		}
		c.AbortWithStatusJSON(status, body)
	}
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
