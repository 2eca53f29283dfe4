package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/summit-cms/pkg/auth"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type Handlers struct {
	Auth   *AuthHandler
	Media  *MediaHandler
	Upload *UploadHandler
	Public *PublicHandler
	Orphan *OrphanHandler
	RSS    *RSSHandler
}

func NewRouter(h Handlers, jwtSvc *auth.JWTService, log logger.Logger, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), RequestLogger(log), ErrorMiddleware(log))

	authMiddleware := AuthMiddleware(jwtSvc, log)

	api := router.Group("/api")
	{
		api.GET("/health", h.Public.Health)
		api.GET("/collections/:collection", h.Public.Collection)
		api.GET("/collections/:collection/feed.xml", h.RSS.CollectionFeed)

		upload := api.Group("/upload")
		upload.Use(authMiddleware)
		{
			upload.POST("", h.Upload.Upload)
			upload.DELETE("", h.Upload.Delete)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/auth/login", h.Auth.Login)

			adminPrivate := admin.Group("/")
			adminPrivate.Use(authMiddleware)
			{
				collections := adminPrivate.Group("/collections/:collection")
				{
					collections.GET("/items", h.Media.ListItems)
					collections.POST("/items", h.Media.AddItems)
					collections.PATCH("/items/:id", h.Media.UpdateItem)
					collections.DELETE("/items/:id", h.Media.DeleteItem)
					collections.PUT("/order", h.Media.Reorder)
					collections.POST("/renumber", h.Media.Renumber)
					collections.POST("/sweep", h.Orphan.Sweep)
				}

				orphans := adminPrivate.Group("/orphans")
				{
					orphans.GET("", h.Orphan.List)
					orphans.POST("/:id/purge", h.Orphan.Purge)
				}
			}
		}
	}
	return router
}
