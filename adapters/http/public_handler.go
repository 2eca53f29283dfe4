package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mediaUC "github.com/khoahotran/summit-cms/internal/application/usecase/media"
	"github.com/khoahotran/summit-cms/internal/presentation"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// PublicHandler feeds the public pages. A failing or empty collection degrades to its static
// fallback set instead of an error.
type PublicHandler struct {
	items       *mediaUC.ItemRepository
	constraints presentation.Constraints
	logger      logger.Logger
}

func NewPublicHandler(items *mediaUC.ItemRepository, constraints presentation.Constraints, log logger.Logger) *PublicHandler {
	return &PublicHandler{items: items, constraints: constraints, logger: log}
}

func (h *PublicHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *PublicHandler) Collection(c *gin.Context) {
	col, ok := h.items.Catalog().Lookup(c.Param("collection"))
	if !ok {
		c.Error(apperror.NewNotFound("collection", c.Param("collection")))
		return
	}

	items, err := h.items.ListCached(c.Request.Context(), col.Key)
	if err != nil {
		h.logger.Warn("Collection list failed, serving fallback", zap.String("collection", col.Key), zap.Error(err))
		items = nil
	}

	live := presentation.ToViewModels(items, h.constraints)
	entries := presentation.WithFallback(live, presentation.Fallback(col.Key, h.constraints))

	c.JSON(http.StatusOK, gin.H{
		"collection": col.Key,
		"items":      entries,
		"fallback":   len(live) == 0,
	})
}
