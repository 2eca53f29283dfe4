package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	feedUC "github.com/khoahotran/summit-cms/internal/application/usecase/feed"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type RSSHandler struct {
	feedUseCase *feedUC.CollectionFeedUseCase
	logger      logger.Logger
}

func NewRSSHandler(uc *feedUC.CollectionFeedUseCase, log logger.Logger) *RSSHandler {
	return &RSSHandler{
		feedUseCase: uc,
		logger:      log,
	}
}

func (h *RSSHandler) CollectionFeed(c *gin.Context) {
	collection := c.Param("collection")

	feed, err := h.feedUseCase.Execute(c.Request.Context(), collection)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidInput) {
			c.Error(apperror.NewNotFound("collection", collection))
			return
		}
		c.Error(apperror.NewInternal("failed to generate RSS feed", err))
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}
