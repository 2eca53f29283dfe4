package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mediaUC "github.com/khoahotran/summit-cms/internal/application/usecase/media"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// MediaHandler serves the admin console's collection management.
type MediaHandler struct {
	items  *mediaUC.ItemRepository
	logger logger.Logger
}

func NewMediaHandler(items *mediaUC.ItemRepository, log logger.Logger) *MediaHandler {
	return &MediaHandler{items: items, logger: log}
}

func (h *MediaHandler) ListItems(c *gin.Context) {
	items, err := h.items.List(c.Request.Context(), c.Param("collection"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ToMediaItemDTOs(items)})
}

// AddItems uploads every "file" part in order, so a multi-select keeps its selection order.
// Stops at the first failure; items added before it stay.
func (h *MediaHandler) AddItems(c *gin.Context) {
	collection := c.Param("collection")

	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewInvalidInput("multipart form is required", err))
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		c.Error(apperror.NewInvalidInput("'file' is required", nil))
		return
	}

	var reqData struct {
		Metadata map[string]any `json:"metadata"`
	}
	if dataJSON := c.PostForm("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &reqData); err != nil {
			c.Error(apperror.NewInvalidInput("'data' field is not valid JSON", err))
			return
		}
	}

	added := make([]*media.Item, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			c.Error(apperror.NewInternal("failed to open file", err))
			return
		}
		item, err := h.items.Add(c.Request.Context(), mediaUC.AddInput{
			Collection: collection,
			File:       file,
			Filename:   fh.Filename,
			Metadata:   reqData.Metadata,
		})
		file.Close()
		if err != nil {
			h.logger.Warn("Add stopped", zap.String("collection", collection), zap.Int("added", len(added)), zap.Int("requested", len(files)))
			c.Error(err)
			return
		}
		added = append(added, item)
	}

	c.JSON(http.StatusCreated, gin.H{"items": ToMediaItemDTOs(added)})
}

func (h *MediaHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'metadata' is required", err))
		return
	}

	item, err := h.items.UpdateMetadata(c.Request.Context(), c.Param("collection"), c.Param("id"), req.Metadata)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToMediaItemDTO(item))
}

// DeleteItem removes the item then compacts the remaining orders.
func (h *MediaHandler) DeleteItem(c *gin.Context) {
	ctx := c.Request.Context()
	collection := c.Param("collection")

	if _, err := h.items.RemoveByID(ctx, collection, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	if err := h.items.Renumber(ctx, collection); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MediaHandler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'ids' is required", err))
		return
	}

	ctx := c.Request.Context()
	collection := c.Param("collection")
	if err := h.items.Reorder(ctx, collection, req.IDs); err != nil {
		c.Error(err)
		return
	}
	items, err := h.items.List(ctx, collection)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ToMediaItemDTOs(items)})
}

func (h *MediaHandler) Renumber(c *gin.Context) {
	if err := h.items.Renumber(c.Request.Context(), c.Param("collection")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
