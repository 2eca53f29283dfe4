package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// UploadHandler is the thin proxy in front of the remote media store. Its response shapes are
// fixed by the console, so it writes errors itself instead of going through ErrorMiddleware.
type UploadHandler struct {
	uploader      service.Uploader
	defaultFolder string
	logger        logger.Logger
}

func NewUploadHandler(uploader service.Uploader, defaultFolder string, log logger.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, defaultFolder: defaultFolder, logger: log}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	folder := c.PostForm("folder")
	if folder == "" {
		folder = h.defaultFolder
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", err, zap.String("filename", fileHeader.Filename))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(c.Request.Context(), file, folder)
	if err != nil {
		h.logger.Error("Upload error", err, zap.String("folder", folder), zap.String("filename", fileHeader.Filename))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"url":         result.URL,
		"originalUrl": result.OriginalURL,
		"publicId":    result.PublicID,
		"width":       result.Width,
		"height":      result.Height,
	})
}

// Delete answers success for both "ok" and "not found".
func (h *UploadHandler) Delete(c *gin.Context) {
	var req DeleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PublicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No public ID provided"})
		return
	}

	result, err := h.uploader.Delete(c.Request.Context(), req.PublicID)
	if err != nil {
		h.logger.Error("Delete error", err, zap.String("public_id", req.PublicID))
		msg := "Failed to delete image"
		if errors.Is(err, service.ErrDeleteRejected) {
			msg = "Failed to delete from remote store"
		}
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  gin.H{"result": string(result)},
	})
}
