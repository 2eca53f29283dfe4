package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/summit-cms/internal/application/usecase/reconcile"
	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type OrphanHandler struct {
	reconciler *reconcile.OrphanReconciler
	logger     logger.Logger
}

func NewOrphanHandler(reconciler *reconcile.OrphanReconciler, log logger.Logger) *OrphanHandler {
	return &OrphanHandler{reconciler: reconciler, logger: log}
}

func toOrphanDTOs(assets []*orphan.Asset) []OrphanDTO {
	out := make([]OrphanDTO, len(assets))
	for i, a := range assets {
		out[i] = ToOrphanDTO(a)
	}
	return out
}

func (h *OrphanHandler) List(c *gin.Context) {
	assets, err := h.reconciler.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphans": toOrphanDTOs(assets)})
}

func (h *OrphanHandler) Purge(c *gin.Context) {
	asset, err := h.reconciler.Purge(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToOrphanDTO(asset))
}

func (h *OrphanHandler) Sweep(c *gin.Context) {
	found, err := h.reconciler.Sweep(c.Request.Context(), c.Param("collection"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphans": toOrphanDTOs(found)})
}
