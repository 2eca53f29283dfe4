package http

import (
	"time"

	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/internal/domain/orphan"
)

// Media item DTOs
type MediaItemDTO struct {
	ID          string         `json:"id"`
	Collection  string         `json:"collection"`
	PublicID    string         `json:"publicId"`
	URL         string         `json:"url"`
	OriginalURL string         `json:"originalUrl,omitempty"`
	Order       int            `json:"order"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func ToMediaItemDTO(it *media.Item) MediaItemDTO {
	return MediaItemDTO{
		ID:          it.ID,
		Collection:  it.Collection,
		PublicID:    it.RemoteRef,
		URL:         it.URL,
		OriginalURL: it.OriginalURL,
		Order:       it.Order,
		Width:       it.Width,
		Height:      it.Height,
		Metadata:    it.Metadata,
		CreatedAt:   it.CreatedAt,
	}
}

func ToMediaItemDTOs(items []*media.Item) []MediaItemDTO {
	out := make([]MediaItemDTO, len(items))
	for i, it := range items {
		out[i] = ToMediaItemDTO(it)
	}
	return out
}

type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type UpdateItemRequest struct {
	Metadata map[string]any `json:"metadata" binding:"required"`
}

type DeleteUploadRequest struct {
	PublicID string `json:"publicId"`
}

// Orphan DTOs
type OrphanDTO struct {
	ID         string     `json:"id"`
	Collection string     `json:"collection"`
	PublicID   string     `json:"publicId"`
	URL        string     `json:"url,omitempty"`
	Reason     string     `json:"reason"`
	DetectedAt time.Time  `json:"detectedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

func ToOrphanDTO(a *orphan.Asset) OrphanDTO {
	return OrphanDTO{
		ID:         a.ID,
		Collection: a.Collection,
		PublicID:   a.RemoteRef,
		URL:        a.URL,
		Reason:     a.Reason,
		DetectedAt: a.DetectedAt,
		ResolvedAt: a.ResolvedAt,
	}
}
