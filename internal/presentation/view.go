// Package presentation maps stored media items to display-ready entries for the public pages.
package presentation

import (
	"math"

	"github.com/khoahotran/summit-cms/internal/domain/media"
)

// Constraints drive the masonry sizing: every entry is scaled to ColumnWidth and its height
// clamped to [MinHeight, MaxHeight].
type Constraints struct {
	ColumnWidth int
	MinHeight   int
	MaxHeight   int
}

func DefaultConstraints() Constraints {
	return Constraints{ColumnWidth: 300, MinHeight: 200, MaxHeight: 600}
}

type ViewEntry struct {
	ID       string         `json:"id"`
	Img      string         `json:"img"`
	URL      string         `json:"url"`
	Height   int            `json:"height"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DisplayHeight scales width x height to the column width. Unknown dimensions are treated as
// square.
func (c Constraints) DisplayHeight(width, height int) int {
	ratio := 1.0
	if width > 0 && height > 0 {
		ratio = float64(height) / float64(width)
	}
	h := int(math.Round(float64(c.ColumnWidth) * ratio))
	if c.MaxHeight > 0 && h > c.MaxHeight {
		h = c.MaxHeight
	}
	if h < c.MinHeight {
		h = c.MinHeight
	}
	return h
}

func ToViewModel(item *media.Item, c Constraints) ViewEntry {
	return ViewEntry{
		ID:       item.ID,
		Img:      item.URL,
		URL:      "#",
		Height:   c.DisplayHeight(item.Width, item.Height),
		Metadata: item.Metadata,
	}
}

func ToViewModels(items []*media.Item, c Constraints) []ViewEntry {
	out := make([]ViewEntry, 0, len(items))
	for _, it := range items {
		out = append(out, ToViewModel(it, c))
	}
	return out
}

// WithFallback returns live when it has entries, fallback otherwise.
func WithFallback[T any](live, fallback []T) []T {
	if len(live) > 0 {
		return live
	}
	return fallback
}
