package media

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"
)

// Item is one entry of an ordered media collection. ID and RemoteRef never change once set;
// edits only ever touch Order and Metadata.
type Item struct {
	ID          string         `json:"id"`
	Collection  string         `json:"collection"`
	RemoteRef   string         `json:"remote_ref"`
	URL         string         `json:"url"`
	OriginalURL string         `json:"original_url"`
	Order       int            `json:"order"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Patch is the set of mutable fields. A nil field is left untouched.
type Patch struct {
	Order    *int
	Metadata map[string]any
}

func OrderPatch(order int) Patch {
	return Patch{Order: &order}
}

func (p Patch) IsEmpty() bool {
	return p.Order == nil && p.Metadata == nil
}

// RecordStore is the ordered record store contract: per-collection create, list sorted by
// order ascending, update and delete. No transactions are assumed.
type RecordStore interface {
	Create(ctx context.Context, item *Item) (string, error)
	List(ctx context.Context, collection string) ([]*Item, error)
	Update(ctx context.Context, collection, id string, patch Patch) error
	Delete(ctx context.Context, collection, id string) error
}

// BatchOrderer is implemented by stores that can rewrite the order of many records in one
// atomic write.
type BatchOrderer interface {
	SetOrders(ctx context.Context, collection string, orders map[string]int) error
}

// FreshLister is implemented by caching stores. ListFresh always reads the underlying store;
// mutations and the reads they depend on go through it.
type FreshLister interface {
	ListFresh(ctx context.Context, collection string) ([]*Item, error)
}

// ErrBatchUnsupported is returned by store decorators whose inner store cannot batch.
var ErrBatchUnsupported = errors.New("batch order writes not supported")

// SortByOrder sorts ascending by Order. Ties (possible after a raced reorder) fall back to
// CreatedAt then ID so listing stays deterministic.
func SortByOrder(items []*Item) {
	slices.SortStableFunc(items, func(a, b *Item) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// IDs returns the ids of items in their current order.
func IDs(items []*Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
