// Package memstore is an in-process record store. It backs the "memory" records driver and the
// use case tests.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]*media.Item
	now         func() time.Time
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]*media.Item),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var (
	_ media.RecordStore  = (*Store)(nil)
	_ media.BatchOrderer = (*Store)(nil)
)

func clone(it *media.Item) *media.Item {
	c := *it
	c.Metadata = maps.Clone(it.Metadata)
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return &c
}

func (s *Store) Create(_ context.Context, item *media.Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := clone(item)
	rec.ID = uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	rec.UpdatedAt = rec.CreatedAt

	col, ok := s.collections[rec.Collection]
	if !ok {
		col = make(map[string]*media.Item)
		s.collections[rec.Collection] = col
	}
	col[rec.ID] = rec
	return rec.ID, nil
}

func (s *Store) List(_ context.Context, collection string) ([]*media.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	items := make([]*media.Item, 0, len(col))
	for _, it := range col {
		items = append(items, clone(it))
	}
	media.SortByOrder(items)
	return items, nil
}

func (s *Store) Update(_ context.Context, collection, id string, patch media.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return apperror.NewNotFound("media item", id)
	}
	if patch.Order != nil {
		rec.Order = *patch.Order
	}
	if patch.Metadata != nil {
		rec.Metadata = maps.Clone(patch.Metadata)
	}
	rec.UpdatedAt = s.now()
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return apperror.NewNotFound("media item", id)
	}
	delete(s.collections[collection], id)
	return nil
}

// SetOrders applies every order or none of them.
func (s *Store) SetOrders(_ context.Context, collection string, orders map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[collection]
	for id := range orders {
		if _, ok := col[id]; !ok {
			return apperror.NewNotFound("media item", id)
		}
	}
	now := s.now()
	for id, order := range orders {
		col[id].Order = order
		col[id].UpdatedAt = now
	}
	return nil
}
