package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/apperror"
)

type OrphanStore struct {
	mu     sync.Mutex
	assets map[string]*orphan.Asset
}

func NewOrphanStore() *OrphanStore {
	return &OrphanStore{assets: make(map[string]*orphan.Asset)}
}

var _ orphan.Repository = (*OrphanStore)(nil)

func (s *OrphanStore) Record(_ context.Context, a *orphan.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.assets {
		if existing.RemoteRef == a.RemoteRef && !existing.Resolved() {
			a.ID = existing.ID
			return nil
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.DetectedAt.IsZero() {
		a.DetectedAt = time.Now().UTC()
	}
	c := *a
	s.assets[a.ID] = &c
	return nil
}

func (s *OrphanStore) FindByID(_ context.Context, id string) (*orphan.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assets[id]
	if !ok {
		return nil, apperror.NewNotFound("orphaned asset", id)
	}
	c := *a
	return &c, nil
}

func (s *OrphanStore) ListUnresolved(_ context.Context) ([]*orphan.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*orphan.Asset, 0)
	for _, a := range s.assets {
		if !a.Resolved() {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	return out, nil
}

func (s *OrphanStore) MarkResolved(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assets[id]
	if !ok {
		return apperror.NewNotFound("orphaned asset", id)
	}
	a.ResolvedAt = &at
	return nil
}
