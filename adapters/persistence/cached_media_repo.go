package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// listCache is the part of *redis.Client the cache decorator needs.
type listCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// cachedMediaRepo is a read-through cache of List in front of another record store.
//
// Entries are keyed by a per-collection generation. Every write bumps the generation, whether or
// not the write succeeded, so a reader that queried before the write can only fill an entry
// nobody reads again. Cache failures are logged and never fail the call.
type cachedMediaRepo struct {
	next   media.RecordStore
	cache  listCache
	ttl    time.Duration
	logger logger.Logger
}

var (
	_ media.RecordStore  = (*cachedMediaRepo)(nil)
	_ media.BatchOrderer = (*cachedMediaRepo)(nil)
	_ media.FreshLister  = (*cachedMediaRepo)(nil)
)

func NewCachedMediaRepo(next media.RecordStore, cache listCache, ttl time.Duration, logger logger.Logger) *cachedMediaRepo {
	return &cachedMediaRepo{next: next, cache: cache, ttl: ttl, logger: logger}
}

func listGenerationKey(collection string) string {
	return "media:list:" + collection + ":gen"
}

func listCacheKey(collection, generation string) string {
	return "media:list:" + collection + ":" + generation
}

// generation returns the collection's current generation, "0" before the first write.
func (r *cachedMediaRepo) generation(ctx context.Context, collection string) (string, error) {
	gen, err := r.cache.Get(ctx, listGenerationKey(collection)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (r *cachedMediaRepo) List(ctx context.Context, collection string) ([]*media.Item, error) {
	gen, err := r.generation(ctx, collection)
	if err != nil {
		r.logger.Warn("List cache generation read failed", zap.String("collection", collection), zap.Error(err))
		return r.next.List(ctx, collection)
	}
	key := listCacheKey(collection, gen)

	raw, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []*media.Item
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		r.logger.Warn("Dropping undecodable list cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("List cache read failed", zap.String("key", key), zap.Error(err))
	}

	items, err := r.next.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		if err := r.cache.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("List cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

// ListFresh skips the cache.
func (r *cachedMediaRepo) ListFresh(ctx context.Context, collection string) ([]*media.Item, error) {
	return r.next.List(ctx, collection)
}

func (r *cachedMediaRepo) Create(ctx context.Context, it *media.Item) (string, error) {
	defer r.invalidate(ctx, it.Collection)
	return r.next.Create(ctx, it)
}

func (r *cachedMediaRepo) Update(ctx context.Context, collection, id string, patch media.Patch) error {
	defer r.invalidate(ctx, collection)
	return r.next.Update(ctx, collection, id, patch)
}

func (r *cachedMediaRepo) Delete(ctx context.Context, collection, id string) error {
	defer r.invalidate(ctx, collection)
	return r.next.Delete(ctx, collection, id)
}

// SetOrders forwards to the wrapped store when it can batch, and reports
// media.ErrBatchUnsupported otherwise.
func (r *cachedMediaRepo) SetOrders(ctx context.Context, collection string, orders map[string]int) error {
	batcher, ok := r.next.(media.BatchOrderer)
	if !ok {
		return media.ErrBatchUnsupported
	}
	defer r.invalidate(ctx, collection)
	return batcher.SetOrders(ctx, collection, orders)
}

func (r *cachedMediaRepo) invalidate(ctx context.Context, collection string) {
	gen, err := r.cache.Incr(context.WithoutCancel(ctx), listGenerationKey(collection)).Result()
	if err != nil {
		r.logger.Warn("List cache invalidation failed", zap.String("collection", collection), zap.Error(err))
		return
	}
	r.logger.Debug("List cache invalidated", zap.String("collection", collection), zap.String("generation", strconv.FormatInt(gen, 10)))
}
