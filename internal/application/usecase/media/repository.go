package media

import (
	"context"
	"iter"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

var tracer = otel.Tracer("media_repository")

const publishTimeout = 5 * time.Second

// ItemRepository presents one ordered collection as "upload a file, get a displayable,
// reorderable, deletable item", hiding the remote store + record store split. It takes no
// locks: callers are expected to serialize structural mutations per collection.
type ItemRepository struct {
	store     media.RecordStore
	uploader  service.Uploader
	catalog   *media.Catalog
	publisher event.Publisher
	logger    logger.Logger
	now       func() time.Time
}

func NewItemRepository(
	store media.RecordStore,
	uploader service.Uploader,
	catalog *media.Catalog,
	publisher event.Publisher,
	log logger.Logger,
) *ItemRepository {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &ItemRepository{
		store:     store,
		uploader:  uploader,
		catalog:   catalog,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *ItemRepository) Catalog() *media.Catalog {
	return r.catalog
}

func (r *ItemRepository) collection(key string) (media.Collection, error) {
	col, ok := r.catalog.Lookup(key)
	if !ok {
		return media.Collection{}, apperror.NewInvalidInput("unknown collection '"+key+"'", nil)
	}
	return col, nil
}

// List returns the collection sorted ascending by order. Every call runs a fresh query against
// the record store, bypassing any list cache in front of it.
func (r *ItemRepository) List(ctx context.Context, collection string) ([]*media.Item, error) {
	return r.list(ctx, "List", collection, r.fresh)
}

// ListCached is List for display-only readers (public pages, feeds). It may be served from a
// list cache and must never feed a mutation.
func (r *ItemRepository) ListCached(ctx context.Context, collection string) ([]*media.Item, error) {
	return r.list(ctx, "ListCached", collection, r.store.List)
}

func (r *ItemRepository) list(
	ctx context.Context,
	spanName, collection string,
	query func(ctx context.Context, collection string) ([]*media.Item, error),
) ([]*media.Item, error) {
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	col, err := r.collection(collection)
	if err != nil {
		return nil, spanError(span, err)
	}
	items, err := query(ctx, col.Key)
	if err != nil {
		return nil, spanError(span, err)
	}
	span.SetAttributes(attribute.Int("count", len(items)))
	return items, nil
}

// fresh reads the record store itself, skipping a caching decorator when there is one.
func (r *ItemRepository) fresh(ctx context.Context, collection string) ([]*media.Item, error) {
	if fl, ok := r.store.(media.FreshLister); ok {
		return fl.ListFresh(ctx, collection)
	}
	return r.store.List(ctx, collection)
}

// All is the lazy form of List. Each range over the returned sequence issues a new query; a
// failed query yields a single (nil, err) pair.
func (r *ItemRepository) All(ctx context.Context, collection string) iter.Seq2[*media.Item, error] {
	return func(yield func(*media.Item, error) bool) {
		items, err := r.List(ctx, collection)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}

// Get finds one item by id through List, since the record store contract has no point lookup.
func (r *ItemRepository) Get(ctx context.Context, collection, id string) (*media.Item, error) {
	items, err := r.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, apperror.NewNotFound("media item", id)
}

func (r *ItemRepository) publish(ctx context.Context, payload event.MediaEventPayload) {
	payload.OccurredAt = r.now()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := r.publisher.PublishMediaEvent(ctx, payload); err != nil {
		r.logger.Error("Failed to publish media event", err,
			zap.String("event_type", string(payload.EventType)),
			zap.String("collection", payload.Collection),
			zap.String("item_id", payload.ItemID),
		)
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
