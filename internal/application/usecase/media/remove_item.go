package media

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
)

// Remove deletes the remote asset, then the record. A "not found" from the remote store counts
// as success and the record is still deleted. Any other remote failure returns
// apperror.ErrDeletionFailed and leaves the record in place. Remove does not compact orders;
// call Renumber afterwards.
func (r *ItemRepository) Remove(ctx context.Context, item *media.Item) error {
	ctx, span := tracer.Start(ctx, "Remove", trace.WithAttributes(
		attribute.String("collection", item.Collection),
		attribute.String("item_id", item.ID),
	))
	defer span.End()

	col, err := r.collection(item.Collection)
	if err != nil {
		return spanError(span, err)
	}
	l := r.logger.With(zap.String("collection", col.Key), zap.String("item_id", item.ID), zap.String("remote_ref", item.RemoteRef))

	if item.RemoteRef != "" {
		result, err := r.uploader.Delete(ctx, item.RemoteRef)
		if err != nil {
			l.Error("Remote asset delete failed, record kept", err)
			return spanError(span, apperror.NewDeletionFailure(item.RemoteRef, err))
		}
		if result == service.DeleteResultNotFound {
			l.Warn("Remote asset already gone, deleting record")
		}
	} else {
		l.Warn("Item has no remote ref, deleting record only")
	}

	if err := r.store.Delete(ctx, col.Key, item.ID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return spanError(span, apperror.NewInternal("remote asset deleted but record delete failed", err))
		}
		l.Warn("Record already deleted")
	}

	r.publish(ctx, event.MediaEventPayload{
		EventType:  event.MediaEventTypeRemoved,
		Collection: col.Key,
		ItemID:     item.ID,
		RemoteRef:  item.RemoteRef,
	})
	return nil
}

// RemoveByID looks the item up and removes it.
func (r *ItemRepository) RemoveByID(ctx context.Context, collection, id string) (*media.Item, error) {
	item, err := r.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if err := r.Remove(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
