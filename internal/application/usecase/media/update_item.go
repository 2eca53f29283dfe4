package media

import (
	"context"
	"maps"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
)

// UpdateMetadata merges metadata into the item's existing metadata. A key mapped to nil is
// removed. ID, RemoteRef and Order are never touched.
func (r *ItemRepository) UpdateMetadata(ctx context.Context, collection, id string, metadata map[string]any) (*media.Item, error) {
	ctx, span := tracer.Start(ctx, "UpdateMetadata")
	defer span.End()

	if len(metadata) == 0 {
		return nil, spanError(span, apperror.NewInvalidInput("metadata is required", nil))
	}

	item, err := r.Get(ctx, collection, id)
	if err != nil {
		return nil, spanError(span, err)
	}

	merged := make(map[string]any, len(item.Metadata)+len(metadata))
	maps.Copy(merged, item.Metadata)
	for k, v := range metadata {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	if err := r.store.Update(ctx, item.Collection, item.ID, media.Patch{Metadata: merged}); err != nil {
		return nil, spanError(span, err)
	}
	item.Metadata = merged
	item.UpdatedAt = r.now()

	r.publish(ctx, event.MediaEventPayload{
		EventType:  event.MediaEventTypeUpdated,
		Collection: item.Collection,
		ItemID:     item.ID,
	})
	return item, nil
}
