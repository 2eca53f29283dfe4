package media

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
)

// Reorder assigns order = index to every id in orderedIDs. orderedIDs must be a permutation of
// the live ids; anything else is rejected with apperror.ErrInvalidOrdering before any write.
//
// Stores implementing media.BatchOrderer get one atomic write. Otherwise one update per item is
// issued and a failure part way returns *media.PartialReorderError.
func (r *ItemRepository) Reorder(ctx context.Context, collection string, orderedIDs []string) error {
	ctx, span := tracer.Start(ctx, "Reorder", trace.WithAttributes(
		attribute.String("collection", collection),
		attribute.Int("count", len(orderedIDs)),
	))
	defer span.End()

	col, err := r.collection(collection)
	if err != nil {
		return spanError(span, err)
	}

	current, err := r.fresh(ctx, col.Key)
	if err != nil {
		return spanError(span, apperror.NewInternal("failed to list collection for reorder", err))
	}
	if err := validateOrdering(current, orderedIDs); err != nil {
		return spanError(span, err)
	}

	orders := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		orders[id] = i
	}
	if err := r.writeOrders(ctx, col.Key, orderedIDs, orders); err != nil {
		return spanError(span, err)
	}

	r.publish(ctx, event.MediaEventPayload{
		EventType:  event.MediaEventTypeReordered,
		Collection: col.Key,
		OrderedIDs: orderedIDs,
	})
	return nil
}

// Renumber restores a dense zero-based order sequence, writing only items whose stored order
// differs from their position. It is the follow-up to Remove.
func (r *ItemRepository) Renumber(ctx context.Context, collection string) error {
	ctx, span := tracer.Start(ctx, "Renumber", trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	col, err := r.collection(collection)
	if err != nil {
		return spanError(span, err)
	}

	current, err := r.fresh(ctx, col.Key)
	if err != nil {
		return spanError(span, apperror.NewInternal("failed to list collection for renumber", err))
	}

	ids := make([]string, 0)
	orders := make(map[string]int)
	for i, it := range current {
		if it.Order != i {
			ids = append(ids, it.ID)
			orders[it.ID] = i
		}
	}
	span.SetAttributes(attribute.Int("changed", len(ids)))
	if len(ids) == 0 {
		return nil
	}

	if err := r.writeOrders(ctx, col.Key, ids, orders); err != nil {
		return spanError(span, err)
	}

	r.logger.Info("Renumbered collection", zap.String("collection", col.Key), zap.Int("changed", len(ids)))
	r.publish(ctx, event.MediaEventPayload{
		EventType:  event.MediaEventTypeReordered,
		Collection: col.Key,
		OrderedIDs: media.IDs(current),
		Reason:     "renumber",
	})
	return nil
}

func (r *ItemRepository) writeOrders(ctx context.Context, collection string, ids []string, orders map[string]int) error {
	if batcher, ok := r.store.(media.BatchOrderer); ok {
		err := batcher.SetOrders(ctx, collection, orders)
		if err == nil {
			return nil
		}
		if !errors.Is(err, media.ErrBatchUnsupported) {
			return apperror.NewInternal("atomic order write failed, no order changed", err)
		}
	}

	partial := &media.PartialReorderError{Collection: collection, Failed: map[string]error{}}
	for _, id := range ids {
		if err := r.store.Update(ctx, collection, id, media.OrderPatch(orders[id])); err != nil {
			partial.Failed[id] = err
			continue
		}
		partial.Applied = append(partial.Applied, id)
	}
	if len(partial.Failed) > 0 {
		r.logger.Error("Order write partially applied", partial,
			zap.String("collection", collection),
			zap.Strings("failed_ids", partial.FailedIDs()),
		)
		return partial
	}
	return nil
}

func validateOrdering(current []*media.Item, orderedIDs []string) error {
	if len(orderedIDs) != len(current) {
		return apperror.NewInvalidOrdering(fmt.Sprintf("expected %d ids, got %d", len(current), len(orderedIDs)))
	}
	live := make(map[string]bool, len(current))
	for _, it := range current {
		live[it.ID] = false
	}
	for _, id := range orderedIDs {
		seen, ok := live[id]
		if !ok {
			return apperror.NewInvalidOrdering(fmt.Sprintf("id '%s' is not in the collection", id))
		}
		if seen {
			return apperror.NewInvalidOrdering(fmt.Sprintf("id '%s' appears more than once", id))
		}
		live[id] = true
	}
	return nil
}
