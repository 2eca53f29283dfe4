package media

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
)

type AddInput struct {
	Collection string
	File       io.Reader
	Filename   string
	Metadata   map[string]any
}

// Add uploads the file and appends a record for it at order = current collection size. Other
// items are not renumbered.
//
// Failures: apperror.ErrUploadFailed when the upload fails (nothing to clean up), or
// *media.RecordCreateError when the upload succeeded but the record was not created; the
// asset is then orphaned and a media.orphaned event is published for reconciliation.
func (r *ItemRepository) Add(ctx context.Context, in AddInput) (*media.Item, error) {
	ctx, span := tracer.Start(ctx, "Add", trace.WithAttributes(attribute.String("collection", in.Collection)))
	defer span.End()

	col, err := r.collection(in.Collection)
	if err != nil {
		return nil, spanError(span, err)
	}
	if in.File == nil {
		return nil, spanError(span, apperror.NewInvalidInput("file is required", nil))
	}

	existing, err := r.fresh(ctx, col.Key)
	if err != nil {
		return nil, spanError(span, apperror.NewInternal("failed to read collection size", err))
	}

	uploaded, err := r.uploader.Upload(ctx, in.File, col.Folder)
	if err != nil {
		return nil, spanError(span, apperror.NewUploadFailure("upload to remote media store failed", err))
	}

	metadata := col.WithDefaults(in.Metadata)
	if in.Filename != "" {
		metadata["original_filename"] = in.Filename
	}

	now := r.now()
	item := &media.Item{
		Collection:  col.Key,
		RemoteRef:   uploaded.PublicID,
		URL:         uploaded.URL,
		OriginalURL: uploaded.OriginalURL,
		Order:       len(existing),
		Width:       uploaded.Width,
		Height:      uploaded.Height,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := r.store.Create(ctx, item)
	if err != nil {
		orphanErr := &media.RecordCreateError{
			Asset: media.OrphanedAsset{Collection: col.Key, RemoteRef: uploaded.PublicID, URL: uploaded.URL},
			Err:   err,
		}
		r.logger.Error("Record create failed after upload, remote asset orphaned", err,
			zap.String("collection", col.Key), zap.String("remote_ref", uploaded.PublicID))
		r.publish(ctx, event.MediaEventPayload{
			EventType:  event.MediaEventTypeOrphaned,
			Collection: col.Key,
			RemoteRef:  uploaded.PublicID,
			URL:        uploaded.URL,
			Reason:     err.Error(),
		})
		return nil, spanError(span, orphanErr)
	}
	item.ID = id

	span.SetAttributes(attribute.String("item_id", id), attribute.Int("order", item.Order))
	r.publish(ctx, event.MediaEventPayload{
		EventType:  event.MediaEventTypeAdded,
		Collection: col.Key,
		ItemID:     id,
		RemoteRef:  item.RemoteRef,
		URL:        item.URL,
	})
	return item, nil
}
