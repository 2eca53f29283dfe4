package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// ItemLister is the read side of the media item repository.
type ItemLister interface {
	List(ctx context.Context, collection string) ([]*media.Item, error)
	Catalog() *media.Catalog
}

// OrphanReconciler tracks remote assets that have no live record and deletes them on request.
type OrphanReconciler struct {
	orphans   orphan.Repository
	items     ItemLister
	uploader  service.Uploader
	lister    service.AssetLister
	autoPurge bool
	logger    logger.Logger
	now       func() time.Time
}

// NewOrphanReconciler wires the reconciler. lister may be nil when the remote store cannot
// enumerate assets; Sweep is then unavailable.
func NewOrphanReconciler(
	orphans orphan.Repository,
	items ItemLister,
	uploader service.Uploader,
	lister service.AssetLister,
	autoPurge bool,
	log logger.Logger,
) *OrphanReconciler {
	return &OrphanReconciler{
		orphans:   orphans,
		items:     items,
		uploader:  uploader,
		lister:    lister,
		autoPurge: autoPurge,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleEvent is the worker entry point for media.events.
func (uc *OrphanReconciler) HandleEvent(ctx context.Context, payload event.MediaEventPayload) error {
	l := uc.logger.With(
		zap.String("event_type", string(payload.EventType)),
		zap.String("collection", payload.Collection),
	)

	if payload.EventType != event.MediaEventTypeOrphaned {
		l.Info("Media event observed", zap.String("item_id", payload.ItemID), zap.Strings("ordered_ids", payload.OrderedIDs))
		return nil
	}
	if payload.RemoteRef == "" {
		l.Warn("Orphan event without remote ref, skip.")
		return nil
	}

	asset := &orphan.Asset{
		Collection: payload.Collection,
		RemoteRef:  payload.RemoteRef,
		URL:        payload.URL,
		Reason:     orphan.ReasonRecordCreateFailed,
		DetectedAt: payload.OccurredAt,
	}
	if err := uc.orphans.Record(ctx, asset); err != nil {
		return err
	}
	l.Warn("Recorded orphaned asset", zap.String("orphan_id", asset.ID), zap.String("remote_ref", asset.RemoteRef))

	if !uc.autoPurge {
		return nil
	}
	_, err := uc.Purge(ctx, asset.ID)
	return err
}

// Sweep compares the remote folder of a collection with its live records and records every
// remote asset nobody references. It returns the assets recorded by this sweep.
func (uc *OrphanReconciler) Sweep(ctx context.Context, collection string) ([]*orphan.Asset, error) {
	if uc.lister == nil {
		return nil, apperror.NewInvalidInput("remote media store cannot list assets", nil)
	}
	col, ok := uc.items.Catalog().Lookup(collection)
	if !ok {
		return nil, apperror.NewInvalidInput("unknown collection '"+collection+"'", nil)
	}

	// Remote before records: an upload racing the sweep is either missing from the listing or
	// already recorded. Purge checks live refs again before deleting anything.
	remote, err := uc.lister.ListAssets(ctx, col.Folder)
	if err != nil {
		return nil, apperror.NewInternal("failed to list remote assets", err)
	}

	live, err := uc.items.List(ctx, col.Key)
	if err != nil {
		return nil, apperror.NewInternal("failed to list live records", err)
	}
	referenced := liveRefs(live)

	found := make([]*orphan.Asset, 0)
	for _, ref := range remote {
		if _, ok := referenced[ref]; ok {
			continue
		}
		asset := &orphan.Asset{
			Collection: col.Key,
			RemoteRef:  ref,
			Reason:     orphan.ReasonSweep,
			DetectedAt: uc.now(),
		}
		if err := uc.orphans.Record(ctx, asset); err != nil {
			return found, err
		}
		found = append(found, asset)
	}

	uc.logger.Info("Sweep finished",
		zap.String("collection", col.Key),
		zap.Int("remote", len(remote)),
		zap.Int("live", len(live)),
		zap.Int("orphaned", len(found)),
	)
	return found, nil
}

// Purge deletes the orphan's remote asset and marks it resolved. Purging a resolved orphan is a
// no-op. When a live item references the asset again (a sweep raced an upload) the orphan is
// resolved and the asset kept.
func (uc *OrphanReconciler) Purge(ctx context.Context, id string) (*orphan.Asset, error) {
	asset, err := uc.orphans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.Resolved() {
		return asset, nil
	}

	inUse, err := uc.referenced(ctx, asset)
	if err != nil {
		return nil, err
	}
	if inUse {
		at := uc.now()
		if err := uc.orphans.MarkResolved(ctx, asset.ID, at); err != nil {
			return nil, err
		}
		asset.ResolvedAt = &at
		uc.logger.Warn("Orphan is referenced by a live item, resolved without deleting",
			zap.String("orphan_id", asset.ID),
			zap.String("remote_ref", asset.RemoteRef),
		)
		return asset, nil
	}

	result, err := uc.uploader.Delete(ctx, asset.RemoteRef)
	if err != nil {
		return nil, apperror.NewDeletionFailure(asset.RemoteRef, err)
	}

	at := uc.now()
	if err := uc.orphans.MarkResolved(ctx, asset.ID, at); err != nil {
		return nil, err
	}
	asset.ResolvedAt = &at

	uc.logger.Info("Purged orphaned asset",
		zap.String("orphan_id", asset.ID),
		zap.String("remote_ref", asset.RemoteRef),
		zap.String("result", string(result)),
	)
	return asset, nil
}

// referenced reloads the orphan's collection and reports whether a live item uses its ref. An
// orphan of a collection no longer in the catalog has no live items.
func (uc *OrphanReconciler) referenced(ctx context.Context, asset *orphan.Asset) (bool, error) {
	if _, ok := uc.items.Catalog().Lookup(asset.Collection); !ok {
		return false, nil
	}
	live, err := uc.items.List(ctx, asset.Collection)
	if err != nil {
		return false, apperror.NewInternal("failed to list live records", err)
	}
	_, ok := liveRefs(live)[asset.RemoteRef]
	return ok, nil
}

func liveRefs(items []*media.Item) map[string]struct{} {
	refs := make(map[string]struct{}, len(items))
	for _, it := range items {
		refs[it.RemoteRef] = struct{}{}
	}
	return refs
}

func (uc *OrphanReconciler) List(ctx context.Context) ([]*orphan.Asset, error) {
	return uc.orphans.ListUnresolved(ctx)
}
