package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type postgresMediaRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

var (
	_ media.RecordStore  = (*postgresMediaRepo)(nil)
	_ media.BatchOrderer = (*postgresMediaRepo)(nil)
)

func NewPostgresMediaRepo(db *pgxpool.Pool, logger logger.Logger) *postgresMediaRepo {
	return &postgresMediaRepo{db: db, logger: logger}
}

var psqlMedia = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const mediaColumns = "id, collection, remote_ref, url, original_url, sort_order, width, height, metadata, created_at, updated_at"

func scanMediaItem(row pgx.Row, l logger.Logger) (*media.Item, error) {
	it := &media.Item{}
	var id uuid.UUID
	var metadataBytes []byte

	err := row.Scan(
		&id, &it.Collection, &it.RemoteRef, &it.URL, &it.OriginalURL,
		&it.Order, &it.Width, &it.Height, &metadataBytes,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("media item", "")
		}
		return nil, apperror.NewInternal("failed to scan media item row", err)
	}
	it.ID = id.String()

	if err := json.Unmarshal(metadataBytes, &it.Metadata); err != nil || it.Metadata == nil {
		if err != nil {
			l.Warn("Bad metadata json, using empty map", zap.String("item_id", it.ID), zap.Error(err))
		}
		it.Metadata = map[string]any{}
	}
	return it, nil
}

func (r *postgresMediaRepo) Create(ctx context.Context, it *media.Item) (string, error) {
	metadataBytes, err := json.Marshal(it.Metadata)
	if err != nil {
		return "", apperror.NewInternal("failed to marshal media metadata", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO media_items (id, collection, remote_ref, url, original_url, sort_order, width, height, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.Exec(ctx, query,
		id, it.Collection, it.RemoteRef, it.URL, it.OriginalURL, it.Order,
		it.Width, it.Height, metadataBytes, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return "", apperror.NewInternal("failed to insert media item", err)
	}
	return id.String(), nil
}

func (r *postgresMediaRepo) List(ctx context.Context, collection string) ([]*media.Item, error) {
	builder := psqlMedia.Select(mediaColumns).
		From("media_items").
		Where(sq.Eq{"collection": collection}).
		OrderBy("sort_order ASC", "created_at ASC", "id ASC")

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list media items query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query media items", err)
	}
	defer rows.Close()

	items := make([]*media.Item, 0)
	for rows.Next() {
		it, err := scanMediaItem(rows, r.logger)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating media item rows", err)
	}
	return items, nil
}

func (r *postgresMediaRepo) Update(ctx context.Context, collection, id string, patch media.Patch) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.NewNotFound("media item", id)
	}
	if patch.IsEmpty() {
		return nil
	}

	builder := psqlMedia.Update("media_items").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": uid, "collection": collection})
	if patch.Order != nil {
		builder = builder.Set("sort_order", *patch.Order)
	}
	if patch.Metadata != nil {
		metadataBytes, err := json.Marshal(patch.Metadata)
		if err != nil {
			return apperror.NewInternal("failed to marshal media metadata", err)
		}
		builder = builder.Set("metadata", metadataBytes)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update media item query", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewInternal("failed to update media item", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("media item", id)
	}
	return nil
}

func (r *postgresMediaRepo) Delete(ctx context.Context, collection, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.NewNotFound("media item", id)
	}
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM media_items WHERE id = $1 AND collection = $2`, uid, collection)
	if err != nil {
		return apperror.NewInternal("failed to delete media item", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("media item", id)
	}
	return nil
}

// SetOrders rewrites every given order inside one transaction; a missing id rolls the whole
// batch back.
func (r *postgresMediaRepo) SetOrders(ctx context.Context, collection string, orders map[string]int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.NewInternal("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	ids := make([]string, 0, len(orders))
	for id, order := range orders {
		uid, err := uuid.Parse(id)
		if err != nil {
			return apperror.NewNotFound("media item", id)
		}
		batch.Queue(
			`UPDATE media_items SET sort_order = $1, updated_at = NOW() WHERE id = $2 AND collection = $3`,
			order, uid, collection,
		)
		ids = append(ids, id)
	}

	br := tx.SendBatch(ctx, batch)
	for _, id := range ids {
		cmdTag, err := br.Exec()
		if err != nil {
			br.Close()
			return apperror.NewInternal("failed to update media item order", err)
		}
		if cmdTag.RowsAffected() == 0 {
			br.Close()
			return apperror.NewNotFound("media item", id)
		}
	}
	if err := br.Close(); err != nil {
		return apperror.NewInternal("failed to close order batch", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewInternal("failed to commit order batch", err)
	}
	return nil
}
