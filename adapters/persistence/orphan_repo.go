package persistence

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type postgresOrphanRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

var _ orphan.Repository = (*postgresOrphanRepo)(nil)

func NewPostgresOrphanRepo(db *pgxpool.Pool, logger logger.Logger) *postgresOrphanRepo {
	return &postgresOrphanRepo{db: db, logger: logger}
}

const orphanColumns = "id, collection, remote_ref, url, reason, detected_at, resolved_at"

func scanOrphan(row pgx.Row) (*orphan.Asset, error) {
	a := &orphan.Asset{}
	var id uuid.UUID
	err := row.Scan(&id, &a.Collection, &a.RemoteRef, &a.URL, &a.Reason, &a.DetectedAt, &a.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("orphaned asset", "")
		}
		return nil, apperror.NewInternal("failed to scan orphaned asset row", err)
	}
	a.ID = id.String()
	return a, nil
}

// Record relies on the partial unique index over unresolved remote refs.
func (r *postgresOrphanRepo) Record(ctx context.Context, a *orphan.Asset) error {
	id := uuid.New()
	if a.DetectedAt.IsZero() {
		a.DetectedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO orphaned_assets (id, collection, remote_ref, url, reason, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (remote_ref) WHERE resolved_at IS NULL DO NOTHING
	`
	cmdTag, err := r.db.Exec(ctx, query, id, a.Collection, a.RemoteRef, a.URL, a.Reason, a.DetectedAt)
	if err != nil {
		return apperror.NewInternal("failed to record orphaned asset", err)
	}
	if cmdTag.RowsAffected() > 0 {
		a.ID = id.String()
		return nil
	}

	var existing uuid.UUID
	err = r.db.QueryRow(ctx,
		`SELECT id FROM orphaned_assets WHERE remote_ref = $1 AND resolved_at IS NULL`, a.RemoteRef,
	).Scan(&existing)
	if err != nil {
		return apperror.NewInternal("failed to read existing orphaned asset", err)
	}
	a.ID = existing.String()
	return nil
}

func (r *postgresOrphanRepo) FindByID(ctx context.Context, id string) (*orphan.Asset, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NewNotFound("orphaned asset", id)
	}
	row := r.db.QueryRow(ctx, `SELECT `+orphanColumns+` FROM orphaned_assets WHERE id = $1`, uid)
	a, err := scanOrphan(row)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NewNotFound("orphaned asset", id)
	}
	return a, err
}

func (r *postgresOrphanRepo) ListUnresolved(ctx context.Context) ([]*orphan.Asset, error) {
	sql, args, err := psqlMedia.Select(orphanColumns).
		From("orphaned_assets").
		Where(sq.Eq{"resolved_at": nil}).
		OrderBy("detected_at ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list orphans query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query orphaned assets", err)
	}
	defer rows.Close()

	out := make([]*orphan.Asset, 0)
	for rows.Next() {
		a, err := scanOrphan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating orphaned asset rows", err)
	}
	return out, nil
}

func (r *postgresOrphanRepo) MarkResolved(ctx context.Context, id string, at time.Time) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.NewNotFound("orphaned asset", id)
	}
	cmdTag, err := r.db.Exec(ctx, `UPDATE orphaned_assets SET resolved_at = $2 WHERE id = $1`, uid, at)
	if err != nil {
		return apperror.NewInternal("failed to resolve orphaned asset", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("orphaned asset", id)
	}
	return nil
}
