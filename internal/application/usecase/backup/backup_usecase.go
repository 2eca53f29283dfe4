package backup

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

const Folder = "backups/database"

// DumpFunc produces a database dump in pg_dump custom format.
type DumpFunc func(ctx context.Context, dsn string) ([]byte, error)

// PgDump shells out to pg_dump, which must be on PATH.
func PgDump(ctx context.Context, dsn string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump", "--dbname="+dsn, "--format=c", "--table=media_items", "--table=orphaned_assets")

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pg_dump: %w: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}

// BackupUseCase dumps the record tables and stores the dump in the remote media store.
type BackupUseCase struct {
	dsn      string
	dump     DumpFunc
	uploader service.Uploader
	logger   logger.Logger
}

func NewBackupUseCase(dsn string, dump DumpFunc, uploader service.Uploader, log logger.Logger) *BackupUseCase {
	return &BackupUseCase{
		dsn:      dsn,
		dump:     dump,
		uploader: uploader,
		logger:   log,
	}
}

func (uc *BackupUseCase) Execute(ctx context.Context) (*service.UploadResult, error) {
	uc.logger.Info("Starting database backup...")

	if uc.dsn == "" {
		return nil, fmt.Errorf("backup needs the postgres record store (db.dsn is empty)")
	}

	data, err := uc.dump(ctx, uc.dsn)
	if err != nil {
		uc.logger.Error("Database dump failed", err)
		return nil, err
	}

	result, err := uc.uploader.Upload(ctx, bytes.NewReader(data), Folder)
	if err != nil {
		uc.logger.Error("Failed to upload backup", err)
		return nil, err
	}

	// Dumps are served as stored.
	if result.OriginalURL != "" {
		result.URL = result.OriginalURL
	}

	uc.logger.Info("Database backup completed and uploaded successfully",
		zap.String("url", result.URL),
		zap.String("public_id", result.PublicID),
		zap.Int("bytes", len(data)),
	)
	return result, nil
}
