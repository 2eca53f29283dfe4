package service

import (
	"context"
	"errors"
	"io"
)

// DeleteResult mirrors the remote store's destroy outcome.
type DeleteResult string

const (
	DeleteResultOK       DeleteResult = "ok"
	DeleteResultNotFound DeleteResult = "not found"
)

// ErrDeleteRejected is returned when the remote store answers a destroy call with anything
// other than "ok" or "not found".
var ErrDeleteRejected = errors.New("remote store rejected delete")

type UploadResult struct {
	// URL is the delivery URL with format and quality hints applied.
	URL         string `json:"url"`
	OriginalURL string `json:"originalUrl"`
	PublicID    string `json:"publicId"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Uploader is the remote media store contract.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) (DeleteResult, error)
}

// AssetLister is implemented by remote stores that can enumerate what lives under a folder.
type AssetLister interface {
	ListAssets(ctx context.Context, folder string) ([]string, error)
}
