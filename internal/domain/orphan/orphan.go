package orphan

import (
	"context"
	"time"
)

// Asset is a remote media object known to have no live record.
type Asset struct {
	ID         string     `json:"id"`
	Collection string     `json:"collection"`
	RemoteRef  string     `json:"remote_ref"`
	URL        string     `json:"url"`
	Reason     string     `json:"reason"`
	DetectedAt time.Time  `json:"detected_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func (a *Asset) Resolved() bool {
	return a.ResolvedAt != nil
}

const (
	ReasonRecordCreateFailed = "record_create_failed"
	ReasonSweep              = "sweep"
)

type Repository interface {
	// Record stores the asset unless an unresolved entry with the same RemoteRef exists.
	Record(ctx context.Context, a *Asset) error
	FindByID(ctx context.Context, id string) (*Asset, error)
	ListUnresolved(ctx context.Context) ([]*Asset, error)
	MarkResolved(ctx context.Context, id string, at time.Time) error
}
