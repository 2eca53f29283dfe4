package event

import (
	"context"
	"time"
)

type MediaEventType string

const (
	MediaEventTypeAdded     MediaEventType = "media.added"
	MediaEventTypeRemoved   MediaEventType = "media.removed"
	MediaEventTypeReordered MediaEventType = "media.reordered"
	MediaEventTypeUpdated   MediaEventType = "media.updated"
	MediaEventTypeOrphaned  MediaEventType = "media.orphaned"
)

type MediaEventPayload struct {
	EventType  MediaEventType `json:"event_type"`
	Collection string         `json:"collection"`
	ItemID     string         `json:"item_id,omitempty"`
	RemoteRef  string         `json:"remote_ref,omitempty"`
	URL        string         `json:"url,omitempty"`
	OrderedIDs []string       `json:"ordered_ids,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher is satisfied by KafkaProducerClient and NopPublisher.
type Publisher interface {
	PublishMediaEvent(ctx context.Context, payload MediaEventPayload) error
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishMediaEvent(context.Context, MediaEventPayload) error { return nil }
