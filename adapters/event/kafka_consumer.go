package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

const fetchRetryDelay = time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MediaEventHandler processes one decoded event. A returned error leaves the message
// uncommitted.
type MediaEventHandler func(ctx context.Context, payload MediaEventPayload) error

type MediaEventConsumer struct {
	reader  messageReader
	handler MediaEventHandler
	logger  logger.Logger
}

func NewMediaEventConsumer(cfg config.Config, handler MediaEventHandler, log logger.Logger) *MediaEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicMediaEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &MediaEventConsumer{reader: reader, handler: handler, logger: log}
}

// Run consumes until ctx is cancelled.
func (c *MediaEventConsumer) Run(ctx context.Context) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicMediaEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		l := c.logger.With(zap.String("topic", msg.Topic), zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset))

		var payload MediaEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			l.Error("Failed to unmarshal event, skipping", err)
			c.commit(ctx, msg)
			continue
		}

		if err := c.handler(ctx, payload); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			l.Error("Failed to process event", err, zap.String("event_type", string(payload.EventType)))
			continue
		}

		c.commit(ctx, msg)
	}
}

func (c *MediaEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func (c *MediaEventConsumer) Close() error {
	return c.reader.Close()
}
