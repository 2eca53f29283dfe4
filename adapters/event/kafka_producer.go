package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/pkg/logger"
	"go.uber.org/zap"
)

const (
	TopicMediaEvents = "media.events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	MediaEventsWriter messageWriter
	logger            logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	mediaWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicMediaEvents,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka producer successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{MediaEventsWriter: mediaWriter, logger: log}, nil
}

// PublishMediaEvent writes one event keyed by collection, so events of a collection stay in
// partition order.
func (c *KafkaProducerClient) PublishMediaEvent(ctx context.Context, payload MediaEventPayload) error {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal media event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(payload.Collection),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(payload.EventType)},
		},
	}
	if err := c.MediaEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write media event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.MediaEventsWriter != nil {
		if err := c.MediaEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka producer")
}
