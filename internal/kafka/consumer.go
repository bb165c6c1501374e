package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// VisitEventHandler processes one decoded visit event. Returning an error
// stops the consume loop.
type VisitEventHandler func(ctx context.Context, event VisitEvent) error

type Consumer struct {
	reader *kafka.Reader
	log    zerolog.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log zerolog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads visit events until the context is canceled. A message that
// does not decode as a VisitEvent is logged and skipped, never retried.
func (c *Consumer) Consume(ctx context.Context, handler VisitEventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := c.handle(ctx, msg, handler); err != nil {
			return err
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler VisitEventHandler) error {
	var event VisitEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Warn().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("skip undecodable visit event")
		return nil
	}
	return handler(ctx, event)
}
