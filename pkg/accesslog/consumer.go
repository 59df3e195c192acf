package accesslog

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// Consumer reads the access-log topic and hands each event to a handler,
// in production the event-stream registry's Broadcast.
//
// It joins its own consumer group (default "dashboard") starting from the
// latest offset: a live-traffic view wants events published after the
// gateway starts, not a replay of history.
type Consumer struct {
	reader  *kafka.Reader
	handler func(Event)
	logger  *slog.Logger
}

// NewConsumer creates a consumer over the given Kafka configuration.
func NewConsumer(cfg *KafkaConfig, handler func(Event)) *Consumer {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "dashboard"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  slog.Default().With("component", "accesslog.consumer"),
	}
}

// Start launches the consume loop. It runs until ctx is cancelled, then
// closes the reader. Undecodable messages are skipped with a warning.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer c.reader.Close()

		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Warn("access log consume failed", "error", err)
				continue
			}

			event, err := DecodeEvent(msg.Value)
			if err != nil {
				c.logger.Warn("access log decode failed",
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err,
				)
				continue
			}

			c.handler(event)
		}
	}()
}
