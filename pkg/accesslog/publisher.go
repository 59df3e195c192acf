package accesslog

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic is the Kafka topic access-log events are published to.
const DefaultTopic = "gateway.access-logs"

// Publisher emits access-log events. Publish must never block the caller on
// broker acknowledgement and must never fail the request path.
type Publisher interface {
	Publish(event Event)
}

// KafkaConfig contains configuration for the Kafka publisher and consumer.
type KafkaConfig struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic is the access-log topic. Default: DefaultTopic.
	Topic string

	// GroupID is the consumer group for the dashboard consumer.
	// Default: "dashboard".
	GroupID string

	// OnDeliveryFailure, when set, is called with the number of events in
	// each batch that could not be delivered. Used to feed metrics.
	OnDeliveryFailure func(count int)
}

// KafkaPublisher publishes events to Kafka, keyed by client IP so a consumer
// observes per-client events in enqueue order.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a fire-and-forget Kafka publisher.
//
// The writer runs in async mode: WriteMessages enqueues and returns
// immediately, and delivery failures surface through the completion
// callback, where they are logged at WARN. The request that produced the
// event has long been served by then.
func NewKafkaPublisher(cfg *KafkaConfig) *KafkaPublisher {
	logger := slog.Default().With("component", "accesslog.publisher")

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same key -> same partition
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("access log publish failed",
					"messages", len(messages),
					"error", err,
				)
				if cfg.OnDeliveryFailure != nil {
					cfg.OnDeliveryFailure(len(messages))
				}
			}
		},
	}

	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish enqueues one event. Serialization failures and writer errors are
// logged and swallowed; access logging must never degrade proxying.
func (p *KafkaPublisher) Publish(event Event) {
	body, err := EncodeEvent(event)
	if err != nil {
		p.logger.Warn("access log encode failed", "error", err)
		return
	}

	err = p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.ClientIP),
		Value: body,
		Time:  event.Timestamp,
	})
	if err != nil {
		// In async mode this only happens when the writer is closed or the
		// message is invalid; delivery errors arrive via Completion.
		p.logger.Warn("access log enqueue failed", "error", err)
	}
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event. Used when Kafka is disabled and in
// tests that do not care about access logs.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(Event) {}
