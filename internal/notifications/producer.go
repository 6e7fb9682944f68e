package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher defines the contract for publishing ticket lifecycle events
type Publisher interface {
	Publish(ctx context.Context, event *LifecycleEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka lifecycle producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	ClientID         string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// ProducerConfigFrom fills the producer defaults around the app config
func ProducerConfigFrom(cfg config.KafkaConfig) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          cfg.Brokers,
		Topic:            cfg.Topic,
		ClientID:         cfg.ClientID,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// KafkaPublisher publishes lifecycle events with a synchronous producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher creates a new Kafka lifecycle publisher
func NewKafkaPublisher(cfg *KafkaProducerConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	if cfg.ClientID != "" {
		saramaConfig.ClientID = cfg.ClientID
	}

	// Producer configuration
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	saramaConfig.Producer.Compression = cfg.CompressionType
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = cfg.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = cfg.MaxMessageBytes

	// Idempotent producers need a single in-flight request
	if cfg.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one ticketed event on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("📤 Kafka lifecycle producer created", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return NewKafkaPublisherWithProducer(producer, cfg.Topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends one lifecycle event keyed by ticketed event id
func (p *KafkaPublisher) Publish(ctx context.Context, event *LifecycleEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send lifecycle event to Kafka: %w", err)
	}

	logger.GetDefault().DebugContext(ctx, "📤 Lifecycle event published",
		"topic", p.topic, "partition", partition, "offset", offset, "type", event.Type,
		"ticketed_event_id", event.TicketedEventID.String())
	return nil
}

func (p *KafkaPublisher) createHeaders(event *LifecycleEvent) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("ticketed_event_id"), Value: []byte(event.TicketedEventID.String())},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("producer"), Value: []byte("ticketing-service")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}

	if event.TransactionID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("transaction_id"),
			Value: []byte(event.TransactionID.String()),
		})
	}

	return headers
}

// Close closes the Kafka producer
func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	logger.GetDefault().Info("📤 Kafka lifecycle producer closed")
	return nil
}

// NoopPublisher drops events; used when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *LifecycleEvent) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }

// PublishAsync fires publication after a commit. Failures are logged and never
// reach the caller: the state change is already durable.
func PublishAsync(ctx context.Context, publisher Publisher, event *LifecycleEvent) {
	if publisher == nil || event == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := publisher.Publish(ctx, event); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "Failed to publish lifecycle event", err, map[string]interface{}{
				"type":              event.Type,
				"ticketed_event_id": event.TicketedEventID.String(),
			})
		}
	}()
}
