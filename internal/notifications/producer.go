package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"clustermap/internal/shared/config"

	"github.com/IBM/sarama"
)

// Producer is the contract for publishing seatmap build events. Publishing
// is strictly best-effort: a failed publish is logged by the caller and
// never fails a build step.
type Producer interface {
	PublishBuildEvent(ctx context.Context, event *BuildEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka build-event producer
type KafkaProducerConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	Timeout      time.Duration
	RequiredAcks sarama.RequiredAcks
	Compression  sarama.CompressionCodec
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "seatmap-build-events",
		RetryMax:     3,
		Timeout:      10 * time.Second,
		RequiredAcks: sarama.WaitForLocal,
		Compression:  sarama.CompressionSnappy,
	}
}

// KafkaProducer publishes build events to Kafka, partitioned by venue id so
// per-venue event order is preserved.
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// NewProducer builds a producer from application config. Without brokers
// configured it returns a no-op producer, keeping Kafka optional.
func NewProducer(cfg config.KafkaConfig) (Producer, error) {
	if len(cfg.Brokers) == 0 {
		return NoopProducer{}, nil
	}

	kc := DefaultKafkaProducerConfig()
	kc.Brokers = cfg.Brokers
	if cfg.Topic != "" {
		kc.Topic = cfg.Topic
	}
	return NewKafkaProducer(kc)
}

// NewKafkaProducer creates a Kafka build-event producer
func NewKafkaProducer(config *KafkaProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.Compression
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout

	// Hash partitioner keyed by venue id keeps each venue's events ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("Kafka build-event producer created (topic=%s)", config.Topic)
	return &KafkaProducer{producer: producer, config: config}, nil
}

// PublishBuildEvent publishes a single build event to Kafka
func (kp *KafkaProducer) PublishBuildEvent(ctx context.Context, event *BuildEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal build event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(event.VenueID),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: event.At,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send build event to Kafka: %w", err)
	}

	log.Printf("Build event published - Topic: %s, Partition: %d, Offset: %d, Type: %s, Venue: %s",
		kp.config.Topic, partition, offset, event.Type, event.VenueID)

	return nil
}

// Close shuts down the underlying Kafka producer
func (kp *KafkaProducer) Close() error {
	return kp.producer.Close()
}

// NoopProducer drops all events. Used when Kafka is not configured.
type NoopProducer struct{}

func (NoopProducer) PublishBuildEvent(ctx context.Context, event *BuildEvent) error { return nil }

func (NoopProducer) Close() error { return nil }
