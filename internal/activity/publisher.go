package activity

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Publisher publishes entity-change events. Publishing is best effort:
// callers log failures and never fail the originating request on them.
type Publisher interface {
	PublishActivity(ctx context.Context, entity, entityID, action, actor string) error
	Close() error
}

// KafkaPublisherConfig contains configuration for the Kafka activity publisher
type KafkaPublisherConfig struct {
	Brokers         []string
	Topic           string
	RetryMax        int
	TimeoutMs       int
	RequiredAcks    sarama.RequiredAcks
	CompressionType sarama.CompressionCodec
	MaxMessageBytes int
}

// DefaultKafkaPublisherConfig returns a default publisher configuration
func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:         []string{"localhost:9092"},
		Topic:           "memoir-activity",
		RetryMax:        3,
		TimeoutMs:       10000, // 10 seconds
		RequiredAcks:    sarama.WaitForAll,
		CompressionType: sarama.CompressionSnappy,
		MaxMessageBytes: 1000000, // 1MB
	}
}

// KafkaPublisher publishes activity records to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaPublisherConfig
}

// NewKafkaPublisher creates a new Kafka activity publisher
func NewKafkaPublisher(config *KafkaPublisherConfig) (Publisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Hash partitioner keeps per-record ordering
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("Kafka activity publisher created successfully")
	return &KafkaPublisher{
		producer: producer,
		config:   config,
	}, nil
}

// PublishActivity publishes a single entity-change event
func (p *KafkaPublisher) PublishActivity(ctx context.Context, entity, entityID, action, actor string) error {
	record := &Record{
		ID:         uuid.New().String(),
		Entity:     entity,
		EntityID:   entityID,
		Action:     action,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}

	messageBytes, err := record.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal activity record: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(record.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: record.OccurredAt,
	}

	if _, _, err := p.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to publish activity record: %w", err)
	}

	return nil
}

// Close shuts down the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured;
// the server runs fine without an audit trail.
type NoopPublisher struct{}

func NewNoopPublisher() Publisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) PublishActivity(ctx context.Context, entity, entityID, action, actor string) error {
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
