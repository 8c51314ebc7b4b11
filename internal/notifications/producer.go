package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventx/internal/shared/config"

	"github.com/IBM/sarama"
)

// Producer interface defines the contract for publishing ticket messages
type Producer interface {
	PublishLifecycle(ctx context.Context, message *LifecycleMessage) error
	PublishRefund(ctx context.Context, instruction *RefundInstruction) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// KafkaProducerConfig contains configuration for the Kafka producer
type KafkaProducerConfig struct {
	Brokers          []string
	LifecycleTopic   string
	RefundTopic      string
	DeadLetterTopic  string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		LifecycleTopic:   "ticket-lifecycle",
		RefundTopic:      "refund-instructions",
		DeadLetterTopic:  "ticket-lifecycle-dlq",
		RetryMax:         3,
		TimeoutMs:        10000,             // 10 seconds
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// ProducerConfigFromApp maps application config onto the producer config
func ProducerConfigFromApp(cfg config.KafkaConfig) *KafkaProducerConfig {
	producerConfig := DefaultKafkaProducerConfig()
	if len(cfg.Brokers) > 0 {
		producerConfig.Brokers = cfg.Brokers
	}
	if cfg.LifecycleTopic != "" {
		producerConfig.LifecycleTopic = cfg.LifecycleTopic
	}
	if cfg.RefundTopic != "" {
		producerConfig.RefundTopic = cfg.RefundTopic
	}
	if cfg.DeadLetterTopic != "" {
		producerConfig.DeadLetterTopic = cfg.DeadLetterTopic
	}
	if cfg.RetryMax > 0 {
		producerConfig.RetryMax = cfg.RetryMax
	}
	if cfg.TimeoutMs > 0 {
		producerConfig.TimeoutMs = cfg.TimeoutMs
	}
	return producerConfig
}

// KafkaProducer handles publishing ticket messages to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// NewKafkaProducer creates a new Kafka producer
func NewKafkaProducer(config *KafkaProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()

	// Producer configuration
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Enable idempotent producer
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one event's messages on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("📤 Kafka ticket producer created successfully")
	return &KafkaProducer{
		producer: producer,
		config:   config,
	}, nil
}

// PublishLifecycle publishes a single lifecycle message to Kafka
func (kp *KafkaProducer) PublishLifecycle(ctx context.Context, message *LifecycleMessage) error {
	messageBytes, err := message.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle message: %w", err)
	}

	kafkaMessage := &sarama.ProducerMessage{
		Topic:     kp.config.LifecycleTopic,
		Key:       sarama.StringEncoder(message.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   lifecycleHeaders(message),
		Timestamp: message.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(kafkaMessage)
	if err != nil {
		return fmt.Errorf("failed to send lifecycle message to Kafka: %w", err)
	}

	log.Printf("📤 Lifecycle message published - Topic: %s, Partition: %d, Offset: %d, Type: %s, Event: %s",
		kp.config.LifecycleTopic, partition, offset, message.Type, message.EventID)

	return nil
}

// PublishRefund publishes a single refund instruction to Kafka
func (kp *KafkaProducer) PublishRefund(ctx context.Context, instruction *RefundInstruction) error {
	messageBytes, err := instruction.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal refund instruction: %w", err)
	}

	kafkaMessage := &sarama.ProducerMessage{
		Topic:     kp.config.RefundTopic,
		Key:       sarama.StringEncoder(instruction.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   refundHeaders(instruction),
		Timestamp: instruction.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(kafkaMessage)
	if err != nil {
		return fmt.Errorf("failed to send refund instruction to Kafka: %w", err)
	}

	log.Printf("📤 Refund instruction published - Topic: %s, Partition: %d, Offset: %d, Ticket: %s, Amount: %s",
		kp.config.RefundTopic, partition, offset, instruction.TicketID, instruction.Amount)

	return nil
}

// Close closes the Kafka producer
func (kp *KafkaProducer) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
		log.Printf("📤 Kafka ticket producer closed")
	}
	return nil
}

// HealthCheck performs a health check on the Kafka producer
func (kp *KafkaProducer) HealthCheck(ctx context.Context) error {
	if kp.producer == nil {
		return fmt.Errorf("health check failed - producer is nil")
	}
	if kp.config.LifecycleTopic == "" {
		return fmt.Errorf("health check failed - lifecycle topic not configured")
	}
	if kp.config.RefundTopic == "" {
		return fmt.Errorf("health check failed - refund topic not configured")
	}
	return nil
}

func lifecycleHeaders(message *LifecycleMessage) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("message_id"), Value: []byte(message.ID.String())},
		{Key: []byte("message_type"), Value: []byte(message.Type)},
		{Key: []byte("event_id"), Value: []byte(message.EventID.String())},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("producer"), Value: []byte("eventx-tickets")},
		{Key: []byte("created_at"), Value: []byte(message.CreatedAt.Format(time.RFC3339))},
	}
}

func refundHeaders(instruction *RefundInstruction) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("instruction_id"), Value: []byte(instruction.ID.String())},
		{Key: []byte("ticket_id"), Value: []byte(instruction.TicketID.String())},
		{Key: []byte("event_id"), Value: []byte(instruction.EventID.String())},
		{Key: []byte("reason"), Value: []byte(instruction.Reason)},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("producer"), Value: []byte("eventx-tickets")},
		{Key: []byte("created_at"), Value: []byte(instruction.CreatedAt.Format(time.RFC3339))},
	}
}
