package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Merco74/ScoutPlateform/common/metrics"

	"github.com/IBM/sarama"
)

// Publisher writes registration events to a Kafka topic, keyed by record
// id so every event of one registration lands on the same partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "scouts-inscription"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return config
}

func NewPublisher(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("kafka publisher initialized", "brokers", brokers, "topic", topic)

	return NewPublisherWithProducer(producer, topic, logger, m), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

func (p *Publisher) Publish(ctx context.Context, key string, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.Messaging.RecordPublish(ctx, p.topic, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to send to %s: %w", p.topic, err)
	}

	p.logger.DebugContext(ctx, "event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "key", key)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
