// Package kafkaclient publishes JSON events to a Kafka topic.
package kafkaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// KafkaWriter defines the interface for a Kafka message writer.
// This allows for easy mocking in unit tests.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer writes JSON-encoded events to a single topic.
type KafkaProducer struct {
	writer KafkaWriter
	topic  string
}

// NewKafkaProducer creates a producer for topic on broker.
func NewKafkaProducer(broker, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}
	return NewKafkaProducerWithWriter(writer, topic)
}

func NewKafkaProducerWithWriter(writer KafkaWriter, topic string) *KafkaProducer {
	return &KafkaProducer{writer: writer, topic: topic}
}

// Publish encodes event as JSON and writes it under key.
func (kp *KafkaProducer) Publish(ctx context.Context, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	}
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to topic %q: %w", kp.topic, err)
	}

	log.WithFields(log.Fields{"topic": kp.topic, "key": key}).Info("Published message")
	return nil
}

// Close flushes pending messages and closes the writer.
func (kp *KafkaProducer) Close() error {
	if err := kp.writer.Close(); err != nil {
		log.WithError(err).Error("Failed to close Kafka writer")
		return err
	}
	log.Info("Kafka producer closed")
	return nil
}
