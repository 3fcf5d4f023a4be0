package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mattjoyce/charterhook/internal/charter"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each row as a JSON object keyed by column name.
// The message key is the charter id so rows for one charter share a partition.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink creates a sink producing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafka: brokers and topic are required: %w", ErrNotConfigured)
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}
	return &KafkaSink{writer: w}, nil
}

// Append implements Sink.
func (k *KafkaSink) Append(ctx context.Context, row []string) (int, error) {
	if err := checkWidth(row); err != nil {
		return 0, err
	}

	doc := make(map[string]string, len(row))
	for i, col := range charter.Columns {
		doc[col] = row[i]
	}
	value, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encode row: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(row[1]),
		Value: value,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return 0, fmt.Errorf("kafka write: %w", err)
	}
	return len(row), nil
}

// Close flushes and closes the producer.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
