package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/PeymanShobeiri/Distributed-System-Design/audit"
)

// Producer publishes audit entries to one Kafka topic. Delivery is
// fire-and-forget from the node's point of view; a lost entry is
// counted, never retried.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish sends one entry, keyed by node so per-node ordering is
// preserved within a partition.
func (p *Producer) Publish(ctx context.Context, e audit.Entry) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Node),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
