// Package kafka forwards audit events to a Kafka topic so compliance tooling
// can consume officer actions outside this process. Publishing is best effort
// from the emitter's point of view; the in-process store stays authoritative.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "bisaathi/pkg/platform/audit"
)

// Sink produces audit events onto a single topic, keyed by user ID so one
// user's trail stays ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to the given brokers. Callers own the lifecycle and must Close.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// Publish produces one event synchronously. The publisher already isolates
// request paths from sink latency via its async buffer.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID.String()),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (s *Sink) Close() {
	s.client.Close()
}
