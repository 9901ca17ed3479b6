// Package kafka publishes audit events to a Kafka topic. Kafka is the
// durable sink; reads happen in downstream consumers, not here.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "healthstack/pkg/platform/audit"
	"healthstack/pkg/platform/sentinel"
)

// Store produces audit events to a single topic, keyed by identity so one
// user's events stay ordered within a partition.
type Store struct {
	client *kgo.Client
	topic  string
}

// payload is the JSON structure written to Kafka.
type payload struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Identity  string `json:"identity,omitempty"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// New connects to the Kafka cluster and ensures the topic exists.
func New(seeds []string, topic string) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 3, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", resp.Err)
	}

	return &Store{client: client, topic: topic}, nil
}

// Append produces one event synchronously so callers learn about broker
// failures.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(payload{
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Identity:  event.Identity,
		Action:    event.Action,
		Subject:   event.Subject,
		Detail:    event.Detail,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Identity),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// ListByIdentity is not served from Kafka; consumers own reads.
func (s *Store) ListByIdentity(context.Context, string) ([]audit.Event, error) {
	return nil, fmt.Errorf("audit reads are not served from kafka: %w", sentinel.ErrUnavailable)
}

// Close flushes pending records and closes the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
