// Package notify publishes domain events to Kafka after successful ledger
// submissions. The managers themselves emit nothing; the HTTP layer observes
// their results and calls Publish. Delivery is best-effort from the caller's
// point of view: handlers log publish failures and keep the success response.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Event types emitted by the HTTP layer.
const (
	TypeAttestationRecorded = "attestation.recorded"
	TypeProposalCreated     = "proposal.created"
	TypeVoteCast            = "vote.cast"
	TypeProposalFinalized   = "proposal.finalized"
)

// Event is one domain event. Key partitions by the domain subject (document
// fingerprint or proposal ID) so per-subject ordering survives Kafka.
type Event struct {
	Type    string `json:"type"`
	Key     string `json:"key"`
	TxID    string `json:"txId"`
	At      int64  `json:"at"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher produces events to a single topic.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New creates a Publisher. Returns nil if no brokers are configured
// (notifications disabled).
func New(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		logger.Info("kafka brokers not configured, event publishing disabled")
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// Publish produces one event synchronously.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.At == 0 {
		event.At = time.Now().Unix()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Key),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (p *Publisher) Close() {
	p.client.Close()
	p.logger.Info("event publisher closed")
}
