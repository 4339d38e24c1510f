package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/pkg/events"
	pkgkafka "github.com/dkverwaltung/dkledger/pkg/kafka"
)

// Compile-time interface check.
var _ port.EventPublisher = (*Publisher)(nil)

// MessageProducer is the part of pkg/kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher publishes domain events to Kafka as JSON envelopes.
type Publisher struct {
	producer MessageProducer
	logger   *slog.Logger
}

// NewPublisher creates a new Publisher.
func NewPublisher(producer MessageProducer, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: logger}
}

// Publish sends all events to topic in a single batch, keyed by aggregate ID.
func (p *Publisher) Publish(ctx context.Context, topic string, domainEvents ...events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	msgs := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		value, err := json.Marshal(events.Wrap(evt))
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing event to Kafka",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"topic", topic,
		)

		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(evt.AggregateID().String()),
			Value: value,
			Headers: map[string]string{
				"event_type":     evt.EventType(),
				"aggregate_type": evt.AggregateType(),
				"event_id":       evt.EventID().String(),
			},
		})
	}

	if err := p.producer.Publish(ctx, topic, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d events to topic %s: %w", len(msgs), topic, err)
	}
	return nil
}

// DiscardPublisher drops events. It stands in for Publisher when no broker
// is configured.
type DiscardPublisher struct {
	logger *slog.Logger
}

func NewDiscardPublisher(logger *slog.Logger) *DiscardPublisher {
	return &DiscardPublisher{logger: logger}
}

func (p *DiscardPublisher) Publish(ctx context.Context, topic string, domainEvents ...events.DomainEvent) error {
	p.logger.DebugContext(ctx, "no broker configured, dropping events", "topic", topic, "count", len(domainEvents))
	return nil
}
