package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
	Payload() []byte
}

// BaseEvent provides a default implementation of DomainEvent.
type BaseEvent struct {
	id            uuid.UUID
	eventType     string
	aggregateID   uuid.UUID
	aggregateType string
	occurredAt    time.Time
	payload       []byte
}

// NewBaseEvent creates a new BaseEvent with a generated UUID and the current time.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string, payload []byte) BaseEvent {
	return BaseEvent{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now().UTC(),
		payload:       payload,
	}
}

// NewJSONEvent creates a BaseEvent whose payload is v encoded as JSON.
func NewJSONEvent(eventType string, aggregateID uuid.UUID, aggregateType string, v any) (BaseEvent, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return BaseEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return NewBaseEvent(eventType, aggregateID, aggregateType, payload), nil
}

func (e BaseEvent) EventID() uuid.UUID     { return e.id }
func (e BaseEvent) EventType() string      { return e.eventType }
func (e BaseEvent) AggregateID() uuid.UUID { return e.aggregateID }
func (e BaseEvent) AggregateType() string  { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time  { return e.occurredAt }
func (e BaseEvent) Payload() []byte        { return e.payload }

// Envelope is the wire form of a domain event on the message bus.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Wrap builds the envelope of e.
func Wrap(e DomainEvent) Envelope {
	payload := e.Payload()
	if len(payload) == 0 {
		payload = []byte("null")
	}
	return Envelope{
		EventID:       e.EventID(),
		EventType:     e.EventType(),
		AggregateID:   e.AggregateID(),
		AggregateType: e.AggregateType(),
		OccurredAt:    e.OccurredAt(),
		Payload:       payload,
	}
}
