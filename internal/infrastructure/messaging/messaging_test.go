package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/infrastructure/messaging"
	"github.com/dkverwaltung/dkledger/pkg/events"
	pkgkafka "github.com/dkverwaltung/dkledger/pkg/kafka"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockProducer struct {
	topic       string
	messages    []pkgkafka.Message
	publishFunc func(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

func (m *mockProducer) Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, topic, messages...)
	}
	m.topic = topic
	m.messages = append(m.messages, messages...)
	return nil
}

type mockRefresher struct {
	requests    []dto.EntryBookedRequest
	executeFunc func(ctx context.Context, req dto.EntryBookedRequest) (dto.EntryBookedResponse, error)
}

func (m *mockRefresher) Execute(ctx context.Context, req dto.EntryBookedRequest) (dto.EntryBookedResponse, error) {
	m.requests = append(m.requests, req)
	if m.executeFunc != nil {
		return m.executeFunc(ctx, req)
	}
	return dto.EntryBookedResponse{Year: req.Date.Year}, nil
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("wraps events into keyed envelopes", func(t *testing.T) {
		producer := &mockProducer{}
		pub := messaging.NewPublisher(producer, discard)

		aggID := uuid.New()
		evt, err := events.NewJSONEvent("dkledger.statement.generated", aggID, "Contract", map[string]int{"year": 2020})
		require.NoError(t, err)

		require.NoError(t, pub.Publish(context.Background(), "dkledger.statements", evt))

		assert.Equal(t, "dkledger.statements", producer.topic)
		require.Len(t, producer.messages, 1)
		msg := producer.messages[0]
		assert.Equal(t, aggID.String(), string(msg.Key))
		assert.Equal(t, "dkledger.statement.generated", msg.Headers["event_type"])
		assert.Equal(t, "Contract", msg.Headers["aggregate_type"])
		assert.Equal(t, evt.EventID().String(), msg.Headers["event_id"])

		var env events.Envelope
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		assert.Equal(t, aggID, env.AggregateID)
		assert.JSONEq(t, `{"year":2020}`, string(env.Payload))
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		producer := &mockProducer{}
		pub := messaging.NewPublisher(producer, discard)

		require.NoError(t, pub.Publish(context.Background(), "dkledger.statements"))
		assert.Empty(t, producer.messages)
	})

	t.Run("producer failure is returned", func(t *testing.T) {
		producer := &mockProducer{
			publishFunc: func(_ context.Context, _ string, _ ...pkgkafka.Message) error {
				return errors.New("broker down")
			},
		}
		pub := messaging.NewPublisher(producer, discard)
		evt := events.NewBaseEvent("x", uuid.New(), "Contract", nil)

		err := pub.Publish(context.Background(), "t", evt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})
}

func TestEntryBookedHandler(t *testing.T) {
	contractID := uuid.New()

	t.Run("refreshes the booked year", func(t *testing.T) {
		refresher := &mockRefresher{}
		handle := messaging.EntryBookedHandler(refresher, discard)

		value := fmt.Sprintf(`{"contract_id":%q,"date":"2021-03-15"}`, contractID)
		require.NoError(t, handle(context.Background(), pkgkafka.Message{Value: []byte(value)}))

		require.Len(t, refresher.requests, 1)
		assert.Equal(t, contractID, refresher.requests[0].ContractID)
		assert.Equal(t, civil.Date{Year: 2021, Month: 3, Day: 15}, refresher.requests[0].Date)
	})

	t.Run("malformed messages are skipped", func(t *testing.T) {
		tests := []string{
			`not json`,
			`{"contract_id":"nope","date":"2021-03-15"}`,
			fmt.Sprintf(`{"contract_id":%q,"date":"15.03.2021"}`, contractID),
		}
		for _, value := range tests {
			refresher := &mockRefresher{}
			handle := messaging.EntryBookedHandler(refresher, discard)

			assert.NoError(t, handle(context.Background(), pkgkafka.Message{Value: []byte(value)}), value)
			assert.Empty(t, refresher.requests, value)
		}
	})

	t.Run("unknown contract is skipped", func(t *testing.T) {
		refresher := &mockRefresher{
			executeFunc: func(_ context.Context, req dto.EntryBookedRequest) (dto.EntryBookedResponse, error) {
				return dto.EntryBookedResponse{}, fmt.Errorf("contract %s: %w", req.ContractID, port.ErrContractNotFound)
			},
		}
		handle := messaging.EntryBookedHandler(refresher, discard)

		value := fmt.Sprintf(`{"contract_id":%q,"date":"2021-03-15"}`, contractID)
		assert.NoError(t, handle(context.Background(), pkgkafka.Message{Value: []byte(value)}))
	})

	t.Run("other failures are returned for redelivery", func(t *testing.T) {
		refresher := &mockRefresher{
			executeFunc: func(_ context.Context, _ dto.EntryBookedRequest) (dto.EntryBookedResponse, error) {
				return dto.EntryBookedResponse{}, errors.New("database unavailable")
			},
		}
		handle := messaging.EntryBookedHandler(refresher, discard)

		value := fmt.Sprintf(`{"contract_id":%q,"date":"2021-03-15"}`, contractID)
		assert.Error(t, handle(context.Background(), pkgkafka.Message{Value: []byte(value)}))
	})
}

func TestDiscardPublisher(t *testing.T) {
	pub := messaging.NewDiscardPublisher(discard)
	evt := events.NewBaseEvent("x", uuid.New(), "Contract", nil)
	assert.NoError(t, pub.Publish(context.Background(), "dkledger.statements", evt))
}
