package port

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/pkg/events"
)

// ErrContractNotFound is returned when no contract matches the requested ID.
var ErrContractNotFound = errors.New("contract not found")

// ContractSnapshotRepository reads immutable contract snapshots. Every call sees
// one consistent state of the ledger.
type ContractSnapshotRepository interface {
	// FindByID loads a contract with its versions and entries.
	FindByID(ctx context.Context, id uuid.UUID) (model.Contract, error)
	// ListAll loads every contract ordered by contract number.
	ListAll(ctx context.Context) ([]model.Contract, error)
	// ListWithLedgerTotal loads every contract together with the sum of all
	// entries booked up to asOf, both from the same snapshot.
	ListWithLedgerTotal(ctx context.Context, asOf civil.Date) ([]model.Contract, decimal.Decimal, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, events ...events.DomainEvent) error
}
