// Package report aggregates statements and balances over many contracts.
package report

import (
	"errors"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
)

var (
	// ErrInconsistentLedger is returned when the ledger total differs from the
	// sum of all contract balances.
	ErrInconsistentLedger = errors.New("ledger total does not match contract balances")
	// ErrUndefinedAverage is returned when there is no positive credit to weight by.
	ErrUndefinedAverage = errors.New("average rate undefined: total credit is zero")
)

// ContractRef identifies a contract and its lender in report lines.
type ContractRef struct {
	ContractID     uuid.UUID
	ContractNumber int
	ContactNumber  int
	ContactName    string
}

// RefOf returns the report reference of c.
func RefOf(c model.Contract) ContractRef {
	return ContractRef{
		ContractID:     c.ID(),
		ContractNumber: c.Number(),
		ContactNumber:  c.Contact().Number,
		ContactName:    c.Contact().FullName(),
	}
}

// Generator builds the aggregate reports.
type Generator struct {
	timeline *service.RateTimeline
	builder  *service.StatementBuilder
}

// NewGenerator creates a Generator.
func NewGenerator(timeline *service.RateTimeline, builder *service.StatementBuilder) *Generator {
	return &Generator{timeline: timeline, builder: builder}
}

// balanceAsOf includes entries booked on d itself.
func balanceAsOf(c model.Contract, d civil.Date) decimal.Decimal {
	return c.BalanceOn(d.AddDays(1))
}
