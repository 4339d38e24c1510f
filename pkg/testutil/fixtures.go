package testutil

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
)

// Fixed UUIDs for deterministic testing
var (
	TestContractID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestContractID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestContactID1  = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestContactID2  = uuid.MustParse("00000000-0000-0000-0000-000000000011")
)

// Date is a shorthand for civil.Date literals.
func Date(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

// ContractBuilder assembles contract snapshots for tests. Version numbers and
// entry sequence numbers are assigned in call order.
type ContractBuilder struct {
	id           uuid.UUID
	number       int
	contact      model.Contact
	category     valueobject.Category
	terminatedAt *civil.Date
	versions     []model.ContractVersion
	entries      []model.AccountingEntry
}

// NewContractBuilder starts a private-lender contract with the given number.
func NewContractBuilder(number int) *ContractBuilder {
	return &ContractBuilder{
		id:     uuid.New(),
		number: number,
		contact: model.Contact{
			ID:        TestContactID1,
			Number:    1,
			LastName:  "Muster",
			FirstName: "Erika",
		},
		category: valueobject.CategoryPrivate,
	}
}

// WithID sets the contract ID.
func (b *ContractBuilder) WithID(id uuid.UUID) *ContractBuilder {
	b.id = id
	return b
}

// WithContact sets the lender.
func (b *ContractBuilder) WithContact(number int, lastName, firstName string) *ContractBuilder {
	b.contact = model.Contact{ID: uuid.New(), Number: number, LastName: lastName, FirstName: firstName}
	return b
}

// Version adds a version starting on start at the given rate.
func (b *ContractBuilder) Version(start civil.Date, rate string, typ valueobject.InterestType) *ContractBuilder {
	return b.VersionWithTerm(start, rate, typ, 0, 0)
}

// VersionWithTerm adds a version with a fixed duration in years and a
// cancellation period in months.
func (b *ContractBuilder) VersionWithTerm(start civil.Date, rate string, typ valueobject.InterestType, years, cancellationMonths int) *ContractBuilder {
	b.versions = append(b.versions, model.ContractVersion{
		ID:                 uuid.New(),
		Number:             len(b.versions) + 1,
		Start:              start,
		DurationYears:      years,
		CancellationMonths: cancellationMonths,
		InterestRate:       decimal.RequireFromString(rate),
		InterestType:       typ,
	})
	return b
}

// Entry books a signed amount on d.
func (b *ContractBuilder) Entry(d civil.Date, amount string) *ContractBuilder {
	b.entries = append(b.entries, model.AccountingEntry{
		ID:     uuid.New(),
		Seq:    int64(len(b.entries) + 1),
		Date:   d,
		Amount: decimal.RequireFromString(amount),
	})
	return b
}

// TerminatedAt sets the termination date.
func (b *ContractBuilder) TerminatedAt(d civil.Date) *ContractBuilder {
	b.terminatedAt = &d
	return b
}

// Build validates the snapshot and fails the test on error.
func (b *ContractBuilder) Build(t *testing.T) model.Contract {
	t.Helper()
	c, err := model.NewContract(b.id, b.number, b.contact, b.category, "", b.terminatedAt, b.versions, b.entries)
	require.NoError(t, err)
	return c
}
