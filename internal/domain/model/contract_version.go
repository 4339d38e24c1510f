package model

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
)

// ContractVersion is one rate regime of a contract, effective from Start until the
// next version starts.
type ContractVersion struct {
	ID                 uuid.UUID
	Number             int
	Start              civil.Date
	DurationMonths     int
	DurationYears      int
	CancellationMonths int
	InterestRate       decimal.Decimal
	InterestType       valueobject.InterestType
}

// HasFixedDuration reports whether the version names a fixed term.
func (v ContractVersion) HasFixedDuration() bool {
	return v.DurationMonths > 0 || v.DurationYears > 0
}

// End returns Start plus the fixed duration in calendar months and years.
func (v ContractVersion) End() civil.Date {
	return AddMonths(v.Start, v.DurationMonths+12*v.DurationYears)
}
