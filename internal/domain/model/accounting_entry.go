package model

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountingEntry is one signed cash movement against a contract's principal:
// positive amounts are deposits, negative amounts withdrawals.
type AccountingEntry struct {
	ID      uuid.UUID
	Seq     int64 // booking order, breaks ties between entries of the same date
	Date    civil.Date
	Amount  decimal.Decimal
	Comment string
}

// IsDeposit reports whether the entry adds to the principal.
func (e AccountingEntry) IsDeposit() bool {
	return e.Amount.IsPositive()
}

// Label returns the booking comment, or "Einzahlung"/"Auszahlung" when there is none.
func (e AccountingEntry) Label() string {
	if e.Comment != "" {
		return e.Comment
	}
	if e.IsDeposit() {
		return "Einzahlung"
	}
	return "Auszahlung"
}
