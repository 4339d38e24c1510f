package model

import (
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
)

// Validation errors returned by NewContract.
var (
	ErrNoVersions      = errors.New("contract has no versions")
	ErrVersionOrder    = errors.New("contract versions must have strictly increasing start dates")
	ErrInvalidVersion  = errors.New("invalid contract version")
	ErrInvalidEntry    = errors.New("invalid accounting entry")
	ErrInvalidContract = errors.New("invalid contract")
)

// Contract is the aggregate root for a loan agreement. It is an immutable snapshot:
// versions are ordered by start, entries by date and booking sequence.
type Contract struct {
	terminatedAt *civil.Date
	category     valueobject.Category
	comment      string
	versions     []ContractVersion
	entries      []AccountingEntry
	contact      Contact
	number       int
	id           uuid.UUID
}

// NewContract validates and normalizes a contract snapshot. Versions and entries
// are copied, so later changes to the input slices do not leak into the aggregate.
func NewContract(
	id uuid.UUID,
	number int,
	contact Contact,
	category valueobject.Category,
	comment string,
	terminatedAt *civil.Date,
	versions []ContractVersion,
	entries []AccountingEntry,
) (Contract, error) {
	if id == uuid.Nil {
		return Contract{}, fmt.Errorf("%w: contract ID is required", ErrInvalidContract)
	}
	if len(versions) == 0 {
		return Contract{}, fmt.Errorf("contract %d: %w", number, ErrNoVersions)
	}
	if terminatedAt != nil && !terminatedAt.IsValid() {
		return Contract{}, fmt.Errorf("%w: termination date %s", ErrInvalidContract, terminatedAt)
	}

	vs := make([]ContractVersion, len(versions))
	copy(vs, versions)
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Start.Before(vs[j].Start) })
	for i, v := range vs {
		if !v.Start.IsValid() {
			return Contract{}, fmt.Errorf("%w: version %d has invalid start %s", ErrInvalidVersion, v.Number, v.Start)
		}
		if v.InterestRate.IsNegative() {
			return Contract{}, fmt.Errorf("%w: version %d has negative interest rate", ErrInvalidVersion, v.Number)
		}
		if v.InterestType.IsZero() {
			return Contract{}, fmt.Errorf("%w: version %d has no interest type", ErrInvalidVersion, v.Number)
		}
		if v.DurationMonths < 0 || v.DurationYears < 0 || v.CancellationMonths < 0 {
			return Contract{}, fmt.Errorf("%w: version %d has a negative duration", ErrInvalidVersion, v.Number)
		}
		if i > 0 && !vs[i-1].Start.Before(v.Start) {
			return Contract{}, fmt.Errorf("contract %d: %w (%s)", number, ErrVersionOrder, v.Start)
		}
	}

	es := make([]AccountingEntry, len(entries))
	copy(es, entries)
	for _, e := range es {
		if !e.Date.IsValid() {
			return Contract{}, fmt.Errorf("%w: entry %s has invalid date %s", ErrInvalidEntry, e.ID, e.Date)
		}
	}
	sort.SliceStable(es, func(i, j int) bool {
		if c := CompareDates(es[i].Date, es[j].Date); c != 0 {
			return c < 0
		}
		return es[i].Seq < es[j].Seq
	})

	var term *civil.Date
	if terminatedAt != nil {
		t := *terminatedAt
		term = &t
	}

	return Contract{
		id:           id,
		number:       number,
		contact:      contact,
		category:     category,
		comment:      comment,
		terminatedAt: term,
		versions:     vs,
		entries:      es,
	}, nil
}

// Accessors
func (c Contract) ID() uuid.UUID                  { return c.id }
func (c Contract) Number() int                    { return c.number }
func (c Contract) Contact() Contact               { return c.contact }
func (c Contract) Category() valueobject.Category { return c.category }
func (c Contract) Comment() string                { return c.comment }

// TerminatedAt returns the termination date, if the contract has been terminated.
func (c Contract) TerminatedAt() (civil.Date, bool) {
	if c.terminatedAt == nil {
		return civil.Date{}, false
	}
	return *c.terminatedAt, true
}

// TerminatedBefore reports whether the contract ended in a year before year.
func (c Contract) TerminatedBefore(year int) bool {
	return c.terminatedAt != nil && c.terminatedAt.Year < year
}

// Versions returns the versions ordered by start date.
func (c Contract) Versions() []ContractVersion {
	out := make([]ContractVersion, len(c.versions))
	copy(out, c.versions)
	return out
}

// Entries returns the accounting entries ordered by date and booking sequence.
func (c Contract) Entries() []AccountingEntry {
	out := make([]AccountingEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// FirstVersion returns the version with the earliest start.
func (c Contract) FirstVersion() ContractVersion { return c.versions[0] }

// LastVersion returns the version with the latest start.
func (c Contract) LastVersion() ContractVersion { return c.versions[len(c.versions)-1] }

// String returns a human-readable label, e.g. "contract 12 (Doe, Jane)".
func (c Contract) String() string {
	return fmt.Sprintf("contract %d (%s)", c.number, c.contact.FullName())
}

// BalanceOn returns the signed sum of all entries strictly before date.
func (c Contract) BalanceOn(date civil.Date) decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		if !e.Date.Before(date) {
			break
		}
		total = total.Add(e.Amount)
	}
	return total
}

// Balance returns the signed sum of all entries.
func (c Contract) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Amount)
	}
	return total
}

// EntriesIn returns the entries dated within the calendar year.
func (c Contract) EntriesIn(year int) []AccountingEntry {
	var out []AccountingEntry
	for _, e := range c.entries {
		if e.Date.Year == year {
			out = append(out, e)
		}
	}
	return out
}

// VersionsIn returns the versions starting within the calendar year.
func (c Contract) VersionsIn(year int) []ContractVersion {
	var out []ContractVersion
	for _, v := range c.versions {
		if v.Start.Year == year {
			out = append(out, v)
		}
	}
	return out
}
