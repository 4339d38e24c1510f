package service

import (
	"github.com/shopspring/decimal"
)

// InflationCaps looks up the ceiling rate for a calendar year.
type InflationCaps interface {
	CapFor(year int) (decimal.Decimal, bool)
}

// StaticInflationCaps is an immutable year -> ceiling rate table.
type StaticInflationCaps struct {
	caps map[int]decimal.Decimal
}

// NewStaticInflationCaps copies caps into a new table.
func NewStaticInflationCaps(caps map[int]decimal.Decimal) StaticInflationCaps {
	c := make(map[int]decimal.Decimal, len(caps))
	for year, rate := range caps {
		c[year] = rate
	}
	return StaticInflationCaps{caps: c}
}

// CapFor returns the ceiling for year. Years outside the table are uncapped.
func (t StaticInflationCaps) CapFor(year int) (decimal.Decimal, bool) {
	rate, ok := t.caps[year]
	return rate, ok
}

// Years returns the number of years covered by the table.
func (t StaticInflationCaps) Years() int {
	return len(t.caps)
}

// CappedRate returns min(nominal, cap[year]), or nominal if year has no cap.
func CappedRate(caps InflationCaps, nominal decimal.Decimal, year int) decimal.Decimal {
	if caps == nil {
		return nominal
	}
	ceiling, ok := caps.CapFor(year)
	if !ok {
		return nominal
	}
	return decimal.Min(nominal, ceiling)
}
