package service

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
)

// Regime is the rate regime in force at a date.
type Regime struct {
	Version     int
	NominalRate decimal.Decimal
	// Rate is the effective rate: the nominal rate, limited by the inflation cap
	// of the year when the interest type is capped.
	Rate decimal.Decimal
	Type valueobject.InterestType
}

// RateTimeline resolves the rate regime of a contract at a date.
type RateTimeline struct {
	caps InflationCaps
}

// NewRateTimeline creates a RateTimeline using caps for inflation-capped versions.
// A nil caps leaves every rate uncapped.
func NewRateTimeline(caps InflationCaps) *RateTimeline {
	return &RateTimeline{caps: caps}
}

// EffectiveRate returns the rate of version v for accrual within year.
func (rt *RateTimeline) EffectiveRate(v model.ContractVersion, year int) decimal.Decimal {
	if v.InterestType.InflationCapped() {
		return CappedRate(rt.caps, v.InterestRate, year)
	}
	return v.InterestRate
}

// RegimeOf returns the regime of version v for accrual within year.
func (rt *RateTimeline) RegimeOf(v model.ContractVersion, year int) Regime {
	return Regime{
		Version:     v.Number,
		NominalRate: v.InterestRate,
		Rate:        rt.EffectiveRate(v, year),
		Type:        v.InterestType,
	}
}

// RateAt returns the regime of the latest version starting on or before date.
func (rt *RateTimeline) RateAt(c model.Contract, date civil.Date) (Regime, error) {
	versions := c.Versions()
	for i := len(versions) - 1; i >= 0; i-- {
		if !versions[i].Start.After(date) {
			return rt.RegimeOf(versions[i], date.Year), nil
		}
	}
	return Regime{}, fmt.Errorf("%s on %s: %w", c, date, ErrNoApplicableRate)
}

// VersionAt returns the last version whose start is on or before date.
func (rt *RateTimeline) VersionAt(c model.Contract, date civil.Date) (model.ContractVersion, error) {
	var (
		found model.ContractVersion
		ok    bool
	)
	for _, v := range c.Versions() {
		if v.Start.After(date) {
			break
		}
		found, ok = v, true
	}
	if !ok {
		return model.ContractVersion{}, fmt.Errorf("%s on %s: %w", c, date, ErrNoApplicableRate)
	}
	return found, nil
}

// ExpiryAt estimates the end of the contract as seen on date: the start of the
// version in force plus its fixed duration. A version without a fixed duration
// but with a cancellation period is estimated to end one cancellation period
// after date.
func (rt *RateTimeline) ExpiryAt(c model.Contract, date civil.Date) (civil.Date, error) {
	v, err := rt.VersionAt(c, date)
	if err != nil {
		return civil.Date{}, err
	}
	if !v.HasFixedDuration() && v.CancellationMonths > 0 {
		return model.AddMonths(date, v.CancellationMonths), nil
	}
	return v.End(), nil
}
