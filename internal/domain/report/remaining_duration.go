package report

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
)

// Remaining-duration buckets.
const (
	BucketUpToOneYear = iota
	BucketOneToFiveYears
	BucketOverFiveYears
)

var bucketLabels = [...]string{"≤ 1 Jahr", "1 bis 5 Jahre", "> 5 Jahre"}

// RemainingContract is a contract with its estimated remaining term.
type RemainingContract struct {
	ContractRef
	Balance        decimal.Decimal
	Expiry         civil.Date
	RemainingYears decimal.Decimal
}

// RemainingBucket groups contracts by remaining term.
type RemainingBucket struct {
	Label     string
	Contracts []RemainingContract
	Balance   decimal.Decimal
}

// RemainingDurationReport buckets the outstanding credit by remaining term.
type RemainingDurationReport struct {
	Cutoff  civil.Date
	Buckets [3]RemainingBucket
	Balance decimal.Decimal
}

// RemainingDuration buckets every contract with a nonzero balance before cutoff
// by the time left until its estimated expiry. Contracts starting after the
// cutoff are skipped. An expiry before the cutoff counts as zero years left.
func (g *Generator) RemainingDuration(cutoff civil.Date, contracts []model.Contract) (RemainingDurationReport, error) {
	r := RemainingDurationReport{Cutoff: cutoff, Balance: decimal.Zero}
	for i := range r.Buckets {
		r.Buckets[i] = RemainingBucket{Label: bucketLabels[i], Balance: decimal.Zero}
	}

	for _, c := range contracts {
		if c.FirstVersion().Start.After(cutoff) {
			continue
		}
		balance := c.BalanceOn(cutoff)
		if balance.IsZero() {
			continue
		}
		expiry, err := g.timeline.ExpiryAt(c, cutoff)
		if err != nil {
			return RemainingDurationReport{}, fmt.Errorf("remaining duration: %w", err)
		}
		days, err := service.DayCount360(cutoff, expiry)
		if err != nil && !errors.Is(err, service.ErrNegativeDayCount) {
			return RemainingDurationReport{}, err
		}

		bucket := BucketOneToFiveYears
		switch {
		case days <= service.DaysPerYear:
			bucket = BucketUpToOneYear
		case days > 5*service.DaysPerYear:
			bucket = BucketOverFiveYears
		}
		b := &r.Buckets[bucket]
		b.Contracts = append(b.Contracts, RemainingContract{
			ContractRef:    RefOf(c),
			Balance:        balance,
			Expiry:         expiry,
			RemainingYears: decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(service.DaysPerYear)),
		})
		b.Balance = b.Balance.Add(balance)
		r.Balance = r.Balance.Add(balance)
	}
	return r, nil
}
