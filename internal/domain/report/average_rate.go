package report

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
)

// WeightedRate is one contract's share of the average rate.
type WeightedRate struct {
	ContractRef
	Balance decimal.Decimal
	Rate    decimal.Decimal
	// Weight is the contract's fraction of the total credit.
	Weight decimal.Decimal
}

// AverageRateReport is the credit-weighted average interest rate.
type AverageRateReport struct {
	AsOf        civil.Date
	Contracts   []WeightedRate
	TotalCredit decimal.Decimal
	AverageRate decimal.Decimal
}

// AverageRate weights the nominal rate of the version in force on asOf by each
// contract's balance. Inflation caps do not apply.
// Contracts without positive balance are ignored. ledgerTotal is the sum of all
// accounting entries booked up to asOf and must equal the sum of all balances.
func (g *Generator) AverageRate(contracts []model.Contract, ledgerTotal decimal.Decimal, asOf civil.Date) (AverageRateReport, error) {
	balances := decimal.Zero
	credit := decimal.Zero
	lines := make([]WeightedRate, 0, len(contracts))
	for _, c := range contracts {
		balance := balanceAsOf(c, asOf)
		balances = balances.Add(balance)
		if !balance.IsPositive() {
			continue
		}
		regime, err := g.timeline.RateAt(c, asOf)
		if err != nil {
			return AverageRateReport{}, fmt.Errorf("average rate: %w", err)
		}
		credit = credit.Add(balance)
		lines = append(lines, WeightedRate{ContractRef: RefOf(c), Balance: balance, Rate: regime.NominalRate})
	}

	if !balances.Equal(ledgerTotal) {
		return AverageRateReport{}, fmt.Errorf("%w: entries sum to %s, balances to %s", ErrInconsistentLedger, ledgerTotal, balances)
	}
	if credit.IsZero() {
		return AverageRateReport{}, ErrUndefinedAverage
	}

	weighted := decimal.Zero
	for i := range lines {
		lines[i].Weight = lines[i].Balance.Div(credit)
		weighted = weighted.Add(lines[i].Balance.Mul(lines[i].Rate))
	}
	return AverageRateReport{
		AsOf:        asOf,
		Contracts:   lines,
		TotalCredit: credit,
		AverageRate: weighted.Div(credit),
	}, nil
}
