package report

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
)

// ExpiringContract is a contract with outstanding credit and its expiry estimate.
type ExpiringContract struct {
	ContractRef
	Balance decimal.Decimal
	Expiry  civil.Date
}

// ExpiringContracts lists contracts with positive balance on asOf, soonest
// expiry first. Contracts not yet started on asOf are skipped.
func (g *Generator) ExpiringContracts(asOf civil.Date, contracts []model.Contract) ([]ExpiringContract, error) {
	out := make([]ExpiringContract, 0, len(contracts))
	for _, c := range contracts {
		if c.FirstVersion().Start.After(asOf) {
			continue
		}
		balance := balanceAsOf(c, asOf)
		if !balance.IsPositive() {
			continue
		}
		expiry, err := g.timeline.ExpiryAt(c, asOf)
		if err != nil {
			return nil, fmt.Errorf("expiring contracts: %w", err)
		}
		out = append(out, ExpiringContract{ContractRef: RefOf(c), Balance: balance, Expiry: expiry})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Expiry != out[j].Expiry {
			return out[i].Expiry.Before(out[j].Expiry)
		}
		return out[i].ContractNumber < out[j].ContractNumber
	})
	return out, nil
}
