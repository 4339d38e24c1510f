package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/pkg/money"
)

// TransferListFilter narrows a transfer list to one lender. A zero
// ContactNumber selects every lender.
type TransferListFilter struct {
	ContactNumber int
}

// Includes reports whether c passes the filter for year.
func (f TransferListFilter) Includes(c model.Contract, year int) bool {
	if c.TerminatedBefore(year) {
		return false
	}
	return f.ContactNumber == 0 || c.Contact().Number == f.ContactNumber
}

// TransferListItem is the statement of one contract.
type TransferListItem struct {
	ContractRef
	Statement service.Statement
}

// TransferListReport lists the annual interest per contract.
type TransferListReport struct {
	Year          int
	Items         []TransferListItem
	TotalInterest decimal.Decimal
	TotalBalance  decimal.Decimal
}

// TransferList builds the statements of all contracts matching filter.
func (g *Generator) TransferList(year int, contracts []model.Contract, filter TransferListFilter) (TransferListReport, error) {
	items := make([]TransferListItem, 0, len(contracts))
	for _, c := range contracts {
		if !filter.Includes(c, year) {
			continue
		}
		st, err := g.builder.Build(c, year)
		if err != nil {
			return TransferListReport{}, fmt.Errorf("transfer list %d: %w", year, err)
		}
		items = append(items, TransferListItem{ContractRef: RefOf(c), Statement: st})
	}
	return AssembleTransferList(year, items), nil
}

// AssembleTransferList drops contracts without statement rows, orders the rest by
// contact and contract number and totals them.
func AssembleTransferList(year int, items []TransferListItem) TransferListReport {
	kept := make([]TransferListItem, 0, len(items))
	interest, balance := decimal.Zero, decimal.Zero
	for _, it := range items {
		if it.Statement.IsEmpty() {
			continue
		}
		kept = append(kept, it)
		interest = interest.Add(it.Statement.TotalInterest)
		balance = balance.Add(it.Statement.TotalBalance)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ContactNumber != kept[j].ContactNumber {
			return kept[i].ContactNumber < kept[j].ContactNumber
		}
		return kept[i].ContractNumber < kept[j].ContractNumber
	})
	return TransferListReport{
		Year:          year,
		Items:         kept,
		TotalInterest: money.RoundExplicit(interest),
		TotalBalance:  money.RoundExplicit(balance),
	}
}
