// Package view holds the JSON representations of statements and reports
// shared by the gRPC and REST surfaces. Amounts are fixed to two decimals,
// rates keep their full precision, dates are ISO 8601.
package view

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
)

type ContractRef struct {
	ContractID     string `json:"contract_id"`
	ContractNumber int    `json:"contract_number"`
	ContactNumber  int    `json:"contact_number"`
	ContactName    string `json:"contact_name"`
}

type StatementRow struct {
	Kind           string `json:"kind"`
	Date           string `json:"date"`
	DateLabel      string `json:"date_label"`
	Description    string `json:"description"`
	Amount         string `json:"amount"`
	Rate           string `json:"rate"`
	DaysLeftInYear int    `json:"days_left_in_year"`
	Interest       string `json:"interest"`
	Balance        string `json:"balance"`
}

type Statement struct {
	ContractRef
	Year          int            `json:"year"`
	Rows          []StatementRow `json:"rows"`
	TotalInterest string         `json:"total_interest"`
	TotalBalance  string         `json:"total_balance"`
}

type CarriedInterest struct {
	ContractID string `json:"contract_id"`
	Cutoff     string `json:"cutoff"`
	Present    bool   `json:"present"`
	Amount     string `json:"amount"`
}

type TransferList struct {
	Year          int         `json:"year"`
	Items         []Statement `json:"items"`
	TotalInterest string      `json:"total_interest"`
	TotalBalance  string      `json:"total_balance"`
}

type WeightedRate struct {
	ContractRef
	Balance string `json:"balance"`
	Rate    string `json:"rate"`
	Weight  string `json:"weight"`
}

type AverageRate struct {
	AsOf        string         `json:"as_of"`
	Contracts   []WeightedRate `json:"contracts"`
	TotalCredit string         `json:"total_credit"`
	AverageRate string         `json:"average_rate"`
}

type RemainingContract struct {
	ContractRef
	Balance        string `json:"balance"`
	Expiry         string `json:"expiry"`
	RemainingYears string `json:"remaining_years"`
}

type RemainingBucket struct {
	Label     string              `json:"label"`
	Contracts []RemainingContract `json:"contracts"`
	Balance   string              `json:"balance"`
}

type RemainingDuration struct {
	Cutoff  string            `json:"cutoff"`
	Buckets []RemainingBucket `json:"buckets"`
	Balance string            `json:"balance"`
}

type ExpiringContract struct {
	ContractRef
	Balance string `json:"balance"`
	Expiry  string `json:"expiry"`
}

type ExpiringContracts struct {
	AsOf      string             `json:"as_of"`
	Contracts []ExpiringContract `json:"contracts"`
}

func amount(d decimal.Decimal) string { return d.StringFixed(2) }

func date(d civil.Date) string { return d.String() }

func ref(r dto.ContractRefDTO) ContractRef {
	return ContractRef{
		ContractID:     r.ContractID.String(),
		ContractNumber: r.ContractNumber,
		ContactNumber:  r.ContactNumber,
		ContactName:    r.ContactName,
	}
}

func rows(in []dto.StatementRowDTO) []StatementRow {
	out := make([]StatementRow, 0, len(in))
	for _, r := range in {
		out = append(out, StatementRow{
			Kind:           r.Kind,
			Date:           date(r.Date),
			DateLabel:      r.DateLabel,
			Description:    r.Description,
			Amount:         amount(r.Amount),
			Rate:           r.Rate.String(),
			DaysLeftInYear: r.DaysLeftInYear,
			Interest:       amount(r.Interest),
			Balance:        amount(r.Amount.Add(r.Interest)),
		})
	}
	return out
}

func FromStatement(s dto.StatementResponse) Statement {
	return Statement{
		ContractRef: ref(dto.ContractRefDTO{
			ContractID:     s.ContractID,
			ContractNumber: s.ContractNumber,
			ContactNumber:  s.ContactNumber,
			ContactName:    s.ContactName,
		}),
		Year:          s.Year,
		Rows:          rows(s.Rows),
		TotalInterest: amount(s.TotalInterest),
		TotalBalance:  amount(s.TotalBalance),
	}
}

func FromCarriedInterest(c dto.CarriedInterestResponse) CarriedInterest {
	return CarriedInterest{
		ContractID: c.ContractID.String(),
		Cutoff:     date(c.Cutoff),
		Present:    c.Present,
		Amount:     amount(c.Amount),
	}
}

func FromTransferList(t dto.TransferListResponse) TransferList {
	items := make([]Statement, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, Statement{
			ContractRef:   ref(it.ContractRefDTO),
			Year:          t.Year,
			Rows:          rows(it.Rows),
			TotalInterest: amount(it.TotalInterest),
			TotalBalance:  amount(it.TotalBalance),
		})
	}
	return TransferList{
		Year:          t.Year,
		Items:         items,
		TotalInterest: amount(t.TotalInterest),
		TotalBalance:  amount(t.TotalBalance),
	}
}

func FromAverageRate(a dto.AverageRateResponse) AverageRate {
	lines := make([]WeightedRate, 0, len(a.Contracts))
	for _, c := range a.Contracts {
		lines = append(lines, WeightedRate{
			ContractRef: ref(c.ContractRefDTO),
			Balance:     amount(c.Balance),
			Rate:        c.Rate.String(),
			Weight:      c.Weight.String(),
		})
	}
	return AverageRate{
		AsOf:        date(a.AsOf),
		Contracts:   lines,
		TotalCredit: amount(a.TotalCredit),
		AverageRate: a.AverageRate.String(),
	}
}

func FromRemainingDuration(r dto.RemainingDurationResponse) RemainingDuration {
	buckets := make([]RemainingBucket, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		contracts := make([]RemainingContract, 0, len(b.Contracts))
		for _, c := range b.Contracts {
			contracts = append(contracts, RemainingContract{
				ContractRef:    ref(c.ContractRefDTO),
				Balance:        amount(c.Balance),
				Expiry:         date(c.Expiry),
				RemainingYears: c.RemainingYears.StringFixed(2),
			})
		}
		buckets = append(buckets, RemainingBucket{Label: b.Label, Contracts: contracts, Balance: amount(b.Balance)})
	}
	return RemainingDuration{Cutoff: date(r.Cutoff), Buckets: buckets, Balance: amount(r.Balance)}
}

func FromExpiringContracts(e dto.ExpiringContractsResponse) ExpiringContracts {
	contracts := make([]ExpiringContract, 0, len(e.Contracts))
	for _, c := range e.Contracts {
		contracts = append(contracts, ExpiringContract{
			ContractRef: ref(c.ContractRefDTO),
			Balance:     amount(c.Balance),
			Expiry:      date(c.Expiry),
		})
	}
	return ExpiringContracts{AsOf: date(e.AsOf), Contracts: contracts}
}
