package service

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/pkg/money"
)

// RowKind classifies a statement row.
type RowKind string

const (
	RowOpeningBalance    RowKind = "OPENING_BALANCE"
	RowCarriedInterest   RowKind = "CARRIED_INTEREST"
	RowVersionChange     RowKind = "VERSION_CHANGE"
	RowCarriedRateChange RowKind = "CARRIED_RATE_CHANGE"
	RowCashMovement      RowKind = "CASH_MOVEMENT"
	RowPayout            RowKind = "PAYOUT"
	RowTermination       RowKind = "TERMINATION"
)

// Row descriptions as printed on statements.
const (
	descOpeningBalance    = "Saldo"
	descCarriedInterest   = "Zinsen aus den Vorjahren"
	descVersionChange     = "Vertragsänderung"
	descCarriedRateChange = "Änderung Vorjahreszins"
	descPayout            = "Zinsauszahlung"
	descTermination       = "Vertragsende"
)

// StatementRow is one line of an annual statement. Amount and Interest are
// rounded to cents.
type StatementRow struct {
	Kind           RowKind
	Date           civil.Date
	DateLabel      string
	Description    string
	Amount         decimal.Decimal
	Rate           decimal.Decimal
	DaysLeftInYear int
	Interest       decimal.Decimal
}

// Balance returns the row's contribution to the running total.
func (r StatementRow) Balance() decimal.Decimal {
	return r.Amount.Add(r.Interest)
}

// Statement is the annual interest statement of a contract.
type Statement struct {
	ContractID     uuid.UUID
	ContractNumber int
	Year           int
	Rows           []StatementRow
	TotalInterest  decimal.Decimal
	TotalBalance   decimal.Decimal
}

// AutoRows returns the rows generated by year-end processing (payout and
// termination) rather than by bookings.
func (s Statement) AutoRows() []StatementRow {
	var rows []StatementRow
	for _, r := range s.Rows {
		if r.Kind == RowPayout || r.Kind == RowTermination {
			rows = append(rows, r)
		}
	}
	return rows
}

// IsEmpty reports whether the statement has no rows.
func (s Statement) IsEmpty() bool {
	return len(s.Rows) == 0
}

// StatementBuilder assembles annual statements.
type StatementBuilder struct {
	timeline *RateTimeline
	walker   *AccrualWalker
}

// NewStatementBuilder creates a StatementBuilder.
func NewStatementBuilder(timeline *RateTimeline, walker *AccrualWalker) *StatementBuilder {
	return &StatementBuilder{timeline: timeline, walker: walker}
}

// Build produces the statement of contract c for year. A year ending before the
// first version starts yields a statement without rows.
func (b *StatementBuilder) Build(c model.Contract, year int) (Statement, error) {
	st := Statement{
		ContractID:     c.ID(),
		ContractNumber: c.Number(),
		Year:           year,
		TotalInterest:  decimal.Zero,
		TotalBalance:   decimal.Zero,
	}
	first := c.FirstVersion()
	if first.Start.After(model.YearEnd(year)) {
		return st, nil
	}

	yearStart := model.YearStart(year)
	opening, err := b.timeline.RateAt(c, model.MaxDate(yearStart, first.Start))
	if err != nil {
		return Statement{}, err
	}

	carryLabel := fmt.Sprintf("Übertrag aus %d", year-1)
	balance := c.BalanceOn(yearStart)
	st.Rows = append(st.Rows, StatementRow{
		Kind:           RowOpeningBalance,
		Date:           yearStart,
		DateLabel:      carryLabel,
		Description:    descOpeningBalance,
		Amount:         money.RoundExplicit(balance),
		Rate:           opening.Rate,
		DaysLeftInYear: DaysPerYear,
		Interest:       money.RoundExplicit(balance.Mul(opening.Rate)),
	})

	carried, err := b.walker.CarriedInterest(c, yearStart)
	if err != nil {
		return Statement{}, err
	}
	hasCarried := carried.Valid && !opening.Type.DirectPayout()
	var carriedAmount decimal.Decimal
	// carriedRate is the rate the carried interest currently earns.
	carriedRate := decimal.Zero
	if hasCarried {
		carriedAmount = money.RoundExplicit(carried.Decimal)
		if opening.Type.Compounding() {
			carriedRate = opening.Rate
		}
		st.Rows = append(st.Rows, StatementRow{
			Kind:           RowCarriedInterest,
			Date:           yearStart,
			DateLabel:      carryLabel,
			Description:    descCarriedInterest,
			Amount:         carriedAmount,
			Rate:           carriedRate,
			DaysLeftInYear: DaysPerYear,
			Interest:       money.RoundExplicit(carriedAmount.Mul(carriedRate)),
		})
	}

	rate := opening.Rate
	for _, v := range c.VersionsIn(year) {
		if v.Start == first.Start || v.Start == yearStart {
			continue
		}
		next := b.timeline.EffectiveRate(v, year)
		if next.Equal(rate) {
			continue
		}
		bal := c.BalanceOn(v.Start)
		days := DaysLeftInYear(v.Start)
		st.Rows = append(st.Rows,
			pairRow(RowVersionChange, descVersionChange, v.Start, bal.Neg(), rate, days),
			pairRow(RowVersionChange, descVersionChange, v.Start, bal, next, days),
		)
		if hasCarried {
			now := decimal.Zero
			if v.InterestType.Compounding() {
				now = next
			}
			st.Rows = append(st.Rows,
				pairRow(RowCarriedRateChange, descCarriedRateChange, v.Start, carriedAmount.Neg(), carriedRate, days),
				pairRow(RowCarriedRateChange, descCarriedRateChange, v.Start, carriedAmount, now, days),
			)
			carriedRate = now
		}
		rate = next
	}

	for _, e := range c.EntriesIn(year) {
		regime, err := b.timeline.RateAt(c, e.Date)
		if err != nil {
			return Statement{}, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		st.Rows = append(st.Rows, pairRow(RowCashMovement, e.Label(), e.Date, e.Amount, regime.Rate, DaysLeftInYear(e.Date)))
	}

	yearEnd := model.YearEnd(year)
	closing, err := b.timeline.RateAt(c, yearEnd)
	if err != nil {
		return Statement{}, err
	}
	if closing.Type.DirectPayout() {
		st.Rows = append(st.Rows, StatementRow{
			Kind:        RowPayout,
			Date:        yearEnd,
			DateLabel:   formatDate(yearEnd),
			Description: descPayout,
			Amount:      money.RoundExplicit(sumInterest(st.Rows).Neg()),
			Rate:        decimal.Zero,
			Interest:    decimal.Zero,
		})
	}

	if end, ok := c.TerminatedAt(); ok && end.Year == year {
		st.Rows = append(st.Rows, terminationRow(st.Rows, end))
	}

	for _, r := range st.Rows {
		st.TotalInterest = st.TotalInterest.Add(r.Interest)
		st.TotalBalance = st.TotalBalance.Add(r.Balance())
	}
	return st, nil
}

// pairRow builds a row accruing amount × rate over days of the remaining year.
func pairRow(kind RowKind, desc string, d civil.Date, amount, rate decimal.Decimal, days int) StatementRow {
	interest := amount.Mul(rate).Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear)
	return StatementRow{
		Kind:           kind,
		Date:           d,
		DateLabel:      formatDate(d),
		Description:    desc,
		Amount:         money.RoundExplicit(amount),
		Rate:           rate,
		DaysLeftInYear: days,
		Interest:       money.RoundExplicit(interest),
	}
}

// terminationRow closes the position on end: interest booked for the days after
// end is taken back pro rata, and the remaining balance is paid out, so the
// running total after the row is zero.
func terminationRow(rows []StatementRow, end civil.Date) StatementRow {
	daysLeft := DaysLeftInYear(end)
	rest := decimal.Zero
	amounts := decimal.Zero
	for _, r := range rows {
		amounts = amounts.Add(r.Amount)
		if r.DaysLeftInYear <= 0 || r.Interest.IsZero() {
			continue
		}
		overlap := min(daysLeft, r.DaysLeftInYear)
		rest = rest.Add(r.Interest.Mul(decimal.NewFromInt(int64(overlap))).Div(decimal.NewFromInt(int64(r.DaysLeftInYear))))
	}
	restInterest := money.Round(rest)
	remaining := amounts.Add(sumInterest(rows)).Sub(restInterest)

	return StatementRow{
		Kind:           RowTermination,
		Date:           end,
		DateLabel:      formatDate(end),
		Description:    descTermination,
		Amount:         money.RoundExplicit(remaining.Neg()),
		Rate:           decimal.Zero,
		DaysLeftInYear: daysLeft,
		Interest:       money.RoundExplicit(restInterest.Neg()),
	}
}

func sumInterest(rows []StatementRow) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Interest)
	}
	return sum
}

func formatDate(d civil.Date) string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, int(d.Month), d.Year)
}
