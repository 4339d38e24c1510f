package service

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
)

var daysPerYear = decimal.NewFromInt(DaysPerYear)

// AccrualFragment is a maximal sub-interval within one calendar year during
// which principal and rate are constant.
type AccrualFragment struct {
	Start     civil.Date
	Days      int
	Principal decimal.Decimal
	Rate      decimal.Decimal
	// PaidOut marks fragments settled by a year-end closed under a direct-payout
	// regime. Such a payout settles all interest accrued so far.
	PaidOut bool
}

// Interest returns principal × rate × days / 360 at full precision.
func (f AccrualFragment) Interest() decimal.Decimal {
	return f.numerator().Div(daysPerYear)
}

func (f AccrualFragment) numerator() decimal.Decimal {
	return f.Principal.Mul(f.Rate).Mul(decimal.NewFromInt(int64(f.Days)))
}

type walkEventKind int

const (
	walkVersion walkEventKind = iota
	walkEntry
)

// walkEvent is either a version change or a cash movement.
type walkEvent struct {
	date    civil.Date
	kind    walkEventKind
	version model.ContractVersion
	entry   model.AccountingEntry
}

// walkState is folded over the event sequence. principal holds booked cash;
// capitalized holds interest of closed compounding years and earns interest
// while the regime compounds. Interest of non-compounding years never earns
// interest and is only visible through the fragments.
type walkState struct {
	cursor          civil.Date
	version         model.ContractVersion
	principal       decimal.Decimal
	capitalized     decimal.Decimal
	yearCompounding decimal.Decimal
	fragments       []AccrualFragment
	active          bool
}

// AccrualWalker reconstructs the interest a contract accrued in prior years.
type AccrualWalker struct {
	timeline *RateTimeline
}

// NewAccrualWalker creates an AccrualWalker resolving rates through timeline.
func NewAccrualWalker(timeline *RateTimeline) *AccrualWalker {
	return &AccrualWalker{timeline: timeline}
}

// Fragments returns the accrual fragments of every year strictly before the
// cutoff's year. ok is false when no version starts before that year.
func (w *AccrualWalker) Fragments(c model.Contract, cutoff civil.Date) (fragments []AccrualFragment, ok bool, err error) {
	state, ok, err := w.walk(c, cutoff)
	if err != nil || !ok {
		return nil, ok, err
	}
	return state.fragments, true, nil
}

// CarriedInterest returns the interest accrued in all years before the cutoff's
// year that was not paid out. The result is invalid (absent) when the contract
// has no version starting before that year, which is distinct from zero.
func (w *AccrualWalker) CarriedInterest(c model.Contract, cutoff civil.Date) (decimal.NullDecimal, error) {
	state, ok, err := w.walk(c, cutoff)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if !ok {
		return decimal.NullDecimal{}, nil
	}
	sum := decimal.Zero
	for _, f := range state.fragments {
		if !f.PaidOut {
			sum = sum.Add(f.numerator())
		}
	}
	return decimal.NewNullDecimal(sum.Div(daysPerYear)), nil
}

func (w *AccrualWalker) walk(c model.Contract, cutoff civil.Date) (*walkState, bool, error) {
	end := model.YearStart(cutoff.Year)
	first := c.FirstVersion()
	if !first.Start.Before(end) {
		return nil, false, nil
	}

	events, err := mergeEvents(c, end)
	if err != nil {
		return nil, false, err
	}

	state := &walkState{
		cursor:          first.Start,
		principal:       decimal.Zero,
		capitalized:     decimal.Zero,
		yearCompounding: decimal.Zero,
	}
	for _, ev := range events {
		if err := w.advance(state, ev.date); err != nil {
			return nil, false, fmt.Errorf("%s: %w", c, err)
		}
		switch ev.kind {
		case walkVersion:
			state.version = ev.version
			state.active = true
		case walkEntry:
			state.principal = state.principal.Add(ev.entry.Amount)
		}
	}
	if err := w.advance(state, end); err != nil {
		return nil, false, fmt.Errorf("%s: %w", c, err)
	}
	return state, true, nil
}

// mergeEvents builds the event sequence before end. On equal dates version
// changes come first, entries keep their booking order.
func mergeEvents(c model.Contract, end civil.Date) ([]walkEvent, error) {
	versions := c.Versions()
	entries := c.Entries()
	events := make([]walkEvent, 0, len(versions)+len(entries))

	i, j := 0, 0
	for {
		var (
			vOK = i < len(versions) && versions[i].Start.Before(end)
			eOK = j < len(entries) && entries[j].Date.Before(end)
		)
		switch {
		case vOK && (!eOK || !entries[j].Date.Before(versions[i].Start)):
			events = append(events, walkEvent{date: versions[i].Start, kind: walkVersion, version: versions[i]})
			i++
		case eOK:
			if len(events) == 0 {
				return nil, fmt.Errorf("%s: entry on %s precedes first version: %w", c, entries[j].Date, ErrNoApplicableRate)
			}
			events = append(events, walkEvent{date: entries[j].Date, kind: walkEntry, entry: entries[j]})
			j++
		default:
			return events, nil
		}
	}
}

// advance accrues interest from the cursor up to (excluding) to, splitting at
// every January 1st and closing each completed year.
func (w *AccrualWalker) advance(s *walkState, to civil.Date) error {
	for s.cursor.Before(to) {
		boundary := model.YearStart(s.cursor.Year + 1)
		segEnd := to
		if boundary.Before(to) {
			segEnd = boundary
		}

		if s.active {
			days, err := DayCount360(s.cursor, segEnd)
			if err != nil {
				return err
			}
			if days > 0 {
				s.accrue(days, w.timeline.EffectiveRate(s.version, s.cursor.Year))
			}
		}

		s.cursor = segEnd
		if segEnd == boundary {
			s.closeYear()
		}
	}
	return nil
}

func (s *walkState) accrue(days int, rate decimal.Decimal) {
	compounding := s.version.InterestType.Compounding()
	principal := s.principal
	if compounding {
		principal = principal.Add(s.capitalized)
	}
	f := AccrualFragment{Start: s.cursor, Days: days, Principal: principal, Rate: rate}
	s.fragments = append(s.fragments, f)

	if compounding {
		s.yearCompounding = s.yearCompounding.Add(f.Interest())
	}
}

// closeYear applies the regime in force at the end of the closing year.
func (s *walkState) closeYear() {
	if s.active && s.version.InterestType.DirectPayout() {
		for i := range s.fragments {
			s.fragments[i].PaidOut = true
		}
		s.capitalized = decimal.Zero
	} else {
		s.capitalized = s.capitalized.Add(s.yearCompounding)
	}
	s.yearCompounding = decimal.Zero
}
