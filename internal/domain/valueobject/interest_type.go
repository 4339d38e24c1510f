package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInterestType is returned when an interest type label cannot be parsed.
var ErrInvalidInterestType = errors.New("invalid interest type")

// InterestMode describes what happens with the interest accrued in a year.
type InterestMode string

const (
	// ModeNoCompounding keeps accrued interest next to the principal; it earns no interest itself.
	ModeNoCompounding InterestMode = "NO_COMPOUNDING"
	// ModeCompounding capitalizes accrued interest into the principal at every year boundary.
	ModeCompounding InterestMode = "COMPOUNDING"
	// ModeDirectPayout pays the year's interest out at year end.
	ModeDirectPayout InterestMode = "DIRECT_PAYOUT"
)

// InterestType is an immutable value object combining an InterestMode with the
// inflation-cap flag. There are six valid combinations.
type InterestType struct {
	mode   InterestMode
	capped bool
}

var (
	InterestTypeNoCompounding       = InterestType{mode: ModeNoCompounding}
	InterestTypeCompounding         = InterestType{mode: ModeCompounding}
	InterestTypeDirectPayout        = InterestType{mode: ModeDirectPayout}
	InterestTypeNoCompoundingCapped = InterestType{mode: ModeNoCompounding, capped: true}
	InterestTypeCompoundingCapped   = InterestType{mode: ModeCompounding, capped: true}
	InterestTypeDirectPayoutCapped  = InterestType{mode: ModeDirectPayout, capped: true}
)

const cappedSuffix = "_CAPPED"

// Labels used by the bookkeeping front end, kept so stored values stay readable.
var legacyLabels = map[string]InterestType{
	"ohne Zinseszins":                    InterestTypeNoCompounding,
	"mit Zinseszins":                     InterestTypeCompounding,
	"direkte Auszahlung":                 InterestTypeDirectPayout,
	"Auszahlen":                          InterestTypeDirectPayout,
	"ohne Zinseszins, Inflationlimit":    InterestTypeNoCompoundingCapped,
	"mit Zinseszins, Inflationlimit":     InterestTypeCompoundingCapped,
	"direkte Auszahlung, Inflationlimit": InterestTypeDirectPayoutCapped,
}

// NewInterestType builds an InterestType from its parts, validating the mode.
func NewInterestType(mode InterestMode, capped bool) (InterestType, error) {
	switch mode {
	case ModeNoCompounding, ModeCompounding, ModeDirectPayout:
		return InterestType{mode: mode, capped: capped}, nil
	default:
		return InterestType{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidInterestType, mode)
	}
}

// ParseInterestType accepts both the canonical codes produced by String
// (e.g. "COMPOUNDING_CAPPED") and the legacy German labels.
func ParseInterestType(s string) (InterestType, error) {
	if it, ok := legacyLabels[strings.TrimSpace(s)]; ok {
		return it, nil
	}
	code := strings.ToUpper(strings.TrimSpace(s))
	capped := strings.HasSuffix(code, cappedSuffix)
	code = strings.TrimSuffix(code, cappedSuffix)
	it, err := NewInterestType(InterestMode(code), capped)
	if err != nil {
		return InterestType{}, fmt.Errorf("%w: %q", ErrInvalidInterestType, s)
	}
	return it, nil
}

// Mode returns the interest mode.
func (t InterestType) Mode() InterestMode { return t.mode }

// Compounding reports whether accrued interest is capitalized yearly.
func (t InterestType) Compounding() bool { return t.mode == ModeCompounding }

// DirectPayout reports whether accrued interest is paid out yearly.
func (t InterestType) DirectPayout() bool { return t.mode == ModeDirectPayout }

// InflationCapped reports whether the effective rate is limited by the inflation cap table.
func (t InterestType) InflationCapped() bool { return t.capped }

// IsZero returns true if the InterestType has not been set.
func (t InterestType) IsZero() bool { return t.mode == "" }

// Equal returns true if two InterestType values are equal.
func (t InterestType) Equal(other InterestType) bool { return t == other }

// String returns the canonical code, e.g. "DIRECT_PAYOUT_CAPPED".
func (t InterestType) String() string {
	if t.capped {
		return string(t.mode) + cappedSuffix
	}
	return string(t.mode)
}
