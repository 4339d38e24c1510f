package money

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places of a currency amount (cents).
const Precision = 2

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return c.code
}

func (c Currency) String() string {
	return c.code
}

// EUR is the ledger currency.
var EUR = MustCurrency("EUR")

// Round rounds d to cents using banker's rounding (round half to even).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Precision)
}

// RoundExplicit rounds d to cents and returns an exact decimal.Zero when the
// rounded value is zero, so that "0", "0.00" and "-0.004" all compare and
// render the same way.
func RoundExplicit(d decimal.Decimal) decimal.Decimal {
	r := Round(d)
	if r.IsZero() {
		return decimal.Zero
	}
	return r
}

// Sum adds all amounts at full precision.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Money represents an immutable monetary amount with currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value from a decimal amount and currency.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// NewFromString parses an amount string and currency code into a Money value.
func NewFromString(amount string, currency string) (Money, error) {
	cur, err := NewCurrency(currency)
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return Money{amount: d, currency: cur}, nil
}

// Euro is shorthand for New(amount, EUR).
func Euro(amount decimal.Decimal) Money {
	return New(amount, EUR)
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency.
func (m Money) Currency() Currency {
	return m.currency
}

// Rounded returns m rounded to cents.
func (m Money) Rounded() Money {
	return Money{amount: Round(m.amount), currency: m.currency}
}

// Add returns the sum of m and other. Returns an error if the currencies do not match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Equal returns true if both the amount and currency of m and other are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the value rounded to cents, for example "1234.50 EUR".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", Round(m.amount).StringFixed(Precision), m.currency.Code())
}
