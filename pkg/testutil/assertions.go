package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// AssertDecimal checks that got equals the decimal literal want, ignoring
// trailing zeros.
func AssertDecimal(t *testing.T, want string, got decimal.Decimal) bool {
	t.Helper()
	w := decimal.RequireFromString(want)
	return assert.True(t, got.Equal(w), "expected %s, got %s", w, got)
}
