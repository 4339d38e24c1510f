package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
	"github.com/dkverwaltung/dkledger/pkg/money"
	"github.com/dkverwaltung/dkledger/pkg/testutil"
)

func newWalker(caps service.InflationCaps) *service.AccrualWalker {
	return service.NewAccrualWalker(service.NewRateTimeline(caps))
}

func TestAccrualWalker_AbsentBeforeFirstVersion(t *testing.T) {
	d := testutil.Date
	c := testutil.NewContractBuilder(1).
		Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
		Entry(d(2020, time.January, 1), "10000").
		Build(t)

	got, err := newWalker(nil).CarriedInterest(c, d(2020, time.June, 1))
	require.NoError(t, err)
	assert.False(t, got.Valid)
}

func TestAccrualWalker_ZeroIsNotAbsent(t *testing.T) {
	d := testutil.Date
	c := testutil.NewContractBuilder(1).
		Version(d(2019, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
		Build(t)

	got, err := newWalker(nil).CarriedInterest(c, d(2020, time.January, 1))
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.True(t, got.Decimal.IsZero())
}

func TestAccrualWalker_CarriedInterest(t *testing.T) {
	d := testutil.Date
	tests := []struct {
		name   string
		build  func(*testutil.ContractBuilder) *testutil.ContractBuilder
		cutoff int
		want   string
	}{
		{
			name: "single year",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Entry(d(2020, time.January, 1), "10000")
			},
			cutoff: 2021,
			want:   "300",
		},
		{
			name: "non-compounding over two years",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2019, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Entry(d(2019, time.January, 1), "10000")
			},
			cutoff: 2021,
			want:   "600",
		},
		{
			name: "compounding over two years",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2019, time.January, 1), "0.03", valueobject.InterestTypeCompounding).
					Entry(d(2019, time.January, 1), "10000")
			},
			cutoff: 2021,
			want:   "609",
		},
		{
			name: "plain years stay out of the compounding base",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2018, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Version(d(2019, time.January, 1), "0.02", valueobject.InterestTypeCompounding).
					Entry(d(2018, time.January, 1), "10000")
			},
			// 300 + 10000 × 2% + 10200 × 2%
			cutoff: 2021,
			want:   "704",
		},
		{
			name: "capitalized interest stops earning once compounding ends",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2018, time.January, 1), "0.03", valueobject.InterestTypeCompounding).
					Version(d(2019, time.January, 1), "0.02", valueobject.InterestTypeNoCompounding).
					Entry(d(2018, time.January, 1), "10000")
			},
			cutoff: 2020,
			want:   "500",
		},
		{
			name: "mid-year deposit",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Entry(d(2020, time.June, 15), "5000")
			},
			cutoff: 2021,
			want:   "81.67",
		},
		{
			name: "rate change mid-year",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Version(d(2020, time.July, 1), "0.01", valueobject.InterestTypeNoCompounding).
					Entry(d(2020, time.January, 1), "10000")
			},
			cutoff: 2021,
			want:   "200",
		},
		{
			name: "withdrawal stops accrual from its date",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Entry(d(2020, time.January, 1), "10000").
					Entry(d(2020, time.July, 1), "-10000")
			},
			cutoff: 2021,
			want:   "150",
		},
		{
			name: "capitalized interest stops earning after switching away from compounding",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2019, time.January, 1), "0.03", valueobject.InterestTypeCompounding).
					Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Entry(d(2019, time.January, 1), "10000")
			},
			cutoff: 2021,
			want:   "600",
		},
		{
			name: "direct payout carries nothing",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2019, time.January, 1), "0.03", valueobject.InterestTypeDirectPayout).
					Entry(d(2019, time.January, 1), "10000")
			},
			cutoff: 2021,
			want:   "0",
		},
		{
			name: "entries in the cutoff year are ignored",
			build: func(b *testutil.ContractBuilder) *testutil.ContractBuilder {
				return b.Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
					Entry(d(2020, time.January, 1), "10000").
					Entry(d(2021, time.January, 1), "50000")
			},
			cutoff: 2021,
			want:   "300",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.build(testutil.NewContractBuilder(1)).Build(t)
			got, err := newWalker(nil).CarriedInterest(c, testutil.Date(tt.cutoff, time.March, 1))
			require.NoError(t, err)
			require.True(t, got.Valid)
			testutil.AssertDecimal(t, tt.want, money.Round(got.Decimal))
		})
	}
}

func TestAccrualWalker_FragmentsSplitAtYearBoundary(t *testing.T) {
	d := testutil.Date
	c := testutil.NewContractBuilder(1).
		Version(d(2019, time.July, 1), "0.02", valueobject.InterestTypeNoCompounding).
		Entry(d(2019, time.July, 1), "1000").
		Build(t)

	fragments, ok, err := newWalker(nil).Fragments(c, d(2021, time.March, 1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, fragments, 2)

	assert.Equal(t, d(2019, time.July, 1), fragments[0].Start)
	assert.Equal(t, 180, fragments[0].Days)
	assert.Equal(t, d(2020, time.January, 1), fragments[1].Start)
	assert.Equal(t, 360, fragments[1].Days)
	for _, f := range fragments {
		testutil.AssertDecimal(t, "1000", f.Principal)
		assert.False(t, f.PaidOut)
	}
}

func TestAccrualWalker_InflationCappedFragments(t *testing.T) {
	d := testutil.Date
	c := testutil.NewContractBuilder(1).
		Version(d(2019, time.January, 1), "0.05", valueobject.InterestTypeNoCompoundingCapped).
		Entry(d(2019, time.January, 1), "10000").
		Entry(d(2019, time.May, 1), "2000").
		Build(t)
	walker := newWalker(testCaps())

	fragments, ok, err := walker.Fragments(c, d(2020, time.January, 1))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, fragments)
	for _, f := range fragments {
		testutil.AssertDecimal(t, "0.014", f.Rate)
	}

	got, err := walker.CarriedInterest(c, d(2020, time.January, 1))
	require.NoError(t, err)
	// 10000 × 1.4% + 2000 × 1.4% × 240/360
	testutil.AssertDecimal(t, "158.67", money.Round(got.Decimal))
}

func TestAccrualWalker_PayoutMarksFragments(t *testing.T) {
	d := testutil.Date
	c := testutil.NewContractBuilder(1).
		Version(d(2019, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
		Version(d(2020, time.June, 1), "0.03", valueobject.InterestTypeDirectPayout).
		Entry(d(2019, time.January, 1), "10000").
		Build(t)

	fragments, ok, err := newWalker(nil).Fragments(c, d(2021, time.January, 1))
	require.NoError(t, err)
	require.True(t, ok)
	for _, f := range fragments {
		assert.True(t, f.PaidOut, "fragment starting %s", f.Start)
	}
}

func TestAccrualWalker_EntryBeforeFirstVersion(t *testing.T) {
	d := testutil.Date
	c := testutil.NewContractBuilder(1).
		Version(d(2019, time.March, 1), "0.03", valueobject.InterestTypeNoCompounding).
		Entry(d(2019, time.February, 1), "10000").
		Build(t)

	_, err := newWalker(nil).CarriedInterest(c, d(2021, time.January, 1))
	assert.ErrorIs(t, err, service.ErrNoApplicableRate)
}
