package view_test

import (
	"encoding/json"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/presentation/view"
)

func TestFromStatement(t *testing.T) {
	id := uuid.MustParse("0b5a7c1e-2d2f-4d0a-8f4e-6c7d8e9f0a1b")
	st := view.FromStatement(dto.StatementResponse{
		ContractID:     id,
		ContractNumber: 12,
		ContactNumber:  3,
		ContactName:    "Muster, Erika",
		Year:           2020,
		Rows: []dto.StatementRowDTO{{
			Kind:           "OPENING_BALANCE",
			Date:           civil.Date{Year: 2020, Month: 1, Day: 1},
			DateLabel:      "01.01.2020",
			Description:    "Saldo",
			Amount:         decimal.NewFromInt(10000),
			Rate:           decimal.RequireFromString("0.0300"),
			DaysLeftInYear: 360,
			Interest:       decimal.NewFromInt(300),
		}},
		TotalInterest: decimal.NewFromInt(300),
		TotalBalance:  decimal.NewFromInt(10300),
	})

	require.Len(t, st.Rows, 1)
	assert.Equal(t, "2020-01-01", st.Rows[0].Date)
	assert.Equal(t, "10000.00", st.Rows[0].Amount)
	assert.Equal(t, "0.03", st.Rows[0].Rate)
	assert.Equal(t, "10300.00", st.Rows[0].Balance)
	assert.Equal(t, "10300.00", st.TotalBalance)

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"contract_id":"0b5a7c1e-2d2f-4d0a-8f4e-6c7d8e9f0a1b"`)
	assert.Contains(t, string(raw), `"contact_name":"Muster, Erika"`)
	assert.Contains(t, string(raw), `"days_left_in_year":360`)
}

func TestFromRemainingDuration(t *testing.T) {
	r := view.FromRemainingDuration(dto.RemainingDurationResponse{
		Cutoff: civil.Date{Year: 2020, Month: 12, Day: 31},
		Buckets: []dto.RemainingBucketDTO{
			{Label: "bis 1 Jahr", Balance: decimal.NewFromInt(5000), Contracts: []dto.RemainingContractDTO{{
				Balance:        decimal.NewFromInt(5000),
				Expiry:         civil.Date{Year: 2021, Month: 3, Day: 31},
				RemainingYears: decimal.RequireFromString("0.25"),
			}}},
			{Label: "1 bis 5 Jahre", Balance: decimal.Zero},
		},
		Balance: decimal.NewFromInt(5000),
	})

	assert.Equal(t, "2020-12-31", r.Cutoff)
	require.Len(t, r.Buckets, 2)
	assert.Equal(t, "0.25", r.Buckets[0].Contracts[0].RemainingYears)
	assert.Equal(t, "2021-03-31", r.Buckets[0].Contracts[0].Expiry)
	assert.Empty(t, r.Buckets[1].Contracts)
	assert.Equal(t, "0.00", r.Buckets[1].Balance)
}

func TestFromCarriedInterest(t *testing.T) {
	c := view.FromCarriedInterest(dto.CarriedInterestResponse{
		ContractID: uuid.New(),
		Cutoff:     civil.Date{Year: 2021, Month: 1, Day: 1},
		Present:    false,
		Amount:     decimal.Zero,
	})
	assert.False(t, c.Present)
	assert.Equal(t, "0.00", c.Amount)
	assert.Equal(t, "2021-01-01", c.Cutoff)
}
