package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/application/usecase"
	"github.com/dkverwaltung/dkledger/internal/domain/event"
	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
	"github.com/dkverwaltung/dkledger/pkg/events"
	"github.com/dkverwaltung/dkledger/pkg/testutil"
)

func depositContract(t *testing.T, number int) model.Contract {
	t.Helper()
	d := testutil.Date
	return testutil.NewContractBuilder(number).
		Version(d(2020, time.January, 1), "0.03", valueobject.InterestTypeNoCompounding).
		Entry(d(2020, time.January, 1), "10000").
		Build(t)
}

func TestBuildStatement_Execute(t *testing.T) {
	t.Run("builds, caches and announces the statement", func(t *testing.T) {
		c := depositContract(t, 1)
		f := newFixture(c)
		uc := f.buildStatement()

		resp, err := uc.Execute(context.Background(), dto.BuildStatementRequest{ContractID: c.ID(), Year: 2021})
		require.NoError(t, err)

		assert.Equal(t, c.ID(), resp.ContractID)
		assert.Equal(t, "Muster, Erika", resp.ContactName)
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, string(service.RowCarriedInterest), resp.Rows[1].Kind)
		testutil.AssertDecimal(t, "300.00", resp.TotalInterest)

		require.Len(t, f.publisher.publishedEvents, 1)
		assert.Equal(t, []string{usecase.TopicStatements}, f.publisher.topics)
		evt, ok := f.publisher.publishedEvents[0].(event.StatementGenerated)
		require.True(t, ok)
		assert.Equal(t, event.TypeStatementGenerated, evt.EventType())
		assert.Equal(t, "300.00", evt.TotalInterest)

		_, err = uc.Execute(context.Background(), dto.BuildStatementRequest{ContractID: c.ID(), Year: 2021})
		require.NoError(t, err)
		assert.Equal(t, 1, f.repo.findCalls, "second call is served from the cache")
		assert.Len(t, f.publisher.publishedEvents, 1)
	})

	t.Run("fails when contract not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.buildStatement().Execute(context.Background(), dto.BuildStatementRequest{ContractID: uuid.New(), Year: 2020})

		require.Error(t, err)
		assert.ErrorIs(t, err, port.ErrContractNotFound)
		assert.Contains(t, err.Error(), "failed to find contract")
	})

	t.Run("fails when an entry precedes the first version", func(t *testing.T) {
		d := testutil.Date
		c := testutil.NewContractBuilder(1).
			Version(d(2020, time.March, 1), "0.03", valueobject.InterestTypeNoCompounding).
			Entry(d(2020, time.February, 1), "10000").
			Build(t)
		f := newFixture(c)

		_, err := f.buildStatement().Execute(context.Background(), dto.BuildStatementRequest{ContractID: c.ID(), Year: 2020})
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrNoApplicableRate)
		assert.Empty(t, f.cache.items)
	})

	t.Run("returns the statement when publishing fails", func(t *testing.T) {
		c := depositContract(t, 1)
		f := newFixture(c)
		f.publisher.publishFunc = func(_ context.Context, _ string, _ ...events.DomainEvent) error {
			return fmt.Errorf("kafka unavailable")
		}

		resp, err := f.buildStatement().Execute(context.Background(), dto.BuildStatementRequest{ContractID: c.ID(), Year: 2020})
		require.NoError(t, err)
		testutil.AssertDecimal(t, "300.00", resp.TotalInterest)
	})
}

func TestGetCarriedInterest_Execute(t *testing.T) {
	c := depositContract(t, 1)
	f := newFixture(c)
	uc := usecase.NewGetCarriedInterest(f.repo, service.NewAccrualWalker(f.timeline))

	t.Run("present after the first year", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.CarriedInterestRequest{ContractID: c.ID(), Cutoff: testutil.Date(2022, time.January, 1)})
		require.NoError(t, err)
		assert.True(t, resp.Present)
		testutil.AssertDecimal(t, "600.00", resp.Amount)
	})

	t.Run("absent in the first year", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.CarriedInterestRequest{ContractID: c.ID(), Cutoff: testutil.Date(2020, time.July, 1)})
		require.NoError(t, err)
		assert.False(t, resp.Present)
		assert.True(t, resp.Amount.IsZero())
	})
}

func TestRefreshOnEntryBooked_Execute(t *testing.T) {
	c := depositContract(t, 1)
	f := newFixture(c)
	statements := f.buildStatement()
	uc := usecase.NewRefreshOnEntryBooked(f.cache, statements)

	_, err := statements.Execute(context.Background(), dto.BuildStatementRequest{ContractID: c.ID(), Year: 2021})
	require.NoError(t, err)
	f.cache.Set("transferlist/2022/0", dto.TransferListResponse{Year: 2022})
	f.cache.Set("transferlist/2019/0", dto.TransferListResponse{Year: 2019})

	resp, err := uc.Execute(context.Background(), dto.EntryBookedRequest{ContractID: c.ID(), Date: testutil.Date(2021, time.March, 3)})
	require.NoError(t, err)

	assert.Equal(t, 2021, resp.Year)
	assert.Equal(t, 2, resp.InvalidatedReports)
	assert.Equal(t, 2, f.repo.findCalls, "statement is rebuilt from a fresh snapshot")
	_, kept := f.cache.Get("transferlist/2019/0")
	assert.True(t, kept)
}
