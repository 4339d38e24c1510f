package usecase

import (
	"context"
	"fmt"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
)

// RefreshOnEntryBooked reacts to a booked accounting entry: cached results for
// the entry's year and all later years are dropped, since the carried interest
// of every later year depends on the entry, and the contract's statement for
// the entry's year is rebuilt.
type RefreshOnEntryBooked struct {
	cache      port.ReportCache
	statements *BuildStatement
}

func NewRefreshOnEntryBooked(cache port.ReportCache, statements *BuildStatement) *RefreshOnEntryBooked {
	return &RefreshOnEntryBooked{cache: cache, statements: statements}
}

func (uc *RefreshOnEntryBooked) Execute(ctx context.Context, req dto.EntryBookedRequest) (dto.EntryBookedResponse, error) {
	ctx, span := tracer.Start(ctx, "RefreshOnEntryBooked")
	defer span.End()

	year := req.Date.Year
	dropped := uc.cache.InvalidateFrom(year)

	st, err := uc.statements.Execute(ctx, dto.BuildStatementRequest{ContractID: req.ContractID, Year: year})
	if err != nil {
		return dto.EntryBookedResponse{}, failSpan(span, fmt.Errorf("failed to refresh statement: %w", err))
	}

	return dto.EntryBookedResponse{Year: year, InvalidatedReports: dropped, Statement: st}, nil
}
