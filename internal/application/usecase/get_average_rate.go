package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
)

// GetAverageRate handles the credit-weighted average rate report.
type GetAverageRate struct {
	repo      port.ContractSnapshotRepository
	generator *report.Generator
	metrics   *Metrics
}

func NewGetAverageRate(repo port.ContractSnapshotRepository, generator *report.Generator, metrics *Metrics) *GetAverageRate {
	return &GetAverageRate{repo: repo, generator: generator, metrics: metrics}
}

func (uc *GetAverageRate) Execute(ctx context.Context, req dto.AverageRateRequest) (dto.AverageRateResponse, error) {
	ctx, span := tracer.Start(ctx, "GetAverageRate")
	defer span.End()
	defer uc.metrics.observeReport(ctx, "average_rate", time.Now())

	contracts, total, err := uc.repo.ListWithLedgerTotal(ctx, req.AsOf)
	if err != nil {
		return dto.AverageRateResponse{}, failSpan(span, fmt.Errorf("failed to load ledger snapshot: %w", err))
	}

	r, err := uc.generator.AverageRate(contracts, total, req.AsOf)
	if err != nil {
		return dto.AverageRateResponse{}, failSpan(span, fmt.Errorf("failed to compute average rate: %w", err))
	}
	return toAverageRateResponse(r), nil
}
