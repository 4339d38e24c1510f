package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
)

// GetRemainingDuration handles the remaining-duration report.
type GetRemainingDuration struct {
	repo      port.ContractSnapshotRepository
	generator *report.Generator
	metrics   *Metrics
}

func NewGetRemainingDuration(repo port.ContractSnapshotRepository, generator *report.Generator, metrics *Metrics) *GetRemainingDuration {
	return &GetRemainingDuration{repo: repo, generator: generator, metrics: metrics}
}

func (uc *GetRemainingDuration) Execute(ctx context.Context, req dto.RemainingDurationRequest) (dto.RemainingDurationResponse, error) {
	ctx, span := tracer.Start(ctx, "GetRemainingDuration")
	defer span.End()
	defer uc.metrics.observeReport(ctx, "remaining_duration", time.Now())

	contracts, err := uc.repo.ListAll(ctx)
	if err != nil {
		return dto.RemainingDurationResponse{}, failSpan(span, fmt.Errorf("failed to list contracts: %w", err))
	}

	r, err := uc.generator.RemainingDuration(req.Cutoff, contracts)
	if err != nil {
		return dto.RemainingDurationResponse{}, failSpan(span, fmt.Errorf("failed to compute remaining duration: %w", err))
	}
	return toRemainingDurationResponse(r), nil
}
