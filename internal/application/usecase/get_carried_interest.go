package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/pkg/money"
)

// GetCarriedInterest handles the prior-years interest query for one contract.
type GetCarriedInterest struct {
	repo   port.ContractSnapshotRepository
	walker *service.AccrualWalker
}

func NewGetCarriedInterest(repo port.ContractSnapshotRepository, walker *service.AccrualWalker) *GetCarriedInterest {
	return &GetCarriedInterest{repo: repo, walker: walker}
}

func (uc *GetCarriedInterest) Execute(ctx context.Context, req dto.CarriedInterestRequest) (dto.CarriedInterestResponse, error) {
	ctx, span := tracer.Start(ctx, "GetCarriedInterest")
	defer span.End()

	contract, err := uc.repo.FindByID(ctx, req.ContractID)
	if err != nil {
		return dto.CarriedInterestResponse{}, failSpan(span, fmt.Errorf("failed to find contract: %w", err))
	}

	carried, err := uc.walker.CarriedInterest(contract, req.Cutoff)
	if err != nil {
		return dto.CarriedInterestResponse{}, failSpan(span, fmt.Errorf("failed to compute carried interest: %w", err))
	}

	resp := dto.CarriedInterestResponse{ContractID: req.ContractID, Cutoff: req.Cutoff, Amount: decimal.Zero}
	if carried.Valid {
		resp.Present = true
		resp.Amount = money.Round(carried.Decimal)
	}
	return resp, nil
}
