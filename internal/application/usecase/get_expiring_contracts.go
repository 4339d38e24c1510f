package usecase

import (
	"context"
	"fmt"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
)

// GetExpiringContracts lists contracts with outstanding credit by expiry.
type GetExpiringContracts struct {
	repo      port.ContractSnapshotRepository
	generator *report.Generator
}

func NewGetExpiringContracts(repo port.ContractSnapshotRepository, generator *report.Generator) *GetExpiringContracts {
	return &GetExpiringContracts{repo: repo, generator: generator}
}

func (uc *GetExpiringContracts) Execute(ctx context.Context, req dto.ExpiringContractsRequest) (dto.ExpiringContractsResponse, error) {
	ctx, span := tracer.Start(ctx, "GetExpiringContracts")
	defer span.End()

	contracts, err := uc.repo.ListAll(ctx)
	if err != nil {
		return dto.ExpiringContractsResponse{}, failSpan(span, fmt.Errorf("failed to list contracts: %w", err))
	}

	expiring, err := uc.generator.ExpiringContracts(req.AsOf, contracts)
	if err != nil {
		return dto.ExpiringContractsResponse{}, failSpan(span, fmt.Errorf("failed to list expiring contracts: %w", err))
	}

	out := make([]dto.ExpiringContractDTO, 0, len(expiring))
	for _, e := range expiring {
		out = append(out, dto.ExpiringContractDTO{ContractRefDTO: toRefDTO(e.ContractRef), Balance: e.Balance, Expiry: e.Expiry})
	}
	return dto.ExpiringContractsResponse{AsOf: req.AsOf, Contracts: out}, nil
}
