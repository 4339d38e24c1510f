package usecase

import (
	"context"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
)

// The query interfaces below are what the presentation layer depends on.

type StatementQuery interface {
	Execute(ctx context.Context, req dto.BuildStatementRequest) (dto.StatementResponse, error)
}

type CarriedInterestQuery interface {
	Execute(ctx context.Context, req dto.CarriedInterestRequest) (dto.CarriedInterestResponse, error)
}

type TransferListQuery interface {
	Execute(ctx context.Context, req dto.TransferListRequest) (dto.TransferListResponse, error)
}

type AverageRateQuery interface {
	Execute(ctx context.Context, req dto.AverageRateRequest) (dto.AverageRateResponse, error)
}

type RemainingDurationQuery interface {
	Execute(ctx context.Context, req dto.RemainingDurationRequest) (dto.RemainingDurationResponse, error)
}

type ExpiringContractsQuery interface {
	Execute(ctx context.Context, req dto.ExpiringContractsRequest) (dto.ExpiringContractsResponse, error)
}

// Queries bundles the read use cases.
type Queries struct {
	Statement         StatementQuery
	CarriedInterest   CarriedInterestQuery
	TransferList      TransferListQuery
	AverageRate       AverageRateQuery
	RemainingDuration RemainingDurationQuery
	ExpiringContracts ExpiringContractsQuery
}

var (
	_ StatementQuery         = (*BuildStatement)(nil)
	_ CarriedInterestQuery   = (*GetCarriedInterest)(nil)
	_ TransferListQuery      = (*GetTransferList)(nil)
	_ AverageRateQuery       = (*GetAverageRate)(nil)
	_ RemainingDurationQuery = (*GetRemainingDuration)(nil)
	_ ExpiringContractsQuery = (*GetExpiringContracts)(nil)
)
