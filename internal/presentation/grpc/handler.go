package grpc

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/application/usecase"
	"github.com/dkverwaltung/dkledger/internal/presentation/view"
)

// Compile-time assertion that Handler implements StatementServiceServer.
var _ StatementServiceServer = (*Handler)(nil)

// Handler implements the StatementServiceServer gRPC interface.
type Handler struct {
	UnimplementedStatementServiceServer
	queries usecase.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler creates a new gRPC Handler.
func NewHandler(queries usecase.Queries, logger *slog.Logger) *Handler {
	return &Handler{queries: queries, logger: logger, now: time.Now}
}

func (h *Handler) today() civil.Date {
	return civil.DateOf(h.now())
}

func (h *Handler) BuildStatement(ctx context.Context, req *BuildStatementRequest) (*BuildStatementResponse, error) {
	id, err := parseContractID(req.ContractID)
	if err != nil {
		return nil, err
	}
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}

	resp, err := h.queries.Statement.Execute(ctx, dto.BuildStatementRequest{ContractID: id, Year: req.Year})
	if err != nil {
		h.logger.ErrorContext(ctx, "BuildStatement failed", "error", err, "contract_id", id, "year", req.Year)
		return nil, toStatus(err)
	}
	return &BuildStatementResponse{Statement: view.FromStatement(resp)}, nil
}

func (h *Handler) GetCarriedInterest(ctx context.Context, req *GetCarriedInterestRequest) (*GetCarriedInterestResponse, error) {
	id, err := parseContractID(req.ContractID)
	if err != nil {
		return nil, err
	}
	if req.Cutoff == "" {
		return nil, status.Error(codes.InvalidArgument, "cutoff is required")
	}
	cutoff, err := parseDate("cutoff", req.Cutoff, civil.Date{})
	if err != nil {
		return nil, err
	}

	resp, err := h.queries.CarriedInterest.Execute(ctx, dto.CarriedInterestRequest{ContractID: id, Cutoff: cutoff})
	if err != nil {
		h.logger.ErrorContext(ctx, "GetCarriedInterest failed", "error", err, "contract_id", id)
		return nil, toStatus(err)
	}
	return &GetCarriedInterestResponse{CarriedInterest: view.FromCarriedInterest(resp)}, nil
}

func (h *Handler) GetTransferList(ctx context.Context, req *GetTransferListRequest) (*GetTransferListResponse, error) {
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}
	if req.ContactNumber < 0 {
		return nil, status.Error(codes.InvalidArgument, "contact_number must not be negative")
	}

	resp, err := h.queries.TransferList.Execute(ctx, dto.TransferListRequest{Year: req.Year, ContactNumber: req.ContactNumber})
	if err != nil {
		h.logger.ErrorContext(ctx, "GetTransferList failed", "error", err, "year", req.Year)
		return nil, toStatus(err)
	}
	return &GetTransferListResponse{TransferList: view.FromTransferList(resp)}, nil
}

func (h *Handler) GetAverageRate(ctx context.Context, req *GetAverageRateRequest) (*GetAverageRateResponse, error) {
	asOf, err := parseDate("as_of", req.AsOf, h.today())
	if err != nil {
		return nil, err
	}

	resp, err := h.queries.AverageRate.Execute(ctx, dto.AverageRateRequest{AsOf: asOf})
	if err != nil {
		h.logger.ErrorContext(ctx, "GetAverageRate failed", "error", err, "as_of", asOf)
		return nil, toStatus(err)
	}
	return &GetAverageRateResponse{AverageRate: view.FromAverageRate(resp)}, nil
}

func (h *Handler) GetRemainingDuration(ctx context.Context, req *GetRemainingDurationRequest) (*GetRemainingDurationResponse, error) {
	cutoff, err := parseDate("cutoff", req.Cutoff, civil.Date{Year: h.now().Year(), Month: time.December, Day: 31})
	if err != nil {
		return nil, err
	}

	resp, err := h.queries.RemainingDuration.Execute(ctx, dto.RemainingDurationRequest{Cutoff: cutoff})
	if err != nil {
		h.logger.ErrorContext(ctx, "GetRemainingDuration failed", "error", err, "cutoff", cutoff)
		return nil, toStatus(err)
	}
	return &GetRemainingDurationResponse{RemainingDuration: view.FromRemainingDuration(resp)}, nil
}

func (h *Handler) GetExpiringContracts(ctx context.Context, req *GetExpiringContractsRequest) (*GetExpiringContractsResponse, error) {
	asOf, err := parseDate("as_of", req.AsOf, h.today())
	if err != nil {
		return nil, err
	}

	resp, err := h.queries.ExpiringContracts.Execute(ctx, dto.ExpiringContractsRequest{AsOf: asOf})
	if err != nil {
		h.logger.ErrorContext(ctx, "GetExpiringContracts failed", "error", err, "as_of", asOf)
		return nil, toStatus(err)
	}
	return &GetExpiringContractsResponse{ExpiringContracts: view.FromExpiringContracts(resp)}, nil
}

func parseContractID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "contract_id is required")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid contract_id: %v", err)
	}
	return id, nil
}

func validateYear(year int) error {
	if year < 1900 || year > 9999 {
		return status.Errorf(codes.InvalidArgument, "year %d out of range", year)
	}
	return nil
}

// parseDate parses an ISO date, returning def for an empty string.
func parseDate(field, s string, def civil.Date) (civil.Date, error) {
	if s == "" {
		return def, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return d, nil
}
