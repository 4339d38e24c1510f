package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/application/usecase"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/pkg/tlsutil"
)

// --- Mock implementations ---

type statementFunc func(context.Context, dto.BuildStatementRequest) (dto.StatementResponse, error)

func (f statementFunc) Execute(ctx context.Context, req dto.BuildStatementRequest) (dto.StatementResponse, error) {
	return f(ctx, req)
}

type carriedFunc func(context.Context, dto.CarriedInterestRequest) (dto.CarriedInterestResponse, error)

func (f carriedFunc) Execute(ctx context.Context, req dto.CarriedInterestRequest) (dto.CarriedInterestResponse, error) {
	return f(ctx, req)
}

type transferListFunc func(context.Context, dto.TransferListRequest) (dto.TransferListResponse, error)

func (f transferListFunc) Execute(ctx context.Context, req dto.TransferListRequest) (dto.TransferListResponse, error) {
	return f(ctx, req)
}

type averageRateFunc func(context.Context, dto.AverageRateRequest) (dto.AverageRateResponse, error)

func (f averageRateFunc) Execute(ctx context.Context, req dto.AverageRateRequest) (dto.AverageRateResponse, error) {
	return f(ctx, req)
}

type remainingFunc func(context.Context, dto.RemainingDurationRequest) (dto.RemainingDurationResponse, error)

func (f remainingFunc) Execute(ctx context.Context, req dto.RemainingDurationRequest) (dto.RemainingDurationResponse, error) {
	return f(ctx, req)
}

type expiringFunc func(context.Context, dto.ExpiringContractsRequest) (dto.ExpiringContractsResponse, error)

func (f expiringFunc) Execute(ctx context.Context, req dto.ExpiringContractsRequest) (dto.ExpiringContractsResponse, error) {
	return f(ctx, req)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixedNow = time.Date(2024, time.May, 17, 10, 0, 0, 0, time.UTC)

func newTestHandler(q usecase.Queries) *Handler {
	h := NewHandler(q, discard)
	h.now = func() time.Time { return fixedNow }
	return h
}

func sampleStatement(id uuid.UUID, year int) dto.StatementResponse {
	return dto.StatementResponse{
		ContractID:     id,
		ContractNumber: 7,
		ContactNumber:  3,
		ContactName:    "Muster, Erika",
		Year:           year,
		Rows: []dto.StatementRowDTO{{
			Kind:           string(service.RowOpeningBalance),
			Date:           civil.Date{Year: year, Month: 1, Day: 1},
			DateLabel:      fmt.Sprintf("01.01.%d", year),
			Description:    "Saldo",
			Amount:         decimal.NewFromInt(10000),
			Rate:           decimal.RequireFromString("0.03"),
			DaysLeftInYear: 360,
			Interest:       decimal.NewFromInt(300),
		}},
		TotalInterest: decimal.NewFromInt(300),
		TotalBalance:  decimal.NewFromInt(10300),
	}
}

// --- Tests ---

func TestHandler_BuildStatement(t *testing.T) {
	id := uuid.New()

	t.Run("returns the statement", func(t *testing.T) {
		h := newTestHandler(usecase.Queries{
			Statement: statementFunc(func(_ context.Context, req dto.BuildStatementRequest) (dto.StatementResponse, error) {
				assert.Equal(t, id, req.ContractID)
				return sampleStatement(req.ContractID, req.Year), nil
			}),
		})

		resp, err := h.BuildStatement(context.Background(), &BuildStatementRequest{ContractID: id.String(), Year: 2020})
		require.NoError(t, err)
		assert.Equal(t, 2020, resp.Statement.Year)
		assert.Equal(t, "300.00", resp.Statement.TotalInterest)
		assert.Equal(t, "10300.00", resp.Statement.Rows[0].Balance)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		h := newTestHandler(usecase.Queries{})
		tests := []struct {
			name string
			req  *BuildStatementRequest
		}{
			{name: "missing id", req: &BuildStatementRequest{Year: 2020}},
			{name: "malformed id", req: &BuildStatementRequest{ContractID: "abc", Year: 2020}},
			{name: "year out of range", req: &BuildStatementRequest{ContractID: id.String(), Year: 20}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := h.BuildStatement(context.Background(), tt.req)
				assert.Equal(t, codes.InvalidArgument, status.Code(err))
			})
		}
	})

	t.Run("maps use case errors", func(t *testing.T) {
		tests := []struct {
			err  error
			code codes.Code
		}{
			{err: fmt.Errorf("failed to find contract: %w", port.ErrContractNotFound), code: codes.NotFound},
			{err: fmt.Errorf("contract 7: %w", service.ErrNoApplicableRate), code: codes.FailedPrecondition},
			{err: errors.New("connection reset"), code: codes.Internal},
		}
		for _, tt := range tests {
			h := newTestHandler(usecase.Queries{
				Statement: statementFunc(func(context.Context, dto.BuildStatementRequest) (dto.StatementResponse, error) {
					return dto.StatementResponse{}, tt.err
				}),
			})
			_, err := h.BuildStatement(context.Background(), &BuildStatementRequest{ContractID: id.String(), Year: 2020})
			assert.Equal(t, tt.code, status.Code(err), tt.err.Error())
		}
	})
}

func TestHandler_InternalErrorsAreOpaque(t *testing.T) {
	h := newTestHandler(usecase.Queries{
		Statement: statementFunc(func(context.Context, dto.BuildStatementRequest) (dto.StatementResponse, error) {
			return dto.StatementResponse{}, errors.New("password authentication failed for user dkledger")
		}),
	})
	_, err := h.BuildStatement(context.Background(), &BuildStatementRequest{ContractID: uuid.NewString(), Year: 2020})
	assert.Equal(t, "internal error", status.Convert(err).Message())
}

func TestHandler_GetCarriedInterest(t *testing.T) {
	id := uuid.New()
	h := newTestHandler(usecase.Queries{
		CarriedInterest: carriedFunc(func(_ context.Context, req dto.CarriedInterestRequest) (dto.CarriedInterestResponse, error) {
			return dto.CarriedInterestResponse{ContractID: req.ContractID, Cutoff: req.Cutoff, Present: true, Amount: decimal.NewFromInt(300)}, nil
		}),
	})

	resp, err := h.GetCarriedInterest(context.Background(), &GetCarriedInterestRequest{ContractID: id.String(), Cutoff: "2021-01-01"})
	require.NoError(t, err)
	assert.True(t, resp.CarriedInterest.Present)
	assert.Equal(t, "300.00", resp.CarriedInterest.Amount)
	assert.Equal(t, "2021-01-01", resp.CarriedInterest.Cutoff)

	_, err = h.GetCarriedInterest(context.Background(), &GetCarriedInterestRequest{ContractID: id.String()})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.GetCarriedInterest(context.Background(), &GetCarriedInterestRequest{ContractID: id.String(), Cutoff: "01.01.2021"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_GetTransferList(t *testing.T) {
	var got dto.TransferListRequest
	h := newTestHandler(usecase.Queries{
		TransferList: transferListFunc(func(_ context.Context, req dto.TransferListRequest) (dto.TransferListResponse, error) {
			got = req
			st := sampleStatement(uuid.New(), req.Year)
			return dto.TransferListResponse{
				Year: req.Year,
				Items: []dto.TransferListItemDTO{{
					ContractRefDTO: dto.ContractRefDTO{ContractID: st.ContractID, ContractNumber: 7, ContactNumber: 3},
					Rows:           st.Rows,
					TotalInterest:  st.TotalInterest,
					TotalBalance:   st.TotalBalance,
				}},
				TotalInterest: st.TotalInterest,
				TotalBalance:  st.TotalBalance,
			}, nil
		}),
	})

	resp, err := h.GetTransferList(context.Background(), &GetTransferListRequest{Year: 2020, ContactNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, dto.TransferListRequest{Year: 2020, ContactNumber: 3}, got)
	require.Len(t, resp.TransferList.Items, 1)
	assert.Equal(t, 2020, resp.TransferList.Items[0].Year)

	_, err = h.GetTransferList(context.Background(), &GetTransferListRequest{Year: 2020, ContactNumber: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_DefaultDates(t *testing.T) {
	var (
		averageAsOf civil.Date
		cutoff      civil.Date
		expiringAt  civil.Date
	)
	h := newTestHandler(usecase.Queries{
		AverageRate: averageRateFunc(func(_ context.Context, req dto.AverageRateRequest) (dto.AverageRateResponse, error) {
			averageAsOf = req.AsOf
			return dto.AverageRateResponse{}, fmt.Errorf("average: %w", report.ErrUndefinedAverage)
		}),
		RemainingDuration: remainingFunc(func(_ context.Context, req dto.RemainingDurationRequest) (dto.RemainingDurationResponse, error) {
			cutoff = req.Cutoff
			return dto.RemainingDurationResponse{Cutoff: req.Cutoff}, nil
		}),
		ExpiringContracts: expiringFunc(func(_ context.Context, req dto.ExpiringContractsRequest) (dto.ExpiringContractsResponse, error) {
			expiringAt = req.AsOf
			return dto.ExpiringContractsResponse{AsOf: req.AsOf}, nil
		}),
	})
	ctx := context.Background()

	_, err := h.GetAverageRate(ctx, &GetAverageRateRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, civil.Date{Year: 2024, Month: 5, Day: 17}, averageAsOf)

	resp, err := h.GetRemainingDuration(ctx, &GetRemainingDurationRequest{})
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: 12, Day: 31}, cutoff)
	assert.Equal(t, "2024-12-31", resp.RemainingDuration.Cutoff)

	_, err = h.GetExpiringContracts(ctx, &GetExpiringContractsRequest{AsOf: "2023-06-30"})
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2023, Month: 6, Day: 30}, expiringAt)
}

func TestServer_JSONOverGRPC(t *testing.T) {
	id := uuid.New()
	h := newTestHandler(usecase.Queries{
		Statement: statementFunc(func(_ context.Context, req dto.BuildStatementRequest) (dto.StatementResponse, error) {
			if req.ContractID != id {
				return dto.StatementResponse{}, port.ErrContractNotFound
			}
			return sampleStatement(req.ContractID, req.Year), nil
		}),
	})
	srv := NewServer(h, discard, ServerConfig{})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resp BuildStatementResponse
	err = conn.Invoke(ctx, "/dkledger.v1.StatementService/BuildStatement",
		&BuildStatementRequest{ContractID: id.String(), Year: 2020}, &resp,
		grpclib.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.Statement.ContractID)
	assert.Equal(t, "10300.00", resp.Statement.TotalBalance)

	err = conn.Invoke(ctx, "/dkledger.v1.StatementService/BuildStatement",
		&BuildStatementRequest{ContractID: uuid.NewString(), Year: 2020}, &resp,
		grpclib.CallContentSubtype("json"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)
}

func TestServer_TLS(t *testing.T) {
	bundle, err := tlsutil.WriteSelfSigned(t.TempDir(), "bufnet")
	require.NoError(t, err)
	serverCreds, err := tlsutil.ServerCredentials(bundle.CertFile, bundle.KeyFile)
	require.NoError(t, err)
	clientCreds, err := tlsutil.ClientCredentials(bundle.CAFile)
	require.NoError(t, err)

	srv := NewServer(newTestHandler(usecase.Queries{}), discard, ServerConfig{Creds: serverCreds})
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpclib.WithTransportCredentials(clientCreds),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)
}
