package grpc

// proto.go defines the gRPC server interface and messages of
// dkledger.v1.StatementService. Messages travel with the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dkverwaltung/dkledger/internal/presentation/view"
)

const serviceName = "dkledger.v1.StatementService"

type BuildStatementRequest struct {
	ContractID string `json:"contract_id"`
	Year       int    `json:"year"`
}

type BuildStatementResponse struct {
	Statement view.Statement `json:"statement"`
}

type GetCarriedInterestRequest struct {
	ContractID string `json:"contract_id"`
	// Cutoff is an ISO date; interest is carried from the years before it.
	Cutoff string `json:"cutoff"`
}

type GetCarriedInterestResponse struct {
	CarriedInterest view.CarriedInterest `json:"carried_interest"`
}

type GetTransferListRequest struct {
	Year          int `json:"year"`
	ContactNumber int `json:"contact_number"`
}

type GetTransferListResponse struct {
	TransferList view.TransferList `json:"transfer_list"`
}

type GetAverageRateRequest struct {
	AsOf string `json:"as_of"`
}

type GetAverageRateResponse struct {
	AverageRate view.AverageRate `json:"average_rate"`
}

type GetRemainingDurationRequest struct {
	Cutoff string `json:"cutoff"`
}

type GetRemainingDurationResponse struct {
	RemainingDuration view.RemainingDuration `json:"remaining_duration"`
}

type GetExpiringContractsRequest struct {
	AsOf string `json:"as_of"`
}

type GetExpiringContractsResponse struct {
	ExpiringContracts view.ExpiringContracts `json:"expiring_contracts"`
}

// StatementServiceServer is the server API for StatementService.
type StatementServiceServer interface {
	BuildStatement(context.Context, *BuildStatementRequest) (*BuildStatementResponse, error)
	GetCarriedInterest(context.Context, *GetCarriedInterestRequest) (*GetCarriedInterestResponse, error)
	GetTransferList(context.Context, *GetTransferListRequest) (*GetTransferListResponse, error)
	GetAverageRate(context.Context, *GetAverageRateRequest) (*GetAverageRateResponse, error)
	GetRemainingDuration(context.Context, *GetRemainingDurationRequest) (*GetRemainingDurationResponse, error)
	GetExpiringContracts(context.Context, *GetExpiringContractsRequest) (*GetExpiringContractsResponse, error)
	mustEmbedUnimplementedStatementServiceServer()
}

// UnimplementedStatementServiceServer provides forward-compatible default implementations.
type UnimplementedStatementServiceServer struct{}

func (UnimplementedStatementServiceServer) BuildStatement(context.Context, *BuildStatementRequest) (*BuildStatementResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method BuildStatement not implemented")
}
func (UnimplementedStatementServiceServer) GetCarriedInterest(context.Context, *GetCarriedInterestRequest) (*GetCarriedInterestResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCarriedInterest not implemented")
}
func (UnimplementedStatementServiceServer) GetTransferList(context.Context, *GetTransferListRequest) (*GetTransferListResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetTransferList not implemented")
}
func (UnimplementedStatementServiceServer) GetAverageRate(context.Context, *GetAverageRateRequest) (*GetAverageRateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAverageRate not implemented")
}
func (UnimplementedStatementServiceServer) GetRemainingDuration(context.Context, *GetRemainingDurationRequest) (*GetRemainingDurationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRemainingDuration not implemented")
}
func (UnimplementedStatementServiceServer) GetExpiringContracts(context.Context, *GetExpiringContractsRequest) (*GetExpiringContractsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetExpiringContracts not implemented")
}
func (UnimplementedStatementServiceServer) mustEmbedUnimplementedStatementServiceServer() {}

// RegisterStatementServiceServer registers srv with the gRPC server.
func RegisterStatementServiceServer(s grpclib.ServiceRegistrar, srv StatementServiceServer) {
	s.RegisterService(&statementServiceDesc, srv)
}

var statementServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StatementServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unaryMethod("BuildStatement", StatementServiceServer.BuildStatement),
		unaryMethod("GetCarriedInterest", StatementServiceServer.GetCarriedInterest),
		unaryMethod("GetTransferList", StatementServiceServer.GetTransferList),
		unaryMethod("GetAverageRate", StatementServiceServer.GetAverageRate),
		unaryMethod("GetRemainingDuration", StatementServiceServer.GetRemainingDuration),
		unaryMethod("GetExpiringContracts", StatementServiceServer.GetExpiringContracts),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "dkledger/v1/statement.proto",
}

// unaryMethod adapts a typed method expression to a grpc.MethodDesc whose
// handler runs the server's interceptor chain when there is one.
func unaryMethod[Req, Resp any](
	name string,
	method func(StatementServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	handler := func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		call := func(ctx context.Context, req any) (any, error) {
			return method(srv.(StatementServiceServer), ctx, req.(*Req))
		}
		if interceptor == nil {
			return call(ctx, req)
		}
		return interceptor(ctx, req, &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, call)
	}
	return grpclib.MethodDesc{MethodName: name, Handler: handler}
}
