package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
)

// Code maps a use case error to a gRPC status code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, port.ErrContractNotFound):
		return codes.NotFound
	case errors.Is(err, report.ErrInconsistentLedger),
		errors.Is(err, report.ErrUndefinedAverage),
		errors.Is(err, service.ErrNoApplicableRate),
		errors.Is(err, service.ErrNegativeDayCount),
		errors.Is(err, model.ErrNoVersions),
		errors.Is(err, model.ErrVersionOrder),
		errors.Is(err, model.ErrInvalidVersion),
		errors.Is(err, model.ErrInvalidEntry),
		errors.Is(err, model.ErrInvalidContract),
		errors.Is(err, valueobject.ErrInvalidInterestType):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// toStatus converts err into a status error. Internal errors are not
// described to the caller.
func toStatus(err error) error {
	code := Code(err)
	if code == codes.Internal {
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
