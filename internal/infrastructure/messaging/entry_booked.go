package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	pkgkafka "github.com/dkverwaltung/dkledger/pkg/kafka"
)

// EntryBookedRefresher is implemented by usecase.RefreshOnEntryBooked.
type EntryBookedRefresher interface {
	Execute(ctx context.Context, req dto.EntryBookedRequest) (dto.EntryBookedResponse, error)
}

// entryBookedMessage is the payload the bookkeeping system emits when an
// accounting entry is booked.
type entryBookedMessage struct {
	ContractID string `json:"contract_id"`
	Date       string `json:"date"`
}

// EntryBookedHandler returns a pkg/kafka handler for entry-booked messages.
// Malformed messages and unknown contracts are logged and skipped so that the
// consumer commits them.
func EntryBookedHandler(refresher EntryBookedRefresher, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		req, err := decodeEntryBooked(msg.Value)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed entry-booked message", "error", err)
			return nil
		}

		resp, err := refresher.Execute(ctx, req)
		if err != nil {
			if errors.Is(err, port.ErrContractNotFound) {
				logger.WarnContext(ctx, "entry booked for unknown contract", "contract_id", req.ContractID)
				return nil
			}
			return err
		}

		logger.InfoContext(ctx, "statement refreshed after booking",
			"contract_id", req.ContractID,
			"year", resp.Year,
			"invalidated", resp.InvalidatedReports,
		)
		return nil
	}
}

func decodeEntryBooked(value []byte) (dto.EntryBookedRequest, error) {
	var m entryBookedMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return dto.EntryBookedRequest{}, fmt.Errorf("decode entry-booked message: %w", err)
	}
	id, err := uuid.Parse(m.ContractID)
	if err != nil {
		return dto.EntryBookedRequest{}, fmt.Errorf("invalid contract_id %q: %w", m.ContractID, err)
	}
	date, err := civil.ParseDate(m.Date)
	if err != nil {
		return dto.EntryBookedRequest{}, fmt.Errorf("invalid date %q: %w", m.Date, err)
	}
	return dto.EntryBookedRequest{ContractID: id, Date: date}, nil
}
