package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/event"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
)

// TopicStatements carries statement and transfer-list notifications.
const TopicStatements = "dkledger.statements"

func statementCacheKey(year int, contractID uuid.UUID) string {
	return fmt.Sprintf("statement/%d/%s", year, contractID)
}

// BuildStatement handles building the annual statement of one contract.
type BuildStatement struct {
	repo      port.ContractSnapshotRepository
	publisher port.EventPublisher
	cache     port.ReportCache
	builder   *service.StatementBuilder
	metrics   *Metrics
	topic     string
}

func NewBuildStatement(
	repo port.ContractSnapshotRepository,
	publisher port.EventPublisher,
	cache port.ReportCache,
	builder *service.StatementBuilder,
	metrics *Metrics,
	topic string,
) *BuildStatement {
	return &BuildStatement{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		builder:   builder,
		metrics:   metrics,
		topic:     topic,
	}
}

func (uc *BuildStatement) Execute(ctx context.Context, req dto.BuildStatementRequest) (dto.StatementResponse, error) {
	ctx, span := tracer.Start(ctx, "BuildStatement", trace.WithAttributes(
		attribute.String("contract.id", req.ContractID.String()),
		attribute.Int("year", req.Year),
	))
	defer span.End()

	key := statementCacheKey(req.Year, req.ContractID)
	if cached, ok := uc.cache.Get(key); ok {
		if resp, ok := cached.(dto.StatementResponse); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return resp, nil
		}
	}

	contract, err := uc.repo.FindByID(ctx, req.ContractID)
	if err != nil {
		return dto.StatementResponse{}, failSpan(span, fmt.Errorf("failed to find contract: %w", err))
	}

	st, err := uc.builder.Build(contract, req.Year)
	if err != nil {
		uc.metrics.statementFailed(ctx, req.Year)
		return dto.StatementResponse{}, failSpan(span, fmt.Errorf("failed to build statement for %s: %w", contract, err))
	}
	uc.metrics.statementBuilt(ctx, req.Year)

	resp := toStatementResponse(contract, st)
	uc.cache.Set(key, resp)

	// Notifications are best effort; the statement is still returned.
	evt, err := event.NewStatementGenerated(st)
	if err == nil {
		err = uc.publisher.Publish(ctx, uc.topic, evt)
	}
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to publish statement event",
			"contract_id", req.ContractID, "year", req.Year, "error", err)
	}

	return resp, nil
}
