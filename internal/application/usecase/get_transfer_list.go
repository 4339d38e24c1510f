package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/event"
	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
)

func transferListCacheKey(year, contactNumber int) string {
	return fmt.Sprintf("transferlist/%d/%d", year, contactNumber)
}

// GetTransferList handles the annual transfer list. Statements are built
// concurrently, at most workers at a time.
type GetTransferList struct {
	repo      port.ContractSnapshotRepository
	publisher port.EventPublisher
	cache     port.ReportCache
	builder   *service.StatementBuilder
	metrics   *Metrics
	topic     string
	workers   int
}

func NewGetTransferList(
	repo port.ContractSnapshotRepository,
	publisher port.EventPublisher,
	cache port.ReportCache,
	builder *service.StatementBuilder,
	metrics *Metrics,
	topic string,
	workers int,
) *GetTransferList {
	if workers < 1 {
		workers = 1
	}
	return &GetTransferList{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		builder:   builder,
		metrics:   metrics,
		topic:     topic,
		workers:   workers,
	}
}

func (uc *GetTransferList) Execute(ctx context.Context, req dto.TransferListRequest) (dto.TransferListResponse, error) {
	ctx, span := tracer.Start(ctx, "GetTransferList", trace.WithAttributes(
		attribute.Int("year", req.Year),
		attribute.Int("contact.number", req.ContactNumber),
	))
	defer span.End()
	defer uc.metrics.observeReport(ctx, "transfer_list", time.Now())

	key := transferListCacheKey(req.Year, req.ContactNumber)
	if cached, ok := uc.cache.Get(key); ok {
		if resp, ok := cached.(dto.TransferListResponse); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return resp, nil
		}
	}

	contracts, err := uc.repo.ListAll(ctx)
	if err != nil {
		return dto.TransferListResponse{}, failSpan(span, fmt.Errorf("failed to list contracts: %w", err))
	}

	filter := report.TransferListFilter{ContactNumber: req.ContactNumber}
	selected := make([]model.Contract, 0, len(contracts))
	for _, c := range contracts {
		if filter.Includes(c, req.Year) {
			selected = append(selected, c)
		}
	}

	items := make([]report.TransferListItem, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, c := range selected {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := uc.builder.Build(c, req.Year)
			if err != nil {
				uc.metrics.statementFailed(gctx, req.Year)
				return fmt.Errorf("%s: %w", c, err)
			}
			uc.metrics.statementBuilt(gctx, req.Year)
			items[i] = report.TransferListItem{ContractRef: report.RefOf(c), Statement: st}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dto.TransferListResponse{}, failSpan(span, fmt.Errorf("failed to build transfer list %d: %w", req.Year, err))
	}

	r := report.AssembleTransferList(req.Year, items)
	resp := toTransferListResponse(r)
	uc.cache.Set(key, resp)

	evt, err := event.NewTransferListGenerated(r, filter)
	if err == nil {
		err = uc.publisher.Publish(ctx, uc.topic, evt)
	}
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to publish transfer list event", "year", req.Year, "error", err)
	}

	return resp, nil
}
