package usecase_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/application/usecase"
	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/pkg/events"
)

// --- Mock implementations ---

type mockContractRepository struct {
	findByIDFunc  func(ctx context.Context, id uuid.UUID) (model.Contract, error)
	listAllFunc   func(ctx context.Context) ([]model.Contract, error)
	listTotalFunc func(ctx context.Context, asOf civil.Date) ([]model.Contract, decimal.Decimal, error)
	findCalls     int
}

func (m *mockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Contract, error) {
	m.findCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Contract{}, fmt.Errorf("contract %s: %w", id, port.ErrContractNotFound)
}

func (m *mockContractRepository) ListAll(ctx context.Context) ([]model.Contract, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockContractRepository) ListWithLedgerTotal(ctx context.Context, asOf civil.Date) ([]model.Contract, decimal.Decimal, error) {
	if m.listTotalFunc != nil {
		return m.listTotalFunc(ctx, asOf)
	}
	return nil, decimal.Zero, nil
}

func (m *mockContractRepository) Ping(_ context.Context) error {
	return nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	topics          []string
	publishFunc     func(ctx context.Context, topic string, events ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, topic string, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, topic, evts...)
	}
	m.topics = append(m.topics, topic)
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockReportCache struct {
	items map[string]any
}

func newMockReportCache() *mockReportCache {
	return &mockReportCache{items: make(map[string]any)}
}

func (m *mockReportCache) Get(key string) (any, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *mockReportCache) Set(key string, value any) {
	m.items[key] = value
}

func (m *mockReportCache) InvalidateFrom(year int) int {
	n := 0
	for key := range m.items {
		parts := strings.SplitN(key, "/", 3)
		if y, err := strconv.Atoi(parts[1]); err == nil && y >= year {
			delete(m.items, key)
			n++
		}
	}
	return n
}

// --- Fixtures ---

type fixture struct {
	repo      *mockContractRepository
	publisher *mockEventPublisher
	cache     *mockReportCache
	timeline  *service.RateTimeline
	builder   *service.StatementBuilder
	generator *report.Generator
}

func newFixture(contracts ...model.Contract) *fixture {
	timeline := service.NewRateTimeline(nil)
	builder := service.NewStatementBuilder(timeline, service.NewAccrualWalker(timeline))
	byID := make(map[uuid.UUID]model.Contract, len(contracts))
	for _, c := range contracts {
		byID[c.ID()] = c
	}
	return &fixture{
		repo: &mockContractRepository{
			findByIDFunc: func(_ context.Context, id uuid.UUID) (model.Contract, error) {
				c, ok := byID[id]
				if !ok {
					return model.Contract{}, fmt.Errorf("contract %s: %w", id, port.ErrContractNotFound)
				}
				return c, nil
			},
			listAllFunc: func(_ context.Context) ([]model.Contract, error) {
				return contracts, nil
			},
			listTotalFunc: func(_ context.Context, asOf civil.Date) ([]model.Contract, decimal.Decimal, error) {
				total := decimal.Zero
				for _, c := range contracts {
					total = total.Add(c.BalanceOn(asOf.AddDays(1)))
				}
				return contracts, total, nil
			},
		},
		publisher: &mockEventPublisher{},
		cache:     newMockReportCache(),
		timeline:  timeline,
		builder:   builder,
		generator: report.NewGenerator(timeline, builder),
	}
}

func (f *fixture) buildStatement() *usecase.BuildStatement {
	return usecase.NewBuildStatement(f.repo, f.publisher, f.cache, f.builder, usecase.NoopMetrics(), usecase.TopicStatements)
}

func (f *fixture) transferList(workers int) *usecase.GetTransferList {
	return usecase.NewGetTransferList(f.repo, f.publisher, f.cache, f.builder, usecase.NoopMetrics(), usecase.TopicStatements, workers)
}

