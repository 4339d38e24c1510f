package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dkverwaltung/dkledger/internal/application/usecase"

var tracer = otel.Tracer(instrumentationName)

// Metrics records statement and report instrumentation.
type Metrics struct {
	statementsBuilt metric.Int64Counter
	statementErrors metric.Int64Counter
	reportDuration  metric.Float64Histogram
}

// NewMetrics registers the use case instruments with mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(instrumentationName)

	built, err := meter.Int64Counter("dkledger.statements.built",
		metric.WithDescription("Annual statements built"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("dkledger.statement.errors",
		metric.WithDescription("Annual statements that could not be built"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("dkledger.report.duration",
		metric.WithDescription("Time spent computing a report"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Metrics{statementsBuilt: built, statementErrors: failed, reportDuration: duration}, nil
}

// NoopMetrics returns Metrics that record nothing.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

func (m *Metrics) statementBuilt(ctx context.Context, year int) {
	m.statementsBuilt.Add(ctx, 1, metric.WithAttributes(attribute.Int("year", year)))
}

func (m *Metrics) statementFailed(ctx context.Context, year int) {
	m.statementErrors.Add(ctx, 1, metric.WithAttributes(attribute.Int("year", year)))
}

func (m *Metrics) observeReport(ctx context.Context, name string, start time.Time) {
	m.reportDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("report", name)))
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
