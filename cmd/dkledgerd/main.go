package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkverwaltung/dkledger/internal/application/usecase"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/internal/infrastructure/cache"
	"github.com/dkverwaltung/dkledger/internal/infrastructure/capfile"
	"github.com/dkverwaltung/dkledger/internal/infrastructure/config"
	"github.com/dkverwaltung/dkledger/internal/infrastructure/messaging"
	"github.com/dkverwaltung/dkledger/internal/infrastructure/persistence/migration"
	infraPG "github.com/dkverwaltung/dkledger/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/dkverwaltung/dkledger/internal/presentation/grpc"
	"github.com/dkverwaltung/dkledger/internal/presentation/rest"
	kafkapkg "github.com/dkverwaltung/dkledger/pkg/kafka"
	"github.com/dkverwaltung/dkledger/pkg/observability"
	pgpkg "github.com/dkverwaltung/dkledger/pkg/postgres"
	"github.com/dkverwaltung/dkledger/pkg/tlsutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("dkledgerd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	logger.Info("starting dkledgerd",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"kafka", cfg.Kafka.Enabled(),
	)

	_, shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName:  cfg.Telemetry.ServiceName,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer shutdownWithin(shutdownTracer)
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer shutdownWithin(meterProvider.Shutdown)

	caps, err := capfile.Load(cfg.Reports.InflationCapsFile)
	if err != nil {
		return err
	}
	logger.Info("inflation caps loaded", "years", caps.Years(), "file", cfg.Reports.InflationCapsFile)

	pgCfg := pgpkg.Config{
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		Database:        cfg.DB.Name,
		SSLMode:         cfg.DB.SSLMode,
		ApplicationName: cfg.Telemetry.ServiceName,
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
	}
	if cfg.DB.Migrate {
		if err := pgpkg.RunMigrations(pgCfg.DSN(), migration.FS); err != nil {
			return err
		}
	}
	pool, err := pgpkg.NewPool(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	kafkaCfg := kafkapkg.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		ClientID:      cfg.Telemetry.ServiceName,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLEnabled,
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	}
	var publisher port.EventPublisher = messaging.NewDiscardPublisher(logger)
	if cfg.Kafka.Enabled() {
		producer, err := kafkapkg.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = messaging.NewPublisher(producer, logger)
	}

	// Domain services
	timeline := service.NewRateTimeline(caps)
	walker := service.NewAccrualWalker(timeline)
	builder := service.NewStatementBuilder(timeline, walker)
	generator := report.NewGenerator(timeline, builder)

	metrics, err := usecase.NewMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("init use case metrics: %w", err)
	}
	reportCache := cache.NewReportCache(cfg.Reports.CacheTTL)
	repo := infraPG.NewSnapshotRepo(pool)

	// Use cases
	buildStatement := usecase.NewBuildStatement(repo, publisher, reportCache, builder, metrics, cfg.Kafka.StatementTopic)
	queries := usecase.Queries{
		Statement:         buildStatement,
		CarriedInterest:   usecase.NewGetCarriedInterest(repo, walker),
		TransferList:      usecase.NewGetTransferList(repo, publisher, reportCache, builder, metrics, cfg.Kafka.StatementTopic, cfg.Reports.Workers),
		AverageRate:       usecase.NewGetAverageRate(repo, generator, metrics),
		RemainingDuration: usecase.NewGetRemainingDuration(repo, generator, metrics),
		ExpiringContracts: usecase.NewGetExpiringContracts(repo, generator),
	}
	refresh := usecase.NewRefreshOnEntryBooked(reportCache, buildStatement)

	errCh := make(chan error, 3)

	if cfg.Kafka.Enabled() {
		consumer, err := kafkapkg.NewConsumer(kafkaCfg, cfg.Kafka.EntryTopic,
			messaging.EntryBookedHandler(refresh, logger), logger)
		if err != nil {
			return fmt.Errorf("init kafka consumer: %w", err)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("entry consumer: %w", err)
			}
		}()
	}

	grpcCreds, err := tlsutil.ServerCredentials(cfg.GRPCTLSCert, cfg.GRPCTLSKey)
	if err != nil {
		return err
	}
	grpcServer := grpcPresentation.NewServer(
		grpcPresentation.NewHandler(queries, logger),
		logger,
		grpcPresentation.ServerConfig{Port: cfg.GRPCPort, Reflection: cfg.GRPCReflection, Creds: grpcCreds},
	)
	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: rest.NewRouter(
			rest.NewHealthHandler(repo, logger),
			rest.NewReportHandler(queries, logger),
			metricsHandler,
			rest.RateLimit(cfg.HTTPRateLimit, cfg.HTTPRateBurst, logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		errCh <- grpcServer.Start()
	}()
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	grpcServer.Stop()
	logger.Info("dkledgerd stopped")
	return runErr
}

func shutdownWithin(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		slog.Warn("shutdown", "error", err)
	}
}
