package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	eventapp "github.com/finledger/backend/internal/application/event"
	financeapp "github.com/finledger/backend/internal/application/finance"
	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/finledger/backend/internal/infrastructure/cache"
	"github.com/finledger/backend/internal/infrastructure/config"
	"github.com/finledger/backend/internal/infrastructure/event"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/persistence"
	"github.com/finledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const statsInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting ledger worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Int64("node_id", cfg.App.NodeID),
	)

	if err := shared.SetIDNode(cfg.App.NodeID); err != nil {
		log.Fatal("Invalid snowflake node", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if lp.IsEnabled() {
		log = logger.Tee(log, lp.ZapCore(cfg.Telemetry.ServiceName, log.Level()))
	}
	metrics, err := telemetry.NewLedgerMetrics(mp.Meter("finledger"), log)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() == persistence.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	tracing := telemetry.DefaultDBTracingConfig()
	tracing.Enabled = cfg.Database.TraceEnabled
	if db.Driver() == persistence.DriverSQLite {
		tracing.DBSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(tracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// Stores behind the tenant guard
	guardOpts := []tenant.GuardOption{tenant.WithLogger(log), tenant.WithViolationRecorder(metrics)}
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	journalRepo := persistence.NewGormJournalEntryRepository(db.DB)
	transactions := tenant.NewGuard[*finance.Transaction](transactionRepo, finance.AggregateTypeTransaction, guardOpts...)
	journals := tenant.NewGuard[*finance.JournalEntry](journalRepo, finance.AggregateTypeJournalEntry, guardOpts...)

	// Events: services write to the outbox, the processor delivers to the bus
	serializer := event.NewEventSerializer()
	event.RegisterLedgerEvents(serializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	publisher := event.NewOutboxPublisher(db.DB, serializer, cfg.Event.MaxRetries)
	bus := event.NewInMemoryEventBus(log)

	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	idemCfg := shared.DefaultIdempotencyConfig()
	if cfg.Event.IdempotencyTTL > 0 {
		idemCfg.TTL = cfg.Event.IdempotencyTTL
	}

	currency, err := valueobject.ParseCurrency(cfg.Ledger.DefaultCurrency)
	if err != nil {
		log.Fatal("Invalid default currency", zap.Error(err))
	}
	obs := usecase.NewObserver(metrics)
	journalService := financeapp.NewJournalService(
		journalRepo, journals, transactions, publisher, obs,
		financeapp.PostingAccounts{
			Cash:    cfg.Ledger.CashAccount,
			Revenue: cfg.Ledger.RevenueAccount,
			Expense: cfg.Ledger.ExpenseAccount,
		},
		currency,
	)

	bus.Subscribe(event.NewIdempotentHandler("ledger_metrics",
		financeapp.NewLedgerMetricsHandler(metrics), idempotency, log,
		event.WithIdempotencyConfig(idemCfg)))
	if cfg.Ledger.AutoPostApproved {
		bus.Subscribe(event.NewIdempotentHandler("transaction_posting",
			financeapp.NewTransactionPostingHandler(journalService), idempotency, log,
			event.WithIdempotencyConfig(idemCfg)))
	}
	log.Info("Event handlers registered", zap.Bool("auto_post_approved", cfg.Ledger.AutoPostApproved))

	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	processorCfg := event.DefaultOutboxProcessorConfig()
	if cfg.Event.BatchSize > 0 {
		processorCfg.BatchSize = cfg.Event.BatchSize
	}
	if cfg.Event.PollInterval > 0 {
		processorCfg.PollInterval = cfg.Event.PollInterval
	}
	processorCfg.CleanupEnabled = cfg.Event.CleanupEnabled
	if cfg.Event.CleanupRetention > 0 {
		processorCfg.CleanupRetention = cfg.Event.CleanupRetention
	}
	processor := event.NewOutboxProcessor(outboxRepo, bus, serializer, processorCfg, log)
	if cfg.Event.ProcessorEnabled {
		if err := processor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	} else {
		log.Warn("Outbox processor disabled, events stay in the outbox")
	}

	go reportOutbox(ctx, eventapp.NewOutboxService(outboxRepo, log), log)

	<-ctx.Done()
	log.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Event.ProcessorEnabled {
		if err := processor.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Worker exited gracefully")
}

// reportOutbox logs the outbox backlog and warns while dead letters exist
func reportOutbox(ctx context.Context, outbox *eventapp.OutboxService, log *zap.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := outbox.GetStats(ctx)
			if err != nil {
				continue
			}
			fields := []zap.Field{
				zap.Int64("pending", stats.Pending),
				zap.Int64("failed", stats.Failed),
				zap.Int64("dead", stats.Dead),
			}
			if stats.Dead > 0 {
				log.Warn("Outbox has dead letter entries", fields...)
				continue
			}
			log.Debug("Outbox backlog", fields...)
		}
	}
}
