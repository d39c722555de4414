package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/NathiDhliso/lexo-core/internal/adapter/http"
	"github.com/NathiDhliso/lexo-core/internal/adapter/http/handler"
	postgresRepo "github.com/NathiDhliso/lexo-core/internal/adapter/repository/postgres"
	redisRepo "github.com/NathiDhliso/lexo-core/internal/adapter/repository/redis"
	"github.com/NathiDhliso/lexo-core/internal/infrastructure/config"
	"github.com/NathiDhliso/lexo-core/internal/infrastructure/eventpublisher"
	"github.com/NathiDhliso/lexo-core/internal/infrastructure/logger"
	"github.com/NathiDhliso/lexo-core/internal/infrastructure/metrics"
	"github.com/NathiDhliso/lexo-core/internal/infrastructure/postgres"
	"github.com/NathiDhliso/lexo-core/internal/infrastructure/redis"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "lexo-core"})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Apply migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewTrustAccountRepository(pool)
	txnRepo := postgresRepo.NewTrustTransactionRepository(pool)
	retainerRepo := postgresRepo.NewRetainerRepository(pool)
	matterRepo := postgresRepo.NewMatterRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	creditNoteRepo := postgresRepo.NewCreditNoteRepository(pool)
	disputeRepo := postgresRepo.NewDisputeRepository(pool)
	amendmentRepo := postgresRepo.NewAmendmentRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txnRepo, retainerRepo, outboxRepo, auditRepo, idGen, retrier)
	accountUC := usecase.NewTrustAccountUseCase(accountRepo, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, accountRepo, txnRepo, outboxRepo, auditRepo, idGen)
	retainerUC := usecase.NewRetainerUseCase(ledgerUC, retainerRepo, accountRepo, txnRepo, auditRepo, idGen, cache)
	creditNoteUC := usecase.NewCreditNoteUseCase(txManager, creditNoteRepo, invoiceRepo, disputeRepo, outboxRepo, auditRepo, idGen)
	disputeUC := usecase.NewDisputeUseCase(txManager, disputeRepo, invoiceRepo, outboxRepo, auditRepo, idGen)
	billingUC := usecase.NewBillingUseCase(txManager, matterRepo, invoiceRepo, retainerRepo, amendmentRepo, outboxRepo, auditRepo, idGen)
	amendmentUC := usecase.NewAmendmentUseCase(txManager, amendmentRepo, matterRepo, auditRepo, idGen)

	m := metrics.New()

	// Outbox publisher
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})

	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	// Export pool stats
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-publisherCtx.Done():
				return
			case <-ticker.C:
				stat := pool.Stat()
				m.DBConnectionsTotal.Set(float64(stat.TotalConns()))
				m.DBConnectionsIdle.Set(float64(stat.IdleConns()))
			}
		}
	}()

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TrustAccountHandler:   handler.NewTrustAccountHandler(accountUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		RetainerHandler:       handler.NewRetainerHandler(retainerUC),
		CreditNoteHandler:     handler.NewCreditNoteHandler(creditNoteUC),
		DisputeHandler:        handler.NewDisputeHandler(disputeUC),
		BillingHandler:        handler.NewBillingHandler(billingUC),
		AmendmentHandler:      handler.NewAmendmentHandler(amendmentUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		Logger:                log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
