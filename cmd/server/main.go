package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/bankledger/internal/adapter/http"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/infrastructure/auth"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
	logging "github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

const (
	poolStatsInterval       = 15 * time.Second
	limiterCleanupInterval  = 10 * time.Minute
	limiterIdleAfter        = time.Hour
	outboxStreamMaxLen      = 100000
	defaultShutdownDeadline = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// storage is the set of ports the engine runs on.
type storage struct {
	txManager       usecase.TransactionManager
	accountRepo     usecase.AccountRepository
	transactionRepo usecase.TransactionRepository
	ledgerRepo      usecase.LedgerRepository
	outboxRepo      usecase.OutboxRepository
	idGen           usecase.IDGenerator
	pool            *pgxpool.Pool
}

// application holds everything run needs to serve and shut down.
type application struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	metrics     *metrics.Metrics
	pool        *pgxpool.Pool
	redisClient *goredis.Client
}

func (a *application) close() {
	if a.redisClient != nil {
		a.redisClient.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := newApplication(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer app.close()

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	if app.publisher != nil {
		go func() {
			if err := app.publisher.Start(workers); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	if app.rateLimiter != nil {
		go every(workers, limiterCleanupInterval, func() { app.rateLimiter.CleanupLimiters(limiterIdleAfter) })
	}

	if app.pool != nil {
		go every(workers, poolStatsInterval, func() {
			app.metrics.DBConnections.Set(float64(app.pool.Stat().TotalConns()))
		})
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	timeout := cfg.HTTPShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownDeadline
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newApplication connects to the configured backends and wires the engine and HTTP stack.
func newApplication(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*application, error) {
	m := metrics.New(reg)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &application{metrics: m, pool: store.pool}

	var redisPinger handler.Pinger
	if cfg.RedisURL != "" {
		client, err := redis.NewClientWithRetry(ctx, cfg.RedisURL, cfg.DatabaseConnectRetry, logger)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redisClient = client
		redisPinger = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		logger.Info().Msg("connected to redis")
	}

	// Initialize use cases
	opts := []usecase.Option{usecase.WithMetrics(m)}
	accountUC := usecase.NewAccountUseCase(store.txManager, store.accountRepo, store.outboxRepo, store.idGen, opts...)
	transactionUC := usecase.NewTransactionUseCase(store.txManager, store.accountRepo, store.transactionRepo, store.outboxRepo, store.idGen, opts...)
	transferUC := usecase.NewTransferUseCase(store.txManager, store.accountRepo, store.transactionRepo, store.outboxRepo, store.idGen, opts...)
	ledgerUC := usecase.NewLedgerUseCase(store.ledgerRepo)
	reconciliationUC := usecase.NewReconciliationUseCase(store.ledgerRepo)

	var databasePinger handler.Pinger
	if store.pool != nil {
		databasePinger = store.pool
	}

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, accountUC),
		TransferHandler:    handler.NewTransferHandler(transferUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC, reconciliationUC),
		HealthHandler:      handler.NewHealthHandler(databasePinger, redisPinger),
		Logger:             logger,
		Metrics:            middleware.NewMetricsMiddleware(m.HTTPRequests, m.HTTPDuration),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	if cfg.RateLimitRPS > 0 {
		app.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)
		routerCfg.RateLimiter = app.rateLimiter
	}

	if cfg.AuthEnabled {
		routerCfg.Auth = middleware.NewAuthMiddleware(auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration), m.AuthFailures)
	}

	if app.redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(app.redisClient)
		routerCfg.IdempotencyTTL = cfg.IdempotencyTTL
		routerCfg.IdempotencyReplays = m.IdempotencyReplays
	} else {
		logger.Warn().Msg("REDIS_URL not set, idempotency keys are ignored")
	}

	app.handler = httpAdapter.NewRouter(routerCfg)

	if cfg.OutboxEnabled {
		publisher, err := newOutboxPublisher(cfg, app.redisClient, logger)
		if err != nil {
			app.close()
			return nil, err
		}

		app.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outboxRepo,
			Publisher:  publisher,
			Logger:     logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
			Published:  m.OutboxPublished,
			Failed:     m.OutboxFailures,
		})
	}

	return app, nil
}

// openStorage builds the engine's ports for the configured driver.
func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	if !cfg.UsesPostgres() {
		logger.Warn().Msg("using in-memory storage, data is lost on restart")

		store := memory.NewStore()
		s := &storage{
			txManager:       store,
			accountRepo:     memory.NewAccountRepository(store),
			transactionRepo: memory.NewTransactionRepository(store),
			ledgerRepo:      memory.NewLedgerRepository(store),
			outboxRepo:      memory.NewOutboxRepository(store),
			idGen:           postgresRepo.NewULIDGenerator(),
		}
		if !cfg.OutboxEnabled {
			s.outboxRepo = postgresRepo.NewNullOutboxRepository()
		}
		return s, nil
	}

	if cfg.RunMigrations {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, logger).Up(); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:  cfg.DatabaseURL,
		MaxConns:     cfg.DatabaseMaxConns,
		MinConns:     cfg.DatabaseMinConns,
		ConnectRetry: cfg.DatabaseConnectRetry,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	s := &storage{
		txManager:       postgresRepo.NewTxManager(pool),
		accountRepo:     postgresRepo.NewAccountRepository(pool),
		transactionRepo: postgresRepo.NewTransactionRepository(pool),
		ledgerRepo:      postgresRepo.NewLedgerRepository(pool),
		outboxRepo:      postgresRepo.NewOutboxRepository(pool, logger),
		idGen:           postgresRepo.NewULIDGenerator(),
		pool:            pool,
	}
	if !cfg.OutboxEnabled {
		s.outboxRepo = postgresRepo.NewNullOutboxRepository()
	}
	return s, nil
}

// newOutboxPublisher selects where relayed events go.
func newOutboxPublisher(cfg *config.Config, client *goredis.Client, logger zerolog.Logger) (eventpublisher.Publisher, error) {
	switch cfg.OutboxPublisher {
	case config.PublisherRedis:
		if client == nil {
			return nil, errors.New("redis outbox publisher requires REDIS_URL")
		}
		return eventpublisher.NewRedisStreamPublisher(client, cfg.OutboxStream, outboxStreamMaxLen), nil
	default:
		return eventpublisher.NewLogPublisher(logger), nil
	}
}

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
