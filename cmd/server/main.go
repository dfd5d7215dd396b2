package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cambiodesk/internal/adapter/http"
	"github.com/iho/cambiodesk/internal/adapter/http/handler"
	"github.com/iho/cambiodesk/internal/adapter/http/middleware"
	"github.com/iho/cambiodesk/internal/adapter/rates"
	postgresRepo "github.com/iho/cambiodesk/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cambiodesk/internal/adapter/repository/redis"
	"github.com/iho/cambiodesk/internal/infrastructure/auth"
	"github.com/iho/cambiodesk/internal/infrastructure/config"
	"github.com/iho/cambiodesk/internal/infrastructure/logger"
	"github.com/iho/cambiodesk/internal/infrastructure/metrics"
	"github.com/iho/cambiodesk/internal/infrastructure/postgres"
	"github.com/iho/cambiodesk/internal/infrastructure/redis"
	"github.com/iho/cambiodesk/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	// The register balance row must exist before the first request.
	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories and adapters
	txManager := postgresRepo.NewTxManager(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	rateCache := redisRepo.NewRateCache(redisClient)
	rateSource := rates.NewBluelyticsClient(cfg.RatesURL)

	appMetrics := metrics.New()

	// Use cases
	rateUC := usecase.NewRateUseCase(rateSource, rateCache, appLogger).WithTTL(cfg.RateCacheTTL)
	ledgerUC := usecase.NewLedgerUseCase(txManager, balanceRepo, txnRepo, rateUC, idGen).
		WithRetrier(retrier).
		WithMetrics(appMetrics)
	balanceUC := usecase.NewBalanceUseCase(txManager, balanceRepo)
	statsUC := usecase.NewStatsUseCase(balanceRepo, txnRepo)

	// Optional JWT authentication
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("authentication enabled")
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(ledgerUC),
		BalanceHandler:     handler.NewBalanceHandler(balanceUC),
		RateHandler:        handler.NewRateHandler(rateUC),
		LedgerHandler:      handler.NewLedgerHandler(statsUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		JWTManager:         jwtManager,
		RateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:             appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
