package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/cambiodesk/internal/adapter/http/handler"
	"github.com/iho/cambiodesk/internal/adapter/http/middleware"
	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/infrastructure/auth"
	"github.com/iho/cambiodesk/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	BalanceHandler     *handler.BalanceHandler
	RateHandler        *handler.RateHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	JWTManager         *auth.JWTManager
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Wrap)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Authentication, when a JWT secret is configured
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/{id}", cfg.TransactionHandler.Get)

			// Rewriting history is admin-only when auth is on.
			if cfg.JWTManager != nil {
				r.With(middleware.RequireRole(domain.RoleAdmin)).Put("/{id}", cfg.TransactionHandler.Update)
				r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", cfg.TransactionHandler.Delete)
			} else {
				r.Put("/{id}", cfg.TransactionHandler.Update)
				r.Delete("/{id}", cfg.TransactionHandler.Delete)
			}
		})

		// Balance
		r.Route("/balance", func(r chi.Router) {
			r.Get("/", cfg.BalanceHandler.Get)
			r.Post("/fund", cfg.BalanceHandler.Fund)
		})

		// Reference rates
		r.Get("/rates/dollar", cfg.RateHandler.GetDollar)

		// Ledger-wide views
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/stats", cfg.LedgerHandler.GetStats)
		})
	})

	return r
}
