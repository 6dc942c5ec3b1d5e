package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/smdiabate/wallet-ledger/internal/api/handler"
	"github.com/smdiabate/wallet-ledger/internal/api/middleware"
	"github.com/smdiabate/wallet-ledger/internal/api/spec"
	"github.com/smdiabate/wallet-ledger/internal/config"
	"github.com/smdiabate/wallet-ledger/internal/idempotency"
	"github.com/smdiabate/wallet-ledger/internal/repository"
	"github.com/smdiabate/wallet-ledger/internal/service"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	store     *repository.Store
	idemStore *idempotency.Store
	redis     redis.Cmdable
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, store *repository.Store, idemStore *idempotency.Store, redisClient redis.Cmdable) *Router {
	return &Router{cfg: cfg, logger: logger, db: db, store: store, idemStore: idemStore, redis: redisClient}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	idem := middleware.IdempotencyMiddleware(api.idemStore, api.logger)

	// Services
	walletSvc := service.NewWalletService(api.store, api.cfg.DefaultCurrency)
	transferSvc := service.NewTransferService(api.store)
	fundingSvc := service.NewFundingService(api.store, walletSvc)
	requestSvc := service.NewPaymentRequestService(api.store, transferSvc)
	historySvc := service.NewHistoryService(api.store, walletSvc)
	directorySvc := service.NewDirectoryService(api.store)

	// Handlers
	authHandler := handler.NewAuthHandler(api.store)
	userHandler := handler.NewUserHandler(api.store)
	walletHandler := handler.NewWalletHandler(walletSvc, fundingSvc)
	transferHandler := handler.NewTransferHandler(transferSvc, directorySvc)
	requestHandler := handler.NewPaymentRequestHandler(requestSvc)
	historyHandler := handler.NewHistoryHandler(historySvc)
	healthHandler := handler.NewHealthHandler(api.db, api.redis)

	// Operational endpoints
	r.Get("/healthz/live", healthHandler.Live)
	r.Get("/healthz/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Post("/v1/users", userHandler.CreateUser)
		r.Post("/v1/auth/login", authHandler.Login)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Get("/v1/wallet/balance", walletHandler.GetBalance)
		r.With(idem).Post("/v1/wallet/deposits", walletHandler.Deposit)
		r.With(idem).Post("/v1/wallet/withdrawals", walletHandler.Withdraw)

		r.With(idem).Post("/v1/transfers", transferHandler.Send)
		r.With(idem).Post("/v1/transfers/by-phone", transferHandler.SendByPhone)

		r.With(idem).Post("/v1/payment-requests", requestHandler.Create)
		r.With(idem).Post("/v1/payment-requests/{id}/accept", requestHandler.Accept)
		r.With(idem).Post("/v1/payment-requests/{id}/cancel", requestHandler.Cancel)

		r.Get("/v1/transactions", historyHandler.List)
		r.Get("/v1/transactions/stats", historyHandler.Stats)
	})

	return r
}
