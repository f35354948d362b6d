package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar/addresses"
	"bazaar/auth"
	"bazaar/cart"
	"bazaar/checkout"
	"bazaar/customers"
	"bazaar/db"
	"bazaar/gateway"
	"bazaar/globals"
	"bazaar/logging"
	"bazaar/metrics"
	"bazaar/middleware"
	"bazaar/mq"
	"bazaar/orders"
	"bazaar/products"
	"bazaar/ratelim"
	"bazaar/rdx"
	"bazaar/routes"
	"bazaar/sellers"
	"bazaar/wishlist"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := globals.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Development())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.Fatal("ensure indexes failed", zap.Error(err))
	}
	store := db.NewStore(client, database)

	redisClient := rdx.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; callback locks will fail open", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	locker := rdx.NewLocker(redisClient, "bazaar:lock:")

	events := mq.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer)
	tokens := middleware.NewAuthenticator(cfg.JwtSecret)

	authSvc := auth.NewService(store, tokens, logger)
	customerSvc := customers.NewService(store, logger)
	customerSvc.Hash = authSvc.HashPassword

	deps := &routes.Deps{
		Auth:      authSvc,
		Customers: customerSvc,
		Sellers:   sellers.NewService(store, logger),
		Products:  products.NewService(store, logger),
		Carts:     cart.NewCartService(store, logger),
		Wishlists: wishlist.NewService(store, logger),
		Addresses: addresses.NewService(store, logger),
		Orders:    orders.NewService(store, events, logger),
		Checkout: checkout.NewService(store,
			gateway.NewSSLCommerz(cfg.StoreID, cfg.StorePassword, cfg.GatewayLive),
			locker, events, m, logger,
			checkout.Config{FrontendURL: cfg.FrontendURL, BackendURL: cfg.BackendURL, Currency: cfg.Currency},
		),
		Tokens:      tokens,
		Limiter:     ratelim.NewRateLimiter(60, 10),
		Metrics:     m,
		Idempotency: store.Idempotency,
		Log:         logger,
	}

	router := httprouter.New()
	routes.RoutesWrapper(router, deps)

	// The request log wraps everything so it records the final status.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler(router)
	handler := middleware.RequestLogger(logger)(middleware.SecurityHeaders(corsHandler))

	port := cfg.Port
	if port[0] != ':' {
		port = ":" + port
	}
	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		if err := events.Close(); err != nil {
			logger.Warn("event publisher close failed", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	})

	go func() {
		logger.Info("server listening", zap.String("addr", port), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect failed", zap.Error(err))
	}
	logger.Info("server stopped cleanly")
}
