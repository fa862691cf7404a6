package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront-gateway/api/routes"
	"github.com/angelmondragon/storefront-gateway/internal/analytics"
	"github.com/angelmondragon/storefront-gateway/internal/cart"
	"github.com/angelmondragon/storefront-gateway/internal/catalog"
	"github.com/angelmondragon/storefront-gateway/internal/checkout"
	"github.com/angelmondragon/storefront-gateway/internal/orders"
	"github.com/angelmondragon/storefront-gateway/internal/sellerproducts"
	"github.com/angelmondragon/storefront-gateway/internal/users"
	"github.com/angelmondragon/storefront-gateway/internal/vouchers"
	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/config"
	"github.com/angelmondragon/storefront-gateway/pkg/env"
	"github.com/angelmondragon/storefront-gateway/pkg/events"
	"github.com/angelmondragon/storefront-gateway/pkg/instance"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/metrics"
	"github.com/angelmondragon/storefront-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	api, err := backend.NewClient(cfg.Backend,
		backend.WithMetrics(metrics.NewUpstreamMetrics(registry)),
		backend.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events, logg)
	defer func() {
		if err := bus.Close(); err != nil {
			logg.Error(context.Background(), "error closing event bus", err)
		}
	}()

	catalogService, err := catalog.NewService(api, bus, logg)
	if err != nil {
		return err
	}
	vouchersService, err := vouchers.NewService(api, logg)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(api, logg)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(api, cartService, bus, logg)
	if err != nil {
		return err
	}
	ordersService, err := orders.NewService(api, logg)
	if err != nil {
		return err
	}
	sellerProductsService, err := sellerproducts.NewService(api, logg)
	if err != nil {
		return err
	}
	analyticsService, err := analytics.NewService(api, logg)
	if err != nil {
		return err
	}
	usersService, err := users.NewService(api, sessionManager, logg, cartService, checkoutService, catalogService)
	if err != nil {
		return err
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	lctx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"instance":     instance.GetID(),
		"backend_base": cfg.Backend.BaseURL,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			sessionManager,
			registry,
			httpMetrics,
			usersService,
			catalogService,
			vouchersService,
			cartService,
			checkoutService,
			ordersService,
			sellerProductsService,
			analyticsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(lctx, "starting gateway")
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

	logg.Info(lctx, "shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serveErr
}
