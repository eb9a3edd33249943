package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/ethanhollis/cartwright-backend/api/controllers"
	"github.com/ethanhollis/cartwright-backend/api/routes"
	"github.com/ethanhollis/cartwright-backend/internal/auth"
	"github.com/ethanhollis/cartwright-backend/internal/cart"
	"github.com/ethanhollis/cartwright-backend/internal/orders"
	"github.com/ethanhollis/cartwright-backend/internal/products"
	"github.com/ethanhollis/cartwright-backend/internal/users"
	"github.com/ethanhollis/cartwright-backend/pkg/auth/session"
	"github.com/ethanhollis/cartwright-backend/pkg/config"
	"github.com/ethanhollis/cartwright-backend/pkg/db"
	"github.com/ethanhollis/cartwright-backend/pkg/logger"
	"github.com/ethanhollis/cartwright-backend/pkg/metrics"
	"github.com/ethanhollis/cartwright-backend/pkg/migrate"
	"github.com/ethanhollis/cartwright-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		closeAll(logg, dbClient.Close)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		closeAll(logg, dbClient.Close)
		os.Exit(1)
	}

	deps, err := buildDependencies(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		closeAll(logg, redisClient.Close, dbClient.Close)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error draining api server", err)
			exitCode = 1
		}
		cancel()
	}

	closeAll(logg, redisClient.Close, dbClient.Close)
	logg.Info(ctx, "api server stopped")
	os.Exit(exitCode)
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Dependencies, error) {
	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return routes.Dependencies{}, err
	}

	pricing := cart.PricingConfig{
		FreeShippingThreshold: cfg.Cart.FreeShippingThreshold,
		FlatShippingRate:      cfg.Cart.FlatShippingRate,
		TaxRate:               cfg.Cart.TaxRate,
	}

	productsRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productsRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}

	catalog, err := products.NewCatalogAdapter(productsRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}

	userCartStore, err := cart.NewGormStore(dbClient.DB(), dbClient)
	if err != nil {
		return routes.Dependencies{}, err
	}
	guestCartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.GuestCartTTL)
	if err != nil {
		return routes.Dependencies{}, err
	}
	cartService, err := cart.NewService(userCartStore, guestCartStore, catalog, pricing, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		CartMerger:     cartService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, pricing)
	if err != nil {
		return routes.Dependencies{}, err
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	return routes.Dependencies{
		Config:          cfg,
		Logger:          logg,
		Redis:           redisClient,
		SessionManager:  sessionManager,
		HTTPMetrics:     httpMetrics,
		MetricsGatherer: registry,
		AuthService:     authService,
		CartService:     cartService,
		ProductService:  productService,
		OrderService:    orderService,
		ReadinessProbes: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
	}, nil
}

func closeAll(logg *logger.Logger, closers ...func() error) {
	var err error
	for _, closeFn := range closers {
		err = multierr.Append(err, closeFn())
	}
	if err != nil {
		logg.Error(context.Background(), "error closing resources", err)
	}
}
