package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodcart/internal/config"
	"foodcart/internal/database"
	"foodcart/internal/geo"
	"foodcart/internal/geocoder"
	"foodcart/internal/handler"
	"foodcart/internal/media"
	"foodcart/internal/repository"
	"foodcart/internal/router"
	"foodcart/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting foodcart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.MigrateUp(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	restaurantRepo := repository.NewRestaurantRepository(pool, logger)
	menuRepo := repository.NewMenuRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	locationRepo := repository.NewLocationRepository(pool, logger)

	// Geocode cache: postgres always, redis in front when enabled
	var cache geo.Cache = geo.NewPostgresCache(locationRepo)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().
				Err(err).
				Str("addr", cfg.Redis.Addr).
				Msg("redis unreachable, geocode cache uses postgres only")
		} else {
			cache = geo.NewTieredCache(geo.NewRedisCache(rdb, cfg.Redis.TTL), cache, logger)
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis geocode cache enabled")
		}
	}

	geocoderClient := geocoder.NewClient(geocoder.Config{
		BaseURL: cfg.Geocoder.BaseURL,
		APIKey:  cfg.Geocoder.APIKey,
		Timeout: cfg.Geocoder.Timeout,
	}, logger)
	resolver := geo.NewResolver(cache, geocoderClient, logger)

	images := newImageResolver(ctx, cfg, logger)
	assets := media.NewStaticResolver(cfg.Media.StaticURL)

	// Initialize services
	productService := service.NewProductService(productRepo, images, assets, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, cfg.Geocoder.PhoneRegion, logger)
	dashboardService := service.NewDashboardService(
		restaurantRepo,
		productRepo,
		menuRepo,
		orderRepo,
		resolver,
		service.DashboardOptions{
			Workers:     cfg.Dashboard.Workers,
			NumericSort: cfg.Dashboard.NumericSort,
		},
		logger,
	)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	managerHandler := handler.NewManagerHandler(dashboardService, logger)

	// Initialize router
	mux := router.New(productHandler, orderHandler, managerHandler, cfg.Auth.JWTSecret, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newImageResolver serves product images from S3 when enabled, falling back
// to the media base URL.
func newImageResolver(ctx context.Context, cfg *config.Config, logger zerolog.Logger) media.URLResolver {
	local := media.NewStaticResolver(cfg.Media.BaseURL)
	if !cfg.S3.Enabled {
		logger.Info().Msg("serving product images from media base URL (S3 disabled)")
		return local
	}

	s3Resolver, err := media.NewS3Resolver(ctx, media.S3Options{
		Bucket: cfg.S3.Bucket,
		Region: cfg.S3.Region,
		Prefix: cfg.S3.Prefix,
		TTL:    cfg.S3.PresignTTL,
	}, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 resolver, falling back to media base URL only")
		return local
	}

	return media.NewFallbackResolver(s3Resolver, local, logger)
}
