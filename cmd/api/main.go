package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/rentwise/internal/adapter/api"
	"github.com/V4T54L/rentwise/internal/adapter/api/middleware"
	"github.com/V4T54L/rentwise/internal/adapter/auth"
	"github.com/V4T54L/rentwise/internal/adapter/geocoding"
	"github.com/V4T54L/rentwise/internal/adapter/metrics"
	"github.com/V4T54L/rentwise/internal/adapter/pii"
	"github.com/V4T54L/rentwise/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/rentwise/internal/adapter/repository/redis"
	"github.com/V4T54L/rentwise/internal/adapter/storage"
	"github.com/V4T54L/rentwise/internal/domain"
	"github.com/V4T54L/rentwise/internal/pkg/config"
	"github.com/V4T54L/rentwise/internal/pkg/logger"
	"github.com/V4T54L/rentwise/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel, pii.NewRedactor(cfg.RedactionFields()))
	slog.SetDefault(logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	store := postgres.NewStore(db, logger)

	// --- Geocoding, with an optional Redis cache ---
	var geocodeCache domain.GeocodeCache
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, geocode lookups will not be cached", "error", err)
		} else {
			geocodeCache = redisrepo.NewGeocodeCache(redisClient, cfg.GeocodeCacheTTL, logger)
		}
	}
	geocoder := geocoding.New(geocoding.Config{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		RPS:       cfg.GeocoderRPS,
	}, geocodeCache, m, logger)

	// --- Photo storage ---
	var photos domain.PhotoStorage
	if cfg.S3BucketName != "" {
		s3Client, err := storage.NewS3Client(ctx, cfg.AWSRegion, cfg.AWSEndpointURL)
		if err != nil {
			logger.Error("failed to configure s3 client", "error", err)
			os.Exit(1)
		}
		photos = storage.NewPhotoStore(s3Client, cfg.S3BucketName, logger)
	} else {
		logger.Warn("S3_BUCKET_NAME not set, property photo uploads are disabled")
	}

	// --- Token verification ---
	opts := auth.Options{Issuer: cfg.AuthIssuer, Audience: cfg.AuthAudience}
	var verifier auth.TokenVerifier
	if cfg.AuthJWKSURL != "" {
		verifier = auth.NewJWKSVerifier(auth.NewKeySet(cfg.AuthJWKSURL, cfg.AuthJWKSRefresh, logger), opts)
	} else {
		logger.Warn("verifying tokens with a shared HMAC secret")
		verifier = auth.NewHMACVerifier(cfg.AuthHMACSecret, opts)
	}

	// --- Initialize Use Cases ---
	properties := usecase.NewPropertyUseCase(store, photos, geocoder, m, logger)
	uc := api.UseCases{
		Applications: usecase.NewApplicationUseCase(store, m, logger),
		Properties:   properties,
		Leases:       usecase.NewLeaseUseCase(store, logger),
		Tenants:      usecase.NewTenantUseCase(store, logger),
		Managers:     usecase.NewManagerUseCase(store, logger),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	go limiter.Run(ctx, time.Minute)

	// --- Start Admin and Metrics Server ---
	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: api.NewAdminRouter(prometheus.DefaultGatherer, db, logger),
	}
	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Start API Server ---
	apiServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(cfg, logger, m, verifier, limiter, uc),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		logger.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
