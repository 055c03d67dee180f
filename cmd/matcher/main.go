package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/config"
	"github.com/stylegenie/matcher/internal/db"
	dbMemory "github.com/stylegenie/matcher/internal/db/memory"
	dbRedis "github.com/stylegenie/matcher/internal/db/redis"
	"github.com/stylegenie/matcher/internal/domain"
	logpkg "github.com/stylegenie/matcher/internal/logger"
	"github.com/stylegenie/matcher/internal/metrics"
	catalogrepo "github.com/stylegenie/matcher/internal/repository/catalog"
	"github.com/stylegenie/matcher/internal/repository/embcache"
	chiTransport "github.com/stylegenie/matcher/internal/transport/chi"
	openaiTransport "github.com/stylegenie/matcher/internal/transport/openai"
	"github.com/stylegenie/matcher/internal/transport/placeholder"
	atelieruc "github.com/stylegenie/matcher/internal/usecase/atelier"
	cataloguc "github.com/stylegenie/matcher/internal/usecase/catalog"
	embeddinguc "github.com/stylegenie/matcher/internal/usecase/embedding"
	healthuc "github.com/stylegenie/matcher/internal/usecase/health"
	searchuc "github.com/stylegenie/matcher/internal/usecase/search"
	"github.com/stylegenie/matcher/internal/version"
)

const serviceName = domain.ServiceMatcher

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	baseLogger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = baseLogger.Sync() }()
	logger := logpkg.ForService(baseLogger, serviceName, env)

	logger.Info("Starting StyleGenie matcher",
		zap.String("build", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("features_provider", cfg.Features.Provider),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, config.Timeout(cfg.Database.ReadinessTimeout)); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("driver", store.Driver()))

	// Register metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterRankingMetrics()

	baseEmbedder, embedder := buildEmbedder(cfg.Embedding, store, logger)
	baseExtractor, extractor := buildExtractor(cfg.Features, logger)

	// Repositories
	products := catalogrepo.NewProductRepo(store, logger)
	ateliers := catalogrepo.NewAtelierRepo(store, logger)

	// Use case services
	catalogSvc := cataloguc.New(products, ateliers, embedder)
	searchSvc := searchuc.New(products, embedder, searchuc.Options{
		Weights: cfg.Ranking.Product.ToDomain(),
		Workers: cfg.Ranking.Workers,
	})
	matchSvc := atelieruc.New(ateliers, extractor, atelieruc.Options{
		Weights: cfg.Ranking.Atelier.ToDomain(),
		Workers: cfg.Ranking.Workers,
	})
	healthSvc := healthuc.New(serviceName, store,
		healthuc.Named{Name: "embedding", Checker: checkerOf(baseEmbedder)},
		healthuc.Named{Name: "features", Checker: checkerOf(baseExtractor)},
	)

	if cfg.Catalog.SeedFile != "" {
		if err := loadSeed(ctx, catalogSvc, cfg.Catalog.SeedFile, logger); err != nil {
			logger.Fatal("Failed to load catalog seed", zap.Error(err))
		}
	}

	server := chiTransport.NewServer(searchSvc, matchSvc, catalogSvc, healthSvc, logger).
		WithDefaults(chiTransport.RequestDefaults{
			Limits:        cfg.Ranking.Limits(),
			MinSimilarity: cfg.Ranking.DefaultMinSimilarity(),
		})
	handler := chiTransport.NewRouter(server, logger, chiTransport.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  config.Timeout(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Timeout(cfg.HTTP.WriteTimeoutSec),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented.
// The bare provider is returned as well for health checks.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) (any, domain.Embedder) {
	var (
		base  domain.Embedder
		model = cfg.Model
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Timeout:    config.Timeout(cfg.TimeoutSec),
			Logger:     logger,
		})
	default:
		base = placeholder.NewEmbedder(cfg.Dimensions)
		model = placeholder.Model
	}

	embedder := base
	if cfg.Cache.Enabled {
		embedder = embcache.New(base, store, embcache.Options{
			Model: model,
			TTL:   config.Timeout(cfg.Cache.TTLSec),
		}, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
		zap.Int("dimensions", cfg.Dimensions),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return base, embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, model, logger)
}

// buildExtractor assembles provider -> Instrumented for design feature extraction.
func buildExtractor(cfg config.FeaturesConfig, logger *zap.Logger) (any, domain.FeatureExtractor) {
	var (
		base  domain.FeatureExtractor
		model = cfg.Model
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiTransport.NewClassifier(&openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: cfg.Provider,
			Timeout:  config.Timeout(cfg.TimeoutSec),
			Logger:   logger,
		})
	default:
		base = placeholder.NewExtractor()
		model = placeholder.Model
	}

	logger.Info("Feature extractor created",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
	)
	return base, embeddinguc.NewInstrumentedExtractor(base, cfg.Provider, model, logger)
}

// checkerOf returns v as a health checker, or nil when it has no health check.
func checkerOf(v any) healthuc.Checker {
	if hc, ok := v.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}

func loadSeed(ctx context.Context, svc *cataloguc.Service, path string, logger *zap.Logger) error {
	products, ateliers, err := catalogrepo.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	if err := svc.Load(ctx, cataloguc.Seed{Products: products, Ateliers: ateliers}); err != nil {
		return fmt.Errorf("store seed: %w", err)
	}
	logger.Info("Catalog seeded",
		zap.String("file", path),
		zap.Int("products", len(products)),
		zap.Int("ateliers", len(ateliers)),
	)
	return nil
}
