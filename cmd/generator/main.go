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
	"github.com/stylegenie/matcher/internal/domain"
	logpkg "github.com/stylegenie/matcher/internal/logger"
	"github.com/stylegenie/matcher/internal/metrics"
	chiTransport "github.com/stylegenie/matcher/internal/transport/chi"
	openaiTransport "github.com/stylegenie/matcher/internal/transport/openai"
	"github.com/stylegenie/matcher/internal/transport/placeholder"
	embeddinguc "github.com/stylegenie/matcher/internal/usecase/embedding"
	generationuc "github.com/stylegenie/matcher/internal/usecase/generation"
	healthuc "github.com/stylegenie/matcher/internal/usecase/health"
	"github.com/stylegenie/matcher/internal/version"
)

const serviceName = domain.ServiceGenerator

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.ValidateGenerator(); err != nil {
		panic("invalid generation config: " + err.Error())
	}

	baseLogger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = baseLogger.Sync() }()
	logger := logpkg.ForService(baseLogger, serviceName, env)

	logger.Info("Starting StyleGenie image generation",
		zap.String("build", version.String()),
		zap.Int("http_port", cfg.Generation.Port),
		zap.String("provider", cfg.Generation.Provider),
		zap.Int("workers", cfg.Generation.Workers),
	)

	metrics.RegisterProviderMetrics()
	metrics.RegisterGenerationMetrics()

	base, gen := buildGenerator(cfg.Generation, logger)
	svc := generationuc.New(gen, generationuc.Options{Workers: cfg.Generation.Workers})
	health := healthuc.New(serviceName, nil, healthuc.Named{Name: "image_provider", Checker: base})

	server := chiTransport.NewGenerationServer(svc, health, logger)
	handler := chiTransport.NewGenerationRouter(server, logger, chiTransport.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Generation.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: config.Timeout(cfg.HTTP.ReadTimeoutSec),
		// A request renders several images back to back.
		WriteTimeout: config.Timeout(cfg.Generation.TimeoutSec + cfg.HTTP.WriteTimeoutSec),
	}

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

	logger.Info("Image generation stopped gracefully")
}

// imageProvider is an image generator that can report its health.
type imageProvider interface {
	domain.ImageGenerator
	domain.HealthChecker
}

// buildGenerator assembles provider -> Instrumented for image generation.
func buildGenerator(cfg config.GenerationConfig, logger *zap.Logger) (imageProvider, domain.ImageGenerator) {
	var (
		base  imageProvider
		model = cfg.Model
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiTransport.NewImageGenerator(&openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: cfg.Provider,
			Timeout:  config.Timeout(cfg.TimeoutSec),
			Logger:   logger,
		}, cfg.Size)
	default:
		base = placeholder.NewImageGenerator()
		model = placeholder.Model
	}

	logger.Info("Image generator created",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
	)
	return base, embeddinguc.NewInstrumentedImageGenerator(base, cfg.Provider, model, logger)
}
