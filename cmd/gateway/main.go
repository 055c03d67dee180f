package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/config"
	"github.com/stylegenie/matcher/internal/domain"
	logpkg "github.com/stylegenie/matcher/internal/logger"
	"github.com/stylegenie/matcher/internal/metrics"
	chiTransport "github.com/stylegenie/matcher/internal/transport/chi"
	"github.com/stylegenie/matcher/internal/transport/gateway"
	healthuc "github.com/stylegenie/matcher/internal/usecase/health"
	"github.com/stylegenie/matcher/internal/version"
)

const serviceName = domain.ServiceGateway

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.ValidateGateway(); err != nil {
		panic("invalid gateway config: " + err.Error())
	}

	baseLogger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = baseLogger.Sync() }()
	logger := logpkg.ForService(baseLogger, serviceName, env)

	logger.Info("Starting StyleGenie API gateway",
		zap.String("build", version.String()),
		zap.Int("http_port", cfg.Gateway.Port),
		zap.String("search_url", cfg.Gateway.SearchURL),
		zap.String("matching_url", cfg.Gateway.MatchingURL),
		zap.String("generation_url", cfg.Gateway.GenerationURL),
	)

	metrics.RegisterGatewayMetrics()

	fwd := gateway.New(gateway.Config{
		SearchURL:         cfg.Gateway.SearchURL,
		MatchingURL:       cfg.Gateway.MatchingURL,
		GenerationURL:     cfg.Gateway.GenerationURL,
		Timeout:           config.Timeout(cfg.Gateway.TimeoutSec),
		GenerationTimeout: config.Timeout(cfg.Gateway.GenerationTimeoutSec),
	}, logger)
	health := healthuc.New(serviceName, nil)

	r := chi.NewRouter()
	chiTransport.InstallMiddleware(r, serviceName, logger, chiTransport.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	fwd.Routes(r)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		chiTransport.WriteHealth(w, health.Check(r.Context()))
	})
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Gateway.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: config.Timeout(cfg.HTTP.ReadTimeoutSec),
		// Writes must outlive the slowest upstream.
		WriteTimeout: config.Timeout(cfg.Gateway.GenerationTimeoutSec + cfg.HTTP.WriteTimeoutSec),
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

	logger.Info("Gateway stopped gracefully")
}
