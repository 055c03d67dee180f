// Package embedding decorates feature and image providers with latency metrics and logging.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/metrics"
)

// Provider kinds used as the "kind" metric label.
const (
	KindEmbedding = "embedding"
	KindFeatures  = "features"
	KindImage     = "image"
)

// InstrumentedEmbedder wraps an Embedder with latency metrics and logging.
// Request, token and error counters are recorded by the transport that talks to the API.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and records how long it took.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, imageURL string) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, imageURL)

	duration := time.Since(start)
	metrics.ProviderRequestDuration.WithLabelValues(p.provider, p.model, KindEmbedding).Observe(duration.Seconds())

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// InstrumentedExtractor wraps a FeatureExtractor with latency metrics and logging.
type InstrumentedExtractor struct {
	inner    domain.FeatureExtractor
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedExtractor wraps a feature extractor with observability.
func NewInstrumentedExtractor(
	inner domain.FeatureExtractor, provider, model string, logger *zap.Logger,
) *InstrumentedExtractor {
	return &InstrumentedExtractor{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Extract delegates to the inner extractor and records how long it took.
func (p *InstrumentedExtractor) Extract(ctx context.Context, imageURL string) (atelier.Features, error) {
	start := time.Now()

	f, err := p.inner.Extract(ctx, imageURL)

	duration := time.Since(start)
	metrics.ProviderRequestDuration.WithLabelValues(p.provider, p.model, KindFeatures).Observe(duration.Seconds())

	if err != nil {
		p.logger.Error("Feature extraction failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return atelier.Features{}, fmt.Errorf("extract features: %w", err)
	}

	p.logger.Debug("Feature extraction completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.String("category", f.Category),
		zap.String("complexity", string(f.Complexity)),
	)

	return f, nil
}

// InstrumentedImageGenerator wraps an ImageGenerator with latency metrics and logging.
type InstrumentedImageGenerator struct {
	inner    domain.ImageGenerator
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedImageGenerator wraps an image generator with observability.
func NewInstrumentedImageGenerator(
	inner domain.ImageGenerator, provider, model string, logger *zap.Logger,
) *InstrumentedImageGenerator {
	return &InstrumentedImageGenerator{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Generate delegates to the inner generator and records how long it took.
func (p *InstrumentedImageGenerator) Generate(ctx context.Context, prompt string, seed uint32) (string, error) {
	start := time.Now()

	url, err := p.inner.Generate(ctx, prompt, seed)

	duration := time.Since(start)
	metrics.ProviderRequestDuration.WithLabelValues(p.provider, p.model, KindImage).Observe(duration.Seconds())

	if err != nil {
		p.logger.Error("Image generation failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Uint32("seed", seed),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", fmt.Errorf("generate image: %w", err)
	}

	p.logger.Debug("Image generation completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Uint32("seed", seed),
		zap.Duration("duration", duration),
	)

	return url, nil
}
