// Package openai talks to OpenAI-compatible APIs for image embeddings and
// design feature classification.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/metrics"
)

// Config holds provider settings shared by the embedder and the classifier.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	Timeout    time.Duration
	Logger     *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClientWithConfig(clientCfg)
}

// healthCheck verifies API availability via ListModels (free endpoint).
func healthCheck(ctx context.Context, c *openai.Client) error {
	if _, err := c.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

type requestLabels struct {
	provider string
	model    string
	kind     string
}

func (l requestLabels) fail(errType string) {
	metrics.ProviderRequestsTotal.WithLabelValues(l.provider, l.model, l.kind, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(l.provider, l.model, errType).Inc()
}

func (l requestLabels) succeed(usage openai.Usage) {
	metrics.ProviderRequestsTotal.WithLabelValues(l.provider, l.model, l.kind, "success").Inc()
	if usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(l.provider, l.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(l.provider, l.model, "total").Add(float64(usage.TotalTokens))
	}
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrUpstreamUnavailable so the HTTP layer answers 503.
func parseAPIError(err error) error {
	wrap := domain.ErrUpstreamUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("provider API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("provider API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("provider API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("provider request: %w: %w", wrap, err)
	}

	return fmt.Errorf("provider request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" field that OpenAI-compatible servers put in error bodies.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
