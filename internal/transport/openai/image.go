package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
)

// DefaultImageSize is requested when the config leaves the size empty.
const DefaultImageSize = openai.CreateImageSize1024x1024

// ImageGenerator renders images through the OpenAI-compatible images API.
// The API has no seed parameter, so seeds are only logged.
type ImageGenerator struct {
	client *openai.Client
	model  string
	size   string
	user   string
	labels requestLabels
	logger *zap.Logger
}

// NewImageGenerator creates a text-to-image provider. size falls back to DefaultImageSize.
func NewImageGenerator(cfg *Config, size string) *ImageGenerator {
	if size == "" {
		size = DefaultImageSize
	}
	return &ImageGenerator{
		client: newClient(cfg),
		model:  cfg.Model,
		size:   size,
		user:   cfg.User,
		labels: requestLabels{provider: cfg.Provider, model: cfg.Model, kind: "image"},
		logger: cfg.Logger,
	}
}

// Generate implements domain.ImageGenerator.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string, seed uint32) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           g.size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
		User:           g.user,
	})
	if err != nil {
		g.labels.fail("api_error")
		return "", parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		g.labels.fail("empty_response")
		return "", fmt.Errorf("empty image response: %w", domain.ErrUpstreamUnavailable)
	}

	img := resp.Data[0]
	switch {
	case img.URL != "":
		g.labels.succeed(openai.Usage{})
		g.logger.Debug("Image generated", zap.Uint32("seed", seed), zap.String("revised_prompt", img.RevisedPrompt))
		return img.URL, nil
	case img.B64JSON != "":
		// Some servers ignore response_format and inline the image.
		g.labels.succeed(openai.Usage{})
		return "data:image/png;base64," + img.B64JSON, nil
	default:
		g.labels.fail("empty_response")
		return "", fmt.Errorf("image response has no url: %w", domain.ErrUpstreamUnavailable)
	}
}

// HealthCheck verifies API availability.
func (g *ImageGenerator) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, g.client)
}
