package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
)

const classifierPrompt = `You are a fashion design analyst. Look at the garment in the image and answer
with a single JSON object with these keys:
  "category": one of dress, suit, shirt, blouse, skirt, trousers, jacket, coat;
  "complexity": one of low, medium, high (how hard the garment is to tailor);
  "fabric": the main fabric, e.g. satin, silk, cotton, wool, denim;
  "decorative_elements": array of decorations such as embroidery, beading, lace, sequins, ruffles.
Answer with JSON only.`

// Classifier extracts design features from an image with an OpenAI-compatible
// vision chat model in JSON mode.
type Classifier struct {
	client *openai.Client
	model  string
	user   string
	labels requestLabels
	logger *zap.Logger
}

// NewClassifier creates a vision feature extractor.
func NewClassifier(cfg *Config) *Classifier {
	return &Classifier{
		client: newClient(cfg),
		model:  cfg.Model,
		user:   cfg.User,
		labels: requestLabels{provider: cfg.Provider, model: cfg.Model, kind: "features"},
		logger: cfg.Logger,
	}
}

type featuresPayload struct {
	Category           string   `json:"category"`
	Complexity         string   `json:"complexity"`
	Fabric             string   `json:"fabric"`
	DecorativeElements []string `json:"decorative_elements"`
}

// Extract implements domain.FeatureExtractor.
func (c *Classifier) Extract(ctx context.Context, imageURL string) (atelier.Features, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Describe this design."},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		User: c.user,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.labels.fail("api_error")
		return atelier.Features{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		c.labels.fail("empty_response")
		return atelier.Features{}, fmt.Errorf("empty classifier response: %w", domain.ErrUpstreamUnavailable)
	}

	f, err := decodeFeatures(resp.Choices[0].Message.Content)
	if err != nil {
		c.labels.fail("bad_response")
		c.logger.Warn("Unusable classifier response",
			zap.String("model", c.model),
			zap.String("content", resp.Choices[0].Message.Content),
			zap.Error(err),
		)
		return atelier.Features{}, fmt.Errorf("decode classifier response: %w: %w", domain.ErrUpstreamUnavailable, err)
	}

	c.labels.succeed(resp.Usage)
	return f, nil
}

// HealthCheck verifies API availability.
func (c *Classifier) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, c.client)
}

// decodeFeatures parses the model's JSON answer. Values are lower-cased;
// code fences some models wrap JSON in are tolerated.
func decodeFeatures(content string) (atelier.Features, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var p featuresPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return atelier.Features{}, fmt.Errorf("unmarshal: %w", err)
	}

	f := atelier.Features{
		Category:   strings.ToLower(strings.TrimSpace(p.Category)),
		Complexity: atelier.Complexity(strings.ToLower(strings.TrimSpace(p.Complexity))),
		Fabric:     strings.ToLower(strings.TrimSpace(p.Fabric)),
	}
	for _, el := range p.DecorativeElements {
		if el = strings.ToLower(strings.TrimSpace(el)); el != "" {
			f.DecorativeElements = append(f.DecorativeElements, el)
		}
	}
	return f.Normalize()
}
