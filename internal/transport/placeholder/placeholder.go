// Package placeholder provides offline stand-ins for the feature and image
// providers. Vectors are stable per image URL so rankings are reproducible
// without a model.
package placeholder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"strconv"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
)

// DefaultDimensions matches CLIP ViT-B/32 output.
const DefaultDimensions = 512

// Model labels placeholder vectors in metrics and cache keys.
const Model = "placeholder"

// Embedder derives a unit vector from the SHA-256 of the image URL.
type Embedder struct {
	dims int
}

// NewEmbedder creates a placeholder embedder. dims <= 0 selects DefaultDimensions.
func NewEmbedder(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, imageURL string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("placeholder embed: %w", err)
	}
	return domain.EmbeddingResult{Embedding: Vector(imageURL, e.dims)}, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(_ context.Context) error { return nil }

// Vector returns the deterministic unit vector for seed. Components are
// non-negative, so any two placeholder vectors have positive cosine.
func Vector(seed string, dims int) []float32 {
	h := sha256.Sum256([]byte(seed))
	rng := rand.New(rand.NewPCG(binary.LittleEndian.Uint64(h[:8]), binary.LittleEndian.Uint64(h[8:16])))

	vec := make([]float32, dims)
	var norm float64
	for i := range vec {
		v := rng.Float64()
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// Extractor reports the same features for every image.
type Extractor struct {
	features atelier.Features
}

// NewExtractor returns an extractor answering with a medium-complexity satin
// dress decorated with embroidery and beading.
func NewExtractor() *Extractor {
	return &Extractor{features: atelier.Features{
		Category:           "dress",
		Complexity:         atelier.Medium,
		Fabric:             "satin",
		DecorativeElements: []string{"embroidery", "beading"},
	}}
}

// Extract implements domain.FeatureExtractor.
func (x *Extractor) Extract(ctx context.Context, _ string) (atelier.Features, error) {
	if err := ctx.Err(); err != nil {
		return atelier.Features{}, fmt.Errorf("placeholder extract: %w", err)
	}
	f := x.features
	f.DecorativeElements = append([]string(nil), x.features.DecorativeElements...)
	return f, nil
}

// HealthCheck always succeeds.
func (x *Extractor) HealthCheck(_ context.Context) error { return nil }

// ImageBaseURL serves the placeholder images.
const ImageBaseURL = "https://via.placeholder.com/512x512/ec4899/ffffff"

// imageTextRunes is how much of the prompt is printed on the image.
const imageTextRunes = 20

// ImageGenerator answers with a placeholder image captioned with the start of
// the prompt.
type ImageGenerator struct{}

// NewImageGenerator creates a placeholder image generator.
func NewImageGenerator() *ImageGenerator { return &ImageGenerator{} }

// Generate implements domain.ImageGenerator.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string, seed uint32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("placeholder generate: %w", err)
	}
	text := []rune(prompt)
	if len(text) > imageTextRunes {
		text = text[:imageTextRunes]
	}
	q := url.Values{}
	q.Set("text", string(text))
	q.Set("seed", strconv.FormatUint(uint64(seed), 10))
	return ImageBaseURL + "?" + q.Encode(), nil
}

// HealthCheck always succeeds.
func (g *ImageGenerator) HealthCheck(_ context.Context) error { return nil }
