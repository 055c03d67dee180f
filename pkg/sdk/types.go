package stylegenie

import (
	"context"
	"time"

	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
	"github.com/stylegenie/matcher/internal/domain/ranking"
)

// Catalog entry types.
type (
	Product  = product.Product
	Atelier  = atelier.Atelier
	Contact  = atelier.Contact
	Features = atelier.Features

	Complexity = atelier.Complexity
)

// Scoring weights accepted by WithProductWeights and WithAtelierWeights.
type (
	ProductWeights = ranking.ProductWeights
	AtelierWeights = ranking.AtelierWeights
)

// Design complexity levels.
const (
	ComplexityLow    = atelier.Low
	ComplexityMedium = atelier.Medium
	ComplexityHigh   = atelier.High
)

// Embedder converts an image reference to a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, imageURL string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// FeatureExtractor describes a design image by category, complexity, fabric
// and decorative elements.
type FeatureExtractor interface {
	Extract(ctx context.Context, imageURL string) (Features, error)
}

// SearchQuery asks for products visually similar to an image.
type SearchQuery struct {
	ImageURL string
	// MaxResults defaults to 20, capped at 100.
	MaxResults int
	// MinSimilarity defaults to 0.7 when nil.
	MinSimilarity *float64
	Budget        *float64
	Category      string
}

// ProductHit is a ranked product.
type ProductHit struct {
	Product    Product
	Similarity float64
	Score      float64
}

// ProductResults is the outcome of a product search.
type ProductResults struct {
	Items        []ProductHit
	TotalMatches int
	QueryTime    time.Duration
	// Skipped lists IDs of products that could not be scored.
	Skipped []string
}

// MatchQuery asks for ateliers able to make a design.
type MatchQuery struct {
	ImageURL string
	Location string
	Budget   *float64
	// MaxResults defaults to 10, capped at 100.
	MaxResults int
}

// AtelierHit is a ranked atelier.
type AtelierHit struct {
	Atelier Atelier
	Score   float64
}

// AtelierResults is the outcome of an atelier match.
type AtelierResults struct {
	Items            []AtelierHit
	TotalMatches     int
	QueryTime        time.Duration
	Features         Features
	DesignComplexity float64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "healthy", "degraded"
	Checks map[string]string // component → "ok"/"error"
}
