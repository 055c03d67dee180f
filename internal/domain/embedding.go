package domain

import "context"

// Embedder turns an image reference into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, imageURL string) (EmbeddingResult, error)
}

// HealthChecker verifies feature provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
