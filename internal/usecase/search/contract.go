package search

import (
	"context"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/product"
)

// ProductStore lists candidate products.
type ProductStore interface {
	List(ctx context.Context, f product.Filter) ([]product.Product, error)
}

// Embedder vectorizes a query image.
type Embedder interface {
	Embed(ctx context.Context, imageURL string) (domain.EmbeddingResult, error)
}
