package catalog

import (
	"context"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
)

// ProductRepository stores catalog products.
type ProductRepository interface {
	Put(ctx context.Context, p *product.Product) error
	Get(ctx context.Context, id string) (product.Product, error)
	List(ctx context.Context, f product.Filter) ([]product.Product, error)
	Delete(ctx context.Context, id string) error
}

// AtelierRepository stores catalog ateliers.
type AtelierRepository interface {
	Put(ctx context.Context, a *atelier.Atelier) error
	Get(ctx context.Context, id string) (atelier.Atelier, error)
	List(ctx context.Context, f atelier.Filter) ([]atelier.Atelier, error)
	Delete(ctx context.Context, id string) error
}

// Embedder fills in embeddings for products stored without one.
type Embedder interface {
	Embed(ctx context.Context, imageURL string) (domain.EmbeddingResult, error)
}
