// Package catalog manages the products and ateliers that searches rank.
package catalog

import (
	"context"
	"fmt"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
)

// Service validates and stores catalog entries.
type Service struct {
	products ProductRepository
	ateliers AtelierRepository
	embed    Embedder
}

// New creates a catalog service. embed may be nil, in which case products
// must carry their own embedding.
func New(products ProductRepository, ateliers AtelierRepository, embed Embedder) *Service {
	return &Service{products: products, ateliers: ateliers, embed: embed}
}

// PutProduct validates and stores a product, replacing any previous version.
// A product without an embedding gets one computed from its image.
func (s *Service) PutProduct(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if len(p.Embedding) == 0 {
		if s.embed == nil {
			return fmt.Errorf("%w: embedding is required", domain.ErrInvalidInput)
		}
		res, err := s.embed.Embed(ctx, p.Image)
		if err != nil {
			return fmt.Errorf("embed product image: %w", err)
		}
		p.Embedding = res.Embedding
	}
	if err := s.products.Put(ctx, p); err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

// GetProduct returns a product by ID.
func (s *Service) GetProduct(ctx context.Context, id string) (product.Product, error) {
	if err := product.ValidateID(id); err != nil {
		return product.Product{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return product.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts returns up to limit products passing f. limit <= 0 means all.
func (s *Service) ListProducts(ctx context.Context, f product.Filter, limit int) ([]product.Product, error) {
	list, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return truncate(list, limit), nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := product.ValidateID(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// PutAtelier validates and stores an atelier. An empty complexity range
// means the atelier takes on any complexity.
func (s *Service) PutAtelier(ctx context.Context, a *atelier.Atelier) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if len(a.ComplexityRange) == 0 {
		a.ComplexityRange = atelier.DefaultComplexityRange()
	}
	if err := s.ateliers.Put(ctx, a); err != nil {
		return fmt.Errorf("put atelier: %w", err)
	}
	return nil
}

// GetAtelier returns an atelier by ID.
func (s *Service) GetAtelier(ctx context.Context, id string) (atelier.Atelier, error) {
	if err := product.ValidateID(id); err != nil {
		return atelier.Atelier{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	a, err := s.ateliers.Get(ctx, id)
	if err != nil {
		return atelier.Atelier{}, fmt.Errorf("get atelier: %w", err)
	}
	return a, nil
}

// ListAteliers returns up to limit ateliers passing f. limit <= 0 means all.
func (s *Service) ListAteliers(ctx context.Context, f atelier.Filter, limit int) ([]atelier.Atelier, error) {
	list, err := s.ateliers.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list ateliers: %w", err)
	}
	return truncate(list, limit), nil
}

// DeleteAtelier removes an atelier.
func (s *Service) DeleteAtelier(ctx context.Context, id string) error {
	if err := product.ValidateID(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.ateliers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete atelier: %w", err)
	}
	return nil
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// Seed is an initial catalog loaded at startup.
type Seed struct {
	Products []product.Product
	Ateliers []atelier.Atelier
}

// Load stores every seed entry, stopping at the first failure.
func (s *Service) Load(ctx context.Context, seed Seed) error {
	for i := range seed.Products {
		if err := s.PutProduct(ctx, &seed.Products[i]); err != nil {
			return fmt.Errorf("seed product %q: %w", seed.Products[i].ID, err)
		}
	}
	for i := range seed.Ateliers {
		if err := s.PutAtelier(ctx, &seed.Ateliers[i]); err != nil {
			return fmt.Errorf("seed atelier %q: %w", seed.Ateliers[i].ID, err)
		}
	}
	return nil
}
