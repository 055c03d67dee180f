package stylegenie

import (
	"context"
	"fmt"
	"time"

	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
	cataloguc "github.com/stylegenie/matcher/internal/usecase/catalog"
)

// CatalogService manages stored products and ateliers.
type CatalogService struct {
	svc *cataloguc.Service
	obs *observer
}

// PutProduct validates and stores a product. A product without an embedding
// gets one from the configured embedder.
func (s *CatalogService) PutProduct(ctx context.Context, p *Product) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("put_product", start, err) }()

	if err = s.svc.PutProduct(ctx, p); err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

// GetProduct returns a product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (p Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_product", start, err) }()

	p, err = s.svc.GetProduct(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts returns up to limit products, optionally in one category.
// limit <= 0 returns all.
func (s *CatalogService) ListProducts(ctx context.Context, category string, limit int) (list []Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("list_products", start, err) }()

	list, err = s.svc.ListProducts(ctx, product.Filter{Category: category}, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete_product", start, err) }()

	if err = s.svc.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// PutAtelier validates and stores an atelier.
func (s *CatalogService) PutAtelier(ctx context.Context, a *Atelier) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("put_atelier", start, err) }()

	if err = s.svc.PutAtelier(ctx, a); err != nil {
		return fmt.Errorf("put atelier: %w", err)
	}
	return nil
}

// GetAtelier returns an atelier by ID.
func (s *CatalogService) GetAtelier(ctx context.Context, id string) (a Atelier, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_atelier", start, err) }()

	a, err = s.svc.GetAtelier(ctx, id)
	if err != nil {
		return Atelier{}, fmt.Errorf("get atelier: %w", err)
	}
	return a, nil
}

// ListAteliers returns up to limit ateliers, optionally filtered by category
// and location substring. limit <= 0 returns all.
func (s *CatalogService) ListAteliers(
	ctx context.Context, category, location string, limit int,
) (list []Atelier, err error) {
	start := time.Now()
	defer func() { s.obs.observe("list_ateliers", start, err) }()

	list, err = s.svc.ListAteliers(ctx, atelier.Filter{Category: category, Location: location}, limit)
	if err != nil {
		return nil, fmt.Errorf("list ateliers: %w", err)
	}
	return list, nil
}

// DeleteAtelier removes an atelier.
func (s *CatalogService) DeleteAtelier(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete_atelier", start, err) }()

	if err = s.svc.DeleteAtelier(ctx, id); err != nil {
		return fmt.Errorf("delete atelier: %w", err)
	}
	return nil
}
