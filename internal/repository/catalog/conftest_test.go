package catalog

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/db"
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn      func(ctx context.Context, key string) ([]byte, error)
	getMultiFn func(ctx context.Context, keys []string) ([][]byte, error)
	setFn      func(ctx context.Context, key string, value []byte) error
	delFn      func(ctx context.Context, key string) error
	scanFn     func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) GetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if m.getMultiFn != nil {
		return m.getMultiFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestProductRepo(t *testing.T) (*ProductRepo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return NewProductRepo(ms, zap.NewNop()), ms
}

func newTestAtelierRepo(t *testing.T) (*AtelierRepo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return NewAtelierRepo(ms, zap.NewNop()), ms
}

func testProduct(id, category string) product.Product {
	rating := 4.2
	return product.Product{
		ID:        id,
		Name:      "Silk dress " + id,
		Category:  category,
		Price:     12000,
		Image:     "https://cdn.example.com/" + id + ".jpg",
		URL:       "https://shop.example.com/" + id,
		Brand:     "Mira",
		Rating:    &rating,
		Embedding: []float32{0.1, 0.2, 0.3},
		Available: true,
	}
}

func testAtelier(id, location string, categories ...string) atelier.Atelier {
	return atelier.Atelier{
		ID:              id,
		Name:            "Atelier " + id,
		Location:        location,
		Specialization:  []string{"evening wear"},
		PriceRange:      "20000-50000 руб",
		Rating:          4.8,
		PortfolioImages: []string{"https://cdn.example.com/p1.jpg"},
		Contact:         &atelier.Contact{Phone: "+7 900 000-00-00", Instagram: "@atelier"},
		ComplexityRange: []atelier.Complexity{atelier.Medium, atelier.High},
		Categories:      categories,
	}
}
