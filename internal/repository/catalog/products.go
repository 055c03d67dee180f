package catalog

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/product"
)

var productPrefix = domain.KeyPrefix + "product:"

// ProductRepo stores products under stylegenie:product:<id>.
type ProductRepo struct {
	docs docs[productDoc]
}

// NewProductRepo creates a product repository.
func NewProductRepo(s store, logger *zap.Logger) *ProductRepo {
	return &ProductRepo{docs: docs[productDoc]{
		store:  s,
		prefix: productPrefix,
		kind:   "product",
		logger: logger,
	}}
}

// Put creates or replaces a product.
func (r *ProductRepo) Put(ctx context.Context, p *product.Product) error {
	return r.docs.put(ctx, p.ID, toProductDoc(p))
}

// Get returns a product by ID.
func (r *ProductRepo) Get(ctx context.Context, id string) (product.Product, error) {
	d, err := r.docs.get(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	return d.toDomain(), nil
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.docs.del(ctx, id)
}

// List returns products passing f, ordered by ID.
func (r *ProductRepo) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	all, err := r.docs.all(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]product.Product, 0, len(all))
	for _, d := range all {
		p := d.toDomain()
		if f.Matches(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
