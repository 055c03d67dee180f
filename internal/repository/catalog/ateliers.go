package catalog

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
)

var atelierPrefix = domain.KeyPrefix + "atelier:"

// AtelierRepo stores ateliers under stylegenie:atelier:<id>.
type AtelierRepo struct {
	docs docs[atelierDoc]
}

// NewAtelierRepo creates an atelier repository.
func NewAtelierRepo(s store, logger *zap.Logger) *AtelierRepo {
	return &AtelierRepo{docs: docs[atelierDoc]{
		store:  s,
		prefix: atelierPrefix,
		kind:   "atelier",
		logger: logger,
	}}
}

// Put creates or replaces an atelier.
func (r *AtelierRepo) Put(ctx context.Context, a *atelier.Atelier) error {
	return r.docs.put(ctx, a.ID, toAtelierDoc(a))
}

// Get returns an atelier by ID.
func (r *AtelierRepo) Get(ctx context.Context, id string) (atelier.Atelier, error) {
	d, err := r.docs.get(ctx, id)
	if err != nil {
		return atelier.Atelier{}, err
	}
	return d.toDomain(), nil
}

// Delete removes an atelier.
func (r *AtelierRepo) Delete(ctx context.Context, id string) error {
	return r.docs.del(ctx, id)
}

// List returns ateliers passing f, ordered by ID.
func (r *AtelierRepo) List(ctx context.Context, f atelier.Filter) ([]atelier.Atelier, error) {
	all, err := r.docs.all(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]atelier.Atelier, 0, len(all))
	for _, d := range all {
		a := d.toDomain()
		if f.Matches(&a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
