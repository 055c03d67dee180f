package atelier

import (
	"context"

	domatelier "github.com/stylegenie/matcher/internal/domain/atelier"
)

// AtelierStore lists candidate ateliers.
type AtelierStore interface {
	List(ctx context.Context, f domatelier.Filter) ([]domatelier.Atelier, error)
}

// FeatureExtractor describes the query design.
type FeatureExtractor interface {
	Extract(ctx context.Context, imageURL string) (domatelier.Features, error)
}
