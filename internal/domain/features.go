package domain

import (
	"context"

	"github.com/stylegenie/matcher/internal/domain/atelier"
)

// FeatureExtractor turns an image reference into categorical design features.
type FeatureExtractor interface {
	Extract(ctx context.Context, imageURL string) (atelier.Features, error)
}
