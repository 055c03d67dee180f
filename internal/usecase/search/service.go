// Package search ranks catalog products by visual similarity to a query image.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/product"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
	"github.com/stylegenie/matcher/internal/logger"
	"github.com/stylegenie/matcher/internal/metrics"
)

// Options tunes scoring.
type Options struct {
	Weights ranking.ProductWeights
	Workers int
}

// Service handles visual product search.
type Service struct {
	store ProductStore
	embed Embedder
	opts  Options
}

// New creates a search service. Zero weights fall back to the defaults.
func New(store ProductStore, embed Embedder, opts Options) *Service {
	if opts.Weights == (ranking.ProductWeights{}) {
		opts.Weights = ranking.DefaultProductWeights()
	}
	return &Service{store: store, embed: embed, opts: opts}
}

// Search embeds the query image, loads candidates and ranks them.
// QueryTime in the result covers the whole call, provider and store included.
func (s *Service) Search(ctx context.Context, req *request.Product) (ranking.Result[product.Product], error) {
	start := time.Now()

	emb, err := s.embed.Embed(ctx, req.ImageURL())
	if err != nil {
		return ranking.Result[product.Product]{}, upstream("embed query image", err)
	}
	if len(emb.Embedding) == 0 {
		return ranking.Result[product.Product]{}, fmt.Errorf("embed query image: empty vector: %w",
			domain.ErrUpstreamUnavailable)
	}

	candidates, err := s.store.List(ctx, product.Filter{Category: req.Category()})
	if err != nil {
		return ranking.Result[product.Product]{}, upstream("list products", err)
	}

	res := ranking.RankProducts(emb.Embedding, candidates, ranking.ProductParams{
		MinSimilarity: req.MinSimilarity(),
		Budget:        req.Budget(),
		MaxResults:    req.Limit(),
		Weights:       s.opts.Weights,
		Workers:       s.opts.Workers,
	})

	metrics.ObserveRanking(metrics.PipelineProducts, res.QueryTime, res.TotalMatches, res.Excluded, len(res.Skipped))
	logSkipped(ctx, res.Skipped)

	logger.FromContext(ctx).Debug("Product search ranked",
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", res.TotalMatches),
		zap.Int("returned", len(res.Items)),
		zap.Duration("ranking", res.QueryTime),
	)

	res.QueryTime = time.Since(start)
	return res, nil
}

func logSkipped(ctx context.Context, skipped []ranking.Skipped) {
	if len(skipped) == 0 {
		return
	}
	log := logger.FromContext(ctx)
	for _, sk := range skipped {
		log.Warn("Skipping malformed product", zap.String("id", sk.ID), zap.String("reason", sk.Reason))
	}
}

// upstream tags dependency failures so the transport answers 503.
func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
}
