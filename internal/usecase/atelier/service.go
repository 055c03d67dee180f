// Package atelier matches a design image to ateliers able to make it.
package atelier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	domatelier "github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
	"github.com/stylegenie/matcher/internal/logger"
	"github.com/stylegenie/matcher/internal/metrics"
)

// Options tunes scoring.
type Options struct {
	Weights ranking.AtelierWeights
	Workers int
}

// Match is the outcome of matching one design.
type Match struct {
	ranking.Result[domatelier.Atelier]
	Features         domatelier.Features
	DesignComplexity float64
}

// Service handles atelier matching.
type Service struct {
	store   AtelierStore
	extract FeatureExtractor
	opts    Options
}

// New creates a matching service. Zero weights fall back to the defaults.
func New(store AtelierStore, extract FeatureExtractor, opts Options) *Service {
	if opts.Weights == (ranking.AtelierWeights{}) {
		opts.Weights = ranking.DefaultAtelierWeights()
	}
	return &Service{store: store, extract: extract, opts: opts}
}

// Match extracts design features, loads ateliers working in that category and ranks them.
func (s *Service) Match(ctx context.Context, req *request.Atelier) (Match, error) {
	start := time.Now()

	raw, err := s.extract.Extract(ctx, req.ImageURL())
	if err != nil {
		return Match{}, upstream("extract features", err)
	}
	f, err := raw.Normalize()
	if err != nil {
		return Match{}, fmt.Errorf("extract features: %w: %w", domain.ErrUpstreamUnavailable, err)
	}

	// Ateliers outside the category can never pass the gate.
	candidates, err := s.store.List(ctx, domatelier.Filter{Category: f.Category})
	if err != nil {
		return Match{}, upstream("list ateliers", err)
	}

	res := ranking.RankAteliers(f, candidates, ranking.AtelierParams{
		Location:   req.Location(),
		Budget:     req.Budget(),
		MaxResults: req.Limit(),
		Weights:    s.opts.Weights,
		Workers:    s.opts.Workers,
	})

	metrics.ObserveRanking(metrics.PipelineAteliers, res.QueryTime, res.TotalMatches, res.Excluded, len(res.Skipped))

	log := logger.FromContext(ctx)
	for _, sk := range res.Skipped {
		log.Warn("Skipping malformed atelier", zap.String("id", sk.ID), zap.String("reason", sk.Reason))
	}
	log.Debug("Atelier match ranked",
		zap.String("category", f.Category),
		zap.String("complexity", string(f.Complexity)),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", res.TotalMatches),
		zap.Duration("ranking", res.QueryTime),
	)

	res.QueryTime = time.Since(start)
	return Match{
		Result:           res,
		Features:         f,
		DesignComplexity: domatelier.ComplexityScore(f),
	}, nil
}

func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
}
