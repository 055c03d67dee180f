// Package generation turns a styled text prompt into a set of fashion images.
package generation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stylegenie/matcher/internal/domain"
	domgen "github.com/stylegenie/matcher/internal/domain/generation"
	"github.com/stylegenie/matcher/internal/logger"
	"github.com/stylegenie/matcher/internal/metrics"
)

// Options tunes generation.
type Options struct {
	// Workers bounds concurrent provider calls. <= 1 renders sequentially.
	Workers int
}

// Result is the outcome of one generation request. Images[i] was rendered with Seeds[i].
type Result struct {
	Images         []string
	Seeds          []uint32
	PromptEnhanced string
	GenerationTime time.Duration
}

// Service handles image generation.
type Service struct {
	gen  ImageGenerator
	opts Options
}

// New creates a generation service.
func New(gen ImageGenerator, opts Options) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{gen: gen, opts: opts}
}

// Generate enhances the prompt, derives a seed per image and renders every image.
// A single failed image fails the request.
func (s *Service) Generate(ctx context.Context, req *domgen.Request) (Result, error) {
	start := time.Now()

	prompt := domgen.Enhance(req)
	seeds := domgen.Seeds(prompt, req.NumImages(), req.Seed())

	log := logger.FromContext(ctx)
	log.Info("Enhanced prompt",
		zap.String("prompt", prompt),
		zap.String("type", string(req.Kind())),
		zap.Int("num_images", len(seeds)),
	)

	images := make([]string, len(seeds))
	var rendered atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.Workers)
	for i, seed := range seeds {
		eg.Go(func() error {
			url, err := s.gen.Generate(egCtx, prompt, seed)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			images[i] = url
			rendered.Add(1)
			return nil
		})
	}
	err := eg.Wait()

	elapsed := time.Since(start)
	ok := int(rendered.Load())
	metrics.ObserveGeneration(elapsed, ok, len(seeds)-ok)

	if err != nil {
		log.Error("Generation error", zap.Error(err))
		return Result{}, upstream("generate images", err)
	}

	return Result{
		Images:         images,
		Seeds:          seeds,
		PromptEnhanced: prompt,
		GenerationTime: elapsed,
	}, nil
}

func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
}
