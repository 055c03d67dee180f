package stylegenie

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stylegenie/matcher/internal/db"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "memory" or "redis"
	addrs    []string
	password string

	embedder     Embedder
	extractor    FeatureExtractor
	placeholders bool

	productWeights *ranking.ProductWeights
	atelierWeights *ranking.AtelierWeights
	minSimilarity  *float64
	limits         request.Limits
	workers        int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func (c *clientConfig) validate() error {
	if c.productWeights != nil {
		if err := c.productWeights.Validate(); err != nil {
			return err
		}
	}
	if c.atelierWeights != nil {
		if err := c.atelierWeights.Validate(); err != nil {
			return err
		}
	}
	if ms := c.minSimilarity; ms != nil && (math.IsNaN(*ms) || *ms < -1 || *ms > 1) {
		return fmt.Errorf("min similarity must be between -1 and 1, got %v", *ms)
	}
	return c.limits.WithFallback().Validate()
}

// WithRedis stores the catalog in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = db.DriverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps the catalog in process memory. Contents are lost on Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = db.DriverMemory
		c.addrs = nil
	})
}

// WithEmbedder sets the image embedding provider used by product search.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithFeatureExtractor sets the design classifier used by atelier matching.
func WithFeatureExtractor(x FeatureExtractor) Option {
	return optionFunc(func(c *clientConfig) {
		c.extractor = x
	})
}

// WithPlaceholderProviders fills unset providers with deterministic stand-ins:
// hash-derived embeddings and a fixed feature set. Intended for demos and tests.
func WithPlaceholderProviders() Option {
	return optionFunc(func(c *clientConfig) {
		c.placeholders = true
	})
}

// WithProductWeights adjusts the product scoring weights. fn receives the
// current weights, starting from the production defaults, so fields it
// leaves alone keep their values.
func WithProductWeights(fn func(*ProductWeights)) Option {
	return optionFunc(func(c *clientConfig) {
		if c.productWeights == nil {
			w := ranking.DefaultProductWeights()
			c.productWeights = &w
		}
		fn(c.productWeights)
	})
}

// WithAtelierWeights adjusts the atelier scoring weights and acceptance
// threshold. Unset fields keep the production defaults.
func WithAtelierWeights(fn func(*AtelierWeights)) Option {
	return optionFunc(func(c *clientConfig) {
		if c.atelierWeights == nil {
			w := ranking.DefaultAtelierWeights()
			c.atelierWeights = &w
		}
		fn(c.atelierWeights)
	})
}

// WithMinSimilarity sets the search similarity gate used when a query
// does not carry its own.
func WithMinSimilarity(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.minSimilarity = &v
	})
}

// WithResultLimits sets the default result counts and the largest count a
// query may ask for. Zero values keep the defaults.
func WithResultLimits(products, ateliers, maxResults int) Option {
	return optionFunc(func(c *clientConfig) {
		c.limits = request.Limits{DefaultProduct: products, DefaultAtelier: ateliers, Max: maxResults}
	})
}

// WithWorkers scores candidates on n goroutines. n <= 1 scores sequentially.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
