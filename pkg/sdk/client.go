package stylegenie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/db"
	dbMemory "github.com/stylegenie/matcher/internal/db/memory"
	dbRedis "github.com/stylegenie/matcher/internal/db/redis"
	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
	catalogrepo "github.com/stylegenie/matcher/internal/repository/catalog"
	"github.com/stylegenie/matcher/internal/transport/placeholder"
	atelieruc "github.com/stylegenie/matcher/internal/usecase/atelier"
	cataloguc "github.com/stylegenie/matcher/internal/usecase/catalog"
	healthuc "github.com/stylegenie/matcher/internal/usecase/health"
	searchuc "github.com/stylegenie/matcher/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the StyleGenie SDK entry point.
type Client struct {
	store     db.Store
	search    *searchuc.Service
	match     *atelieruc.Service
	catalog   *cataloguc.Service
	healthSvc *healthuc.Service
	obs       *observer

	limits        request.Limits
	minSimilarity float64
}

// New creates a Client. Without a storage option the catalog lives in memory.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: db.DriverMemory}
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("stylegenie: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case db.DriverMemory:
		return dbMemory.NewStore(), nil
	case db.DriverRedis:
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, errors.New("stylegenie: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("stylegenie: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("stylegenie: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Repositories log through zap; the SDK surface reports through slog.
	nop := zap.NewNop()
	products := catalogrepo.NewProductRepo(store, nop)
	ateliers := catalogrepo.NewAtelierRepo(store, nop)

	var emb domain.Embedder = &noopEmbedder{}
	switch {
	case cfg.embedder != nil:
		emb = &embedderAdapter{inner: cfg.embedder}
	case cfg.placeholders:
		emb = placeholder.NewEmbedder(0)
	}

	var ext domain.FeatureExtractor = &noopExtractor{}
	switch {
	case cfg.extractor != nil:
		ext = cfg.extractor
	case cfg.placeholders:
		ext = placeholder.NewExtractor()
	}

	searchOpts := searchuc.Options{Workers: cfg.workers}
	if cfg.productWeights != nil {
		searchOpts.Weights = *cfg.productWeights
	}
	matchOpts := atelieruc.Options{Workers: cfg.workers}
	if cfg.atelierWeights != nil {
		matchOpts.Weights = *cfg.atelierWeights
	}

	minSim := ranking.DefaultMinSimilarity
	if cfg.minSimilarity != nil {
		minSim = *cfg.minSimilarity
	}

	return &Client{
		store:         store,
		search:        searchuc.New(products, emb, searchOpts),
		match:         atelieruc.New(ateliers, ext, matchOpts),
		catalog:       cataloguc.New(products, ateliers, emb),
		healthSvc:     healthuc.New("sdk", store),
		obs:           obs,
		limits:        cfg.limits.WithFallback(),
		minSimilarity: minSim,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// SearchProducts ranks catalog products by visual similarity to q.ImageURL.
func (c *Client) SearchProducts(ctx context.Context, q SearchQuery) (res ProductResults, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_products", start, err) }()

	minSim := c.minSimilarity
	if q.MinSimilarity != nil {
		minSim = *q.MinSimilarity
	}
	req, err := c.limits.NewProduct(q.ImageURL, q.MaxResults, minSim, q.Budget, q.Category)
	if err != nil {
		return ProductResults{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	out, err := c.search.Search(ctx, &req)
	if err != nil {
		return ProductResults{}, fmt.Errorf("search products: %w", err)
	}

	res = ProductResults{
		Items:        make([]ProductHit, len(out.Items)),
		TotalMatches: out.TotalMatches,
		QueryTime:    out.QueryTime,
	}
	for i, it := range out.Items {
		res.Items[i] = ProductHit{Product: it.Candidate, Similarity: it.Similarity, Score: it.Score}
	}
	for _, sk := range out.Skipped {
		res.Skipped = append(res.Skipped, sk.ID)
	}
	return res, nil
}

// MatchAteliers ranks ateliers able to make the design in q.ImageURL.
func (c *Client) MatchAteliers(ctx context.Context, q MatchQuery) (res AtelierResults, err error) {
	start := time.Now()
	defer func() { c.obs.observe("match_ateliers", start, err) }()

	req, err := c.limits.NewAtelier(q.ImageURL, q.MaxResults, q.Location, q.Budget)
	if err != nil {
		return AtelierResults{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m, err := c.match.Match(ctx, &req)
	if err != nil {
		return AtelierResults{}, fmt.Errorf("match ateliers: %w", err)
	}

	res = AtelierResults{
		Items:            make([]AtelierHit, len(m.Items)),
		TotalMatches:     m.TotalMatches,
		QueryTime:        m.QueryTime,
		Features:         m.Features,
		DesignComplexity: m.DesignComplexity,
	}
	for i, it := range m.Items {
		res.Items[i] = AtelierHit{Atelier: it.Candidate, Score: it.Score}
	}
	return res, nil
}

// Catalog returns the catalog management service.
func (c *Client) Catalog() *CatalogService {
	return &CatalogService{svc: c.catalog, obs: c.obs}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, imageURL string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, imageURL)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"stylegenie: embedder not configured (use WithEmbedder or WithPlaceholderProviders)",
	)
}

// noopExtractor returns an error on Extract call (used when no extractor configured).
type noopExtractor struct{}

func (noopExtractor) Extract(_ context.Context, _ string) (Features, error) {
	return Features{}, errors.New(
		"stylegenie: feature extractor not configured (use WithFeatureExtractor or WithPlaceholderProviders)",
	)
}
