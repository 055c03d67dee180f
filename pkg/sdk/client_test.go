package stylegenie

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/stylegenie/matcher/internal/db"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
)

// --- Mocks ---

type mapEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mapEmbedder) Embed(_ context.Context, imageURL string) (EmbeddingResult, error) {
	if m.err != nil {
		return EmbeddingResult{}, m.err
	}
	v, ok := m.vectors[imageURL]
	if !ok {
		return EmbeddingResult{}, errors.New("unknown image")
	}
	return EmbeddingResult{Embedding: v, TotalTokens: 1}, nil
}

type fixedExtractor struct {
	f Features
}

func (x *fixedExtractor) Extract(_ context.Context, _ string) (Features, error) { return x.f, nil }

// --- Helpers ---

func f64(v float64) *float64 { return &v }

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithMemory()}, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func dressFeatures() Features {
	return Features{
		Category:           "dress",
		Complexity:         ComplexityMedium,
		Fabric:             "satin",
		DecorativeElements: []string{"embroidery", "beading"},
	}
}

// --- Tests ---

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
	if c.store.Driver() != db.DriverMemory {
		t.Errorf("expected memory driver, got %s", c.store.Driver())
	}
	if h := c.Health(context.Background()); h.Status != "healthy" || h.Checks["database"] != "ok" {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestNew_RedisWithoutAddress(t *testing.T) {
	if _, err := New(context.Background(), WithRedis("", "")); err == nil {
		t.Fatal("expected error when redis address is empty")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown"}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSearchProducts_ScoresAndFilters(t *testing.T) {
	emb := &mapEmbedder{vectors: map[string][]float32{
		"https://q/query.jpg": {1, 0},
		"https://img/p1.jpg":  {0.9, float32(math.Sqrt(0.19))},
		"https://img/p2.jpg":  {0, 1},
	}}
	c := newTestClient(t, WithEmbedder(emb))
	ctx := context.Background()

	for _, p := range []Product{
		{ID: "p1", Name: "Платье", Category: "dress", Price: 1000, Image: "https://img/p1.jpg",
			URL: "https://shop/p1", Available: true, BrandScore: f64(0.5)},
		{ID: "p2", Name: "Костюм", Category: "suit", Price: 1000, Image: "https://img/p2.jpg",
			URL: "https://shop/p2", Available: true},
	} {
		if err := c.Catalog().PutProduct(ctx, &p); err != nil {
			t.Fatalf("put %s: %v", p.ID, err)
		}
	}

	res, err := c.SearchProducts(ctx, SearchQuery{ImageURL: "https://q/query.jpg", Budget: f64(1000)})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.TotalMatches != 1 || len(res.Items) != 1 {
		t.Fatalf("expected one match, got %+v", res)
	}
	hit := res.Items[0]
	if hit.Product.ID != "p1" {
		t.Errorf("expected p1, got %s", hit.Product.ID)
	}
	if math.Abs(hit.Score-0.89) > 1e-5 {
		t.Errorf("expected score 0.89, got %v", hit.Score)
	}
	if math.Abs(hit.Similarity-0.9) > 1e-5 {
		t.Errorf("expected similarity 0.9, got %v", hit.Similarity)
	}
}

func TestSearchProducts_InvalidQuery(t *testing.T) {
	c := newTestClient(t, WithPlaceholderProviders())

	_, err := c.SearchProducts(context.Background(), SearchQuery{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearchProducts_EmbedderFailureIsUpstream(t *testing.T) {
	c := newTestClient(t, WithEmbedder(&mapEmbedder{err: errors.New("provider down")}))

	_, err := c.SearchProducts(context.Background(), SearchQuery{ImageURL: "https://q/query.jpg"})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestSearchProducts_NoEmbedderConfigured(t *testing.T) {
	c := newTestClient(t)

	_, err := c.SearchProducts(context.Background(), SearchQuery{ImageURL: "https://q/query.jpg"})
	if err == nil || !strings.Contains(err.Error(), "embedder not configured") {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func TestMatchAteliers(t *testing.T) {
	c := newTestClient(t, WithFeatureExtractor(&fixedExtractor{f: dressFeatures()}))
	ctx := context.Background()

	for _, a := range []Atelier{
		{ID: "a1", Name: "Atelier Elegance", Location: "Москва", Rating: 4.0, Categories: []string{"dress"}},
		{ID: "a2", Name: "Suit Masters", Location: "Москва", Rating: 5.0, Categories: []string{"suit"}},
	} {
		if err := c.Catalog().PutAtelier(ctx, &a); err != nil {
			t.Fatalf("put %s: %v", a.ID, err)
		}
	}

	res, err := c.MatchAteliers(ctx, MatchQuery{ImageURL: "https://img/design.jpg", Location: "москва"})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Atelier.ID != "a1" {
		t.Fatalf("expected only a1, got %+v", res.Items)
	}
	// 0.4 category + 0.3 complexity + 0.2 location + (4-3)/2*0.1 rating
	if math.Abs(res.Items[0].Score-0.95) > 1e-9 {
		t.Errorf("expected score 0.95, got %v", res.Items[0].Score)
	}
	if math.Abs(res.DesignComplexity-0.8) > 1e-9 {
		t.Errorf("expected design complexity 0.8, got %v", res.DesignComplexity)
	}
	if res.Features.Category != "dress" {
		t.Errorf("expected features echoed, got %+v", res.Features)
	}
}

func TestMatchAteliers_Placeholders(t *testing.T) {
	c := newTestClient(t, WithPlaceholderProviders())
	ctx := context.Background()

	a := Atelier{ID: "a1", Name: "Atelier", Location: "Санкт-Петербург", Rating: 3, Categories: []string{"dress"}}
	if err := c.Catalog().PutAtelier(ctx, &a); err != nil {
		t.Fatalf("put: %v", err)
	}

	res, err := c.MatchAteliers(ctx, MatchQuery{ImageURL: "https://img/design.jpg"})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TotalMatches != 1 {
		t.Errorf("expected placeholder dress features to match, got %+v", res)
	}
}

func TestCatalog_RoundTrip(t *testing.T) {
	c := newTestClient(t, WithPlaceholderProviders())
	ctx := context.Background()
	cat := c.Catalog()

	p := Product{ID: "p1", Name: "Платье", Category: "dress", Price: 100,
		Image: "https://img/p1.jpg", URL: "https://shop/p1", Available: true}
	if err := cat.PutProduct(ctx, &p); err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(p.Embedding) == 0 {
		t.Error("expected embedding filled in from the image")
	}

	got, err := cat.GetProduct(ctx, "p1")
	if err != nil || got.Name != "Платье" {
		t.Fatalf("get: %v %+v", err, got)
	}

	list, err := cat.ListProducts(ctx, "dress", 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}

	if err := cat.DeleteProduct(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cat.GetProduct(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := cat.PutAtelier(ctx, &Atelier{ID: "bad id"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestObserver_MetricsAndLogging(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := newTestClient(t, WithPrometheus(reg), WithLogger(logger))
	ctx := context.Background()

	_ = c.Ping(ctx)
	_, _ = c.Catalog().GetProduct(ctx, "missing")
	_, _ = c.SearchProducts(ctx, SearchQuery{})

	m, err := newSDKMetrics(reg) // reuses the registered collectors
	if err != nil {
		t.Fatalf("reuse metrics: %v", err)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("ping", "ok")); got != 1 {
		t.Errorf("expected 1 ok ping, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("get_product", outcomeNotFound)); got != 1 {
		t.Errorf("expected 1 not_found get_product, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("search_products", outcomeInvalid)); got != 1 {
		t.Errorf("expected 1 invalid search_products, got %v", got)
	}
	if !strings.Contains(buf.String(), "operation rejected") {
		t.Errorf("expected rejection log, got %q", buf.String())
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, outcomeOK},
		{fmt.Errorf("search: %w", ErrInvalidInput), outcomeInvalid},
		{fmt.Errorf("get: %w", ErrNotFound), outcomeNotFound},
		{fmt.Errorf("embed: %w: timeout", ErrUpstreamUnavailable), outcomeUnavailable},
		{errors.New("boom"), outcomeError},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("outcome(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("noop", time.Now(), nil)
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	for _, o := range []Option{
		WithRedis("localhost:6379", "secret"),
		WithWorkers(4),
		WithProductWeights(func(w *ProductWeights) { w.Similarity = 0.5 }),
		WithAtelierWeights(func(w *AtelierWeights) { w.MinScore = 0.4 }),
		WithPlaceholderProviders(),
	} {
		o.apply(cfg)
	}

	if cfg.driver != db.DriverRedis || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("unexpected store options %+v", cfg)
	}
	if cfg.workers != 4 || !cfg.placeholders {
		t.Errorf("unexpected options %+v", cfg)
	}
	if cfg.productWeights == nil || cfg.productWeights.Similarity != 0.5 {
		t.Errorf("unexpected product weights %+v", cfg.productWeights)
	}
	if cfg.atelierWeights == nil || cfg.atelierWeights.MinScore != 0.4 {
		t.Errorf("unexpected atelier weights %+v", cfg.atelierWeights)
	}

	WithMemory().apply(cfg)
	if cfg.driver != db.DriverMemory || cfg.addrs != nil {
		t.Errorf("WithMemory should reset the store, got %+v", cfg)
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	adapter := &embedderAdapter{inner: &mapEmbedder{err: errors.New("provider down")}}
	if _, err := adapter.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestWeightOptions_PartialOverrideKeepsDefaults(t *testing.T) {
	cfg := &clientConfig{}
	WithAtelierWeights(func(w *AtelierWeights) { w.Location = 0.25 }).apply(cfg)
	WithProductWeights(func(w *ProductWeights) { w.Brand = 0.05 }).apply(cfg)
	WithProductWeights(func(w *ProductWeights) { w.Price = 0.3 }).apply(cfg)

	wantAtelier := ranking.DefaultAtelierWeights()
	wantAtelier.Location = 0.25
	if *cfg.atelierWeights != wantAtelier {
		t.Errorf("atelier weights = %+v, want %+v", *cfg.atelierWeights, wantAtelier)
	}
	if cfg.atelierWeights.MinScore != ranking.MinMatchScore {
		t.Errorf("expected min score %v to survive, got %v", ranking.MinMatchScore, cfg.atelierWeights.MinScore)
	}

	wantProduct := ranking.DefaultProductWeights()
	wantProduct.Brand = 0.05
	wantProduct.Price = 0.3
	if *cfg.productWeights != wantProduct {
		t.Errorf("product weights = %+v, want %+v", *cfg.productWeights, wantProduct)
	}
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"negative weight", WithProductWeights(func(w *ProductWeights) { w.Price = -1 })},
		{"min score above one", WithAtelierWeights(func(w *AtelierWeights) { w.MinScore = 2 })},
		{"min similarity", WithMinSimilarity(1.5)},
		{"default above max", WithResultLimits(50, 0, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.opt)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestNew_RequestDefaults(t *testing.T) {
	c := newTestClient(t)
	if c.minSimilarity != ranking.DefaultMinSimilarity {
		t.Errorf("expected default min similarity %v, got %v", ranking.DefaultMinSimilarity, c.minSimilarity)
	}
	if c.limits != request.DefaultLimits() {
		t.Errorf("expected default limits, got %+v", c.limits)
	}

	c = newTestClient(t, WithMinSimilarity(0.2), WithResultLimits(4, 0, 6))
	if c.minSimilarity != 0.2 {
		t.Errorf("expected min similarity 0.2, got %v", c.minSimilarity)
	}
	want := request.Limits{DefaultProduct: 4, DefaultAtelier: 6, Max: 6}
	if c.limits != want {
		t.Errorf("limits = %+v, want %+v", c.limits, want)
	}
}
