package embedding

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterProviderMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

type mockExtractor struct {
	features atelier.Features
	err      error
}

func (m *mockExtractor) Extract(_ context.Context, _ string) (atelier.Features, error) {
	return m.features, m.err
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := p.Embed(context.Background(), "https://cdn.example.com/a.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(result.Embedding))
	}
	if testutil.CollectAndCount(metrics.ProviderRequestDuration) == 0 {
		t.Error("expected provider duration to be observed")
	}
}

func TestInstrumentedEmbedder_ErrorKeepsSentinel(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrUpstreamUnavailable}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	_, err := p.Embed(context.Background(), "https://cdn.example.com/a.jpg")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestInstrumentedExtractor_Success(t *testing.T) {
	want := atelier.Features{Category: "dress", Complexity: atelier.High}
	p := NewInstrumentedExtractor(&mockExtractor{features: want}, "test", "test-model", zap.NewNop())

	got, err := p.Extract(context.Background(), "https://cdn.example.com/a.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category != want.Category || got.Complexity != want.Complexity {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestInstrumentedExtractor_Error(t *testing.T) {
	p := NewInstrumentedExtractor(&mockExtractor{err: domain.ErrUpstreamUnavailable}, "test", "m", zap.NewNop())

	if _, err := p.Extract(context.Background(), "x"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

type mockImageGenerator struct {
	url string
	err error
}

func (m *mockImageGenerator) Generate(_ context.Context, _ string, _ uint32) (string, error) {
	return m.url, m.err
}

func TestInstrumentedImageGenerator_Success(t *testing.T) {
	p := NewInstrumentedImageGenerator(&mockImageGenerator{url: "https://img/1.png"}, "test", "img-model", zap.NewNop())

	got, err := p.Generate(context.Background(), "red dress", 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img/1.png" {
		t.Errorf("unexpected URL %s", got)
	}
	if testutil.CollectAndCount(metrics.ProviderRequestDuration) == 0 {
		t.Error("expected provider duration to be observed")
	}
}

func TestInstrumentedImageGenerator_ErrorKeepsSentinel(t *testing.T) {
	p := NewInstrumentedImageGenerator(&mockImageGenerator{err: domain.ErrUpstreamUnavailable}, "test", "img-model", zap.NewNop())

	_, err := p.Generate(context.Background(), "red dress", 9)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
