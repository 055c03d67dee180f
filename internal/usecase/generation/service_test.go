package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stylegenie/matcher/internal/domain"
	domgen "github.com/stylegenie/matcher/internal/domain/generation"
	"github.com/stylegenie/matcher/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterGenerationMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockGenerator struct {
	mu      sync.Mutex
	prompts []string
	failOn  uint32
	fail    bool
	err     error
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, seed uint32) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.fail && seed == m.failOn {
		return "", m.err
	}
	return fmt.Sprintf("https://img.example.com/%d.png", seed), nil
}

func newRequest(t *testing.T, p domgen.Params) domgen.Request {
	t.Helper()
	req, err := domgen.NewRequest(p)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return req
}

// --- Tests ---

func TestGenerate(t *testing.T) {
	gen := &mockGenerator{}
	svc := New(gen, Options{Workers: 3})
	req := newRequest(t, domgen.Params{Prompt: "ivory lace gown", Kind: domgen.Dress, Occasion: "formal"})

	res, err := svc.Generate(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domgen.Enhance(&req)
	if res.PromptEnhanced != want {
		t.Errorf("expected enhanced prompt %q, got %q", want, res.PromptEnhanced)
	}
	if !strings.Contains(res.PromptEnhanced, "haute couture") {
		t.Errorf("expected occasion context in %q", res.PromptEnhanced)
	}
	if len(res.Images) != domgen.DefaultImages || len(res.Seeds) != domgen.DefaultImages {
		t.Fatalf("expected %d images and seeds, got %d and %d", domgen.DefaultImages, len(res.Images), len(res.Seeds))
	}
	for i, seed := range res.Seeds {
		if res.Images[i] != fmt.Sprintf("https://img.example.com/%d.png", seed) {
			t.Errorf("image %d does not match seed %d: %s", i, seed, res.Images[i])
		}
	}
	for _, p := range gen.prompts {
		if p != want {
			t.Errorf("provider got prompt %q, want the enhanced one", p)
		}
	}
	if res.GenerationTime <= 0 {
		t.Errorf("expected positive generation time, got %v", res.GenerationTime)
	}
}

func TestGenerate_SeedsAreReproducible(t *testing.T) {
	svc := New(&mockGenerator{}, Options{})
	req := newRequest(t, domgen.Params{Prompt: "tweed jacket", Kind: domgen.TotalLook, NumImages: 2})

	a, err := svc.Generate(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := svc.Generate(context.Background(), &req)
	if a.Seeds[0] != b.Seeds[0] || a.Seeds[1] != b.Seeds[1] {
		t.Errorf("expected identical seeds, got %v and %v", a.Seeds, b.Seeds)
	}
}

func TestGenerate_FixedSeed(t *testing.T) {
	seed := uint32(12345)
	svc := New(&mockGenerator{}, Options{Workers: 2})
	req := newRequest(t, domgen.Params{Prompt: "wrap dress", Kind: domgen.Dress, NumImages: 3, Seed: &seed})

	res, err := svc.Generate(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range res.Seeds {
		if s != seed {
			t.Errorf("seed %d = %d, want %d", i, s, seed)
		}
	}
}

func TestGenerate_ProviderFailureIsUpstream(t *testing.T) {
	req := newRequest(t, domgen.Params{Prompt: "wrap dress", Kind: domgen.Dress, NumImages: 2})
	seeds := domgen.Seeds(domgen.Enhance(&req), 2, nil)

	gen := &mockGenerator{fail: true, failOn: seeds[1], err: errors.New("model overloaded")}
	_, err := New(gen, Options{Workers: 2}).Generate(context.Background(), &req)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("expected provider error in %q", err)
	}
}

func TestGenerate_KeepsUpstreamWrapping(t *testing.T) {
	req := newRequest(t, domgen.Params{Prompt: "wrap dress", Kind: domgen.Dress, NumImages: 1})
	seeds := domgen.Seeds(domgen.Enhance(&req), 1, nil)

	gen := &mockGenerator{fail: true, failOn: seeds[0], err: fmt.Errorf("api: %w", domain.ErrUpstreamUnavailable)}
	_, err := New(gen, Options{}).Generate(context.Background(), &req)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if strings.Count(err.Error(), domain.ErrUpstreamUnavailable.Error()) != 1 {
		t.Errorf("upstream sentinel wrapped twice: %q", err)
	}
}
