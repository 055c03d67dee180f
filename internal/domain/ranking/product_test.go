package ranking

import (
	"errors"
	"math"
	"testing"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/product"
)

func ptr(v float64) *float64 { return &v }

func TestPriceAlignment(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		budget *float64
		want   float64
	}{
		{"no budget", 1000, nil, NeutralPriceAlignment},
		{"zero budget", 1000, ptr(0), NeutralPriceAlignment},
		{"exact", 1000, ptr(1000), 1},
		{"half off", 1500, ptr(1000), 0.5},
		{"cheaper", 750, ptr(1000), 0.75},
		{"floored", 5000, ptr(1000), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PriceAlignment(tc.price, tc.budget); math.Abs(got-tc.want) > eps {
				t.Errorf("PriceAlignment(%v, %v) = %v, want %v", tc.price, tc.budget, got, tc.want)
			}
		})
	}
}

func TestProductScore_Example(t *testing.T) {
	got := ProductScore(DefaultProductWeights(), 0.9, PriceAlignment(1000, ptr(1000)), 0.5, true)
	if math.Abs(got-0.89) > eps {
		t.Errorf("expected 0.89, got %v", got)
	}
}

func TestProductScore_Unavailable(t *testing.T) {
	got := ProductScore(DefaultProductWeights(), 1, 1, 1, false)
	if math.Abs(got-0.9) > eps {
		t.Errorf("expected 0.9, got %v", got)
	}
}

func makeProduct(id string, price float64, emb ...float32) product.Product {
	return product.Product{ID: id, Name: id, Category: "dress", Price: price, Embedding: emb, Available: true}
}

func defaultProductParams() ProductParams {
	return ProductParams{MinSimilarity: 0.7, MaxResults: 20, Weights: DefaultProductWeights()}
}

func TestRankProducts_SortedAndBounded(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := []product.Product{
		makeProduct("far", 100, 0.8, 0.6, 0),
		makeProduct("exact", 100, 1, 0, 0),
		makeProduct("close", 100, 0.95, 0.1, 0),
		makeProduct("off", 100, 0, 1, 0),
	}
	p := defaultProductParams()
	p.MaxResults = 2

	res := RankProducts(query, candidates, p)

	if res.TotalMatches != 3 {
		t.Fatalf("expected 3 matches, got %d", res.TotalMatches)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	if res.Items[0].Candidate.ID != "exact" || res.Items[1].Candidate.ID != "close" {
		t.Errorf("unexpected order: %s, %s", res.Items[0].Candidate.ID, res.Items[1].Candidate.ID)
	}
	if res.Excluded != 1 {
		t.Errorf("expected 1 excluded, got %d", res.Excluded)
	}
	for i := 1; i < len(res.Items); i++ {
		if res.Items[i].Score > res.Items[i-1].Score {
			t.Errorf("items not sorted at %d", i)
		}
	}
}

func TestRankProducts_GateIsOnRawSimilarity(t *testing.T) {
	// similarity 0.6 with a perfect price and availability still fails a 0.7 gate
	query := []float32{1, 0}
	c := makeProduct("p", 1000, 0.6, 0.8)
	p := defaultProductParams()
	p.Budget = ptr(1000)

	res := RankProducts(query, []product.Product{c}, p)
	if res.TotalMatches != 0 || len(res.Items) != 0 {
		t.Fatalf("expected candidate to be gated out, got %+v", res.Items)
	}
}

func TestRankProducts_GateIsInclusive(t *testing.T) {
	query := []float32{1, 0}
	c := makeProduct("p", 100, 1, 0)
	p := defaultProductParams()
	p.MinSimilarity = 1

	res := RankProducts(query, []product.Product{c}, p)
	if res.TotalMatches != 1 {
		t.Fatalf("expected similarity == threshold to pass, got %d matches", res.TotalMatches)
	}
}

func TestRankProducts_TiesKeepInputOrder(t *testing.T) {
	query := []float32{1, 1}
	candidates := []product.Product{
		makeProduct("a", 100, 1, 1),
		makeProduct("b", 100, 1, 1),
		makeProduct("c", 100, 1, 1),
	}
	res := RankProducts(query, candidates, defaultProductParams())

	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(res.Items))
	}
	for i, id := range []string{"a", "b", "c"} {
		if res.Items[i].Candidate.ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, res.Items[i].Candidate.ID)
		}
	}
}

func TestRankProducts_BrandScoreOverride(t *testing.T) {
	query := []float32{1, 0}
	low := makeProduct("low", 100, 1, 0)
	low.BrandScore = ptr(0)
	high := makeProduct("high", 100, 1, 0)
	high.BrandScore = ptr(1)

	res := RankProducts(query, []product.Product{low, high}, defaultProductParams())
	if res.Items[0].Candidate.ID != "high" {
		t.Errorf("expected high brand score first, got %s", res.Items[0].Candidate.ID)
	}
	if diff := res.Items[0].Score - res.Items[1].Score; math.Abs(diff-0.1) > eps {
		t.Errorf("expected brand weight difference 0.1, got %v", diff)
	}
}

func TestRankProducts_MalformedSkipped(t *testing.T) {
	query := []float32{1, 0}
	candidates := []product.Product{
		makeProduct("", 100, 1, 0),
		makeProduct("noemb", 100),
		makeProduct("dims", 100, 1, 0, 0),
		makeProduct("nan", math.NaN(), 1, 0),
		makeProduct("ok", 100, 1, 0),
	}
	res := RankProducts(query, candidates, defaultProductParams())

	if len(res.Items) != 1 || res.Items[0].Candidate.ID != "ok" {
		t.Fatalf("expected only ok, got %+v", res.Items)
	}
	if len(res.Skipped) != 4 {
		t.Fatalf("expected 4 skipped, got %d", len(res.Skipped))
	}
	if res.Skipped[1].ID != "noemb" {
		t.Errorf("expected skipped id noemb, got %q", res.Skipped[1].ID)
	}
}

func TestScoreProduct_MalformedError(t *testing.T) {
	c := makeProduct("x", 100)
	_, err := scoreProduct([]float32{1}, &c, defaultProductParams())
	if !errors.Is(err, domain.ErrMalformedCandidate) {
		t.Errorf("expected ErrMalformedCandidate, got %v", err)
	}
}

func TestRankProducts_Empty(t *testing.T) {
	res := RankProducts([]float32{1}, nil, defaultProductParams())
	if res.TotalMatches != 0 || len(res.Items) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestRankProducts_Idempotent(t *testing.T) {
	query := []float32{0.2, 0.9, 0.4}
	candidates := []product.Product{
		makeProduct("a", 900, 0.2, 0.8, 0.5),
		makeProduct("b", 1200, 0.1, 0.9, 0.4),
		makeProduct("c", 1000, 0.2, 0.9, 0.4),
		makeProduct("d", 1000, 0.2, 0.9, 0.4),
	}
	p := defaultProductParams()
	p.Budget = ptr(1000)

	first := RankProducts(query, candidates, p)
	second := RankProducts(query, candidates, p)

	if len(first.Items) != len(second.Items) {
		t.Fatalf("length differs: %d vs %d", len(first.Items), len(second.Items))
	}
	for i := range first.Items {
		if first.Items[i].Candidate.ID != second.Items[i].Candidate.ID ||
			first.Items[i].Score != second.Items[i].Score {
			t.Errorf("position %d differs", i)
		}
	}
}
