package ranking

import (
	"fmt"
	"math"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/product"
)

// ProductParams configures a product ranking pass.
type ProductParams struct {
	MinSimilarity float64
	Budget        *float64
	MaxResults    int
	Weights       ProductWeights
	Workers       int
}

// PriceAlignment rates how close price is to budget: 1 at the budget, falling
// linearly to 0 at a distance of one budget. Without a positive budget it is neutral.
func PriceAlignment(price float64, budget *float64) float64 {
	if budget == nil || *budget <= 0 {
		return NeutralPriceAlignment
	}
	return math.Max(0, 1-math.Abs(price-*budget)/(*budget))
}

// AvailabilityScore is 1 for items in stock and 0 otherwise.
func AvailabilityScore(available bool) float64 {
	if available {
		return 1
	}
	return 0
}

// ProductScore combines the product signals into a composite score.
func ProductScore(w ProductWeights, similarity, priceAlignment, brandScore float64, available bool) float64 {
	return w.Similarity*similarity +
		w.Price*priceAlignment +
		w.Brand*brandScore +
		w.Availability*AvailabilityScore(available)
}

// RankProducts orders products by composite score against the query embedding.
// Products whose raw similarity is below MinSimilarity are excluded before scoring.
func RankProducts(query []float32, candidates []product.Product, p ProductParams) Result[product.Product] {
	pipeline := Pipeline[product.Product]{
		Score: func(c *product.Product) (Outcome, error) {
			return scoreProduct(query, c, p)
		},
		ID:      func(c *product.Product) string { return c.ID },
		Workers: p.Workers,
	}
	return pipeline.Rank(candidates, p.MaxResults)
}

func scoreProduct(query []float32, c *product.Product, p ProductParams) (Outcome, error) {
	switch {
	case c.ID == "":
		return Outcome{}, fmt.Errorf("%w: missing id", domain.ErrMalformedCandidate)
	case len(c.Embedding) == 0:
		return Outcome{}, fmt.Errorf("%w: missing embedding", domain.ErrMalformedCandidate)
	case len(c.Embedding) != len(query):
		return Outcome{}, fmt.Errorf("%w: embedding has %d dimensions, query has %d",
			domain.ErrMalformedCandidate, len(c.Embedding), len(query))
	case math.IsNaN(c.Price) || math.IsInf(c.Price, 0):
		return Outcome{}, fmt.Errorf("%w: price is not a number", domain.ErrMalformedCandidate)
	}

	sim := Cosine(query, c.Embedding)
	if sim < p.MinSimilarity {
		return Outcome{Similarity: sim, Excluded: true}, nil
	}

	brand := DefaultBrandScore
	if c.BrandScore != nil {
		brand = *c.BrandScore
	}

	return Outcome{
		Similarity: sim,
		Score:      ProductScore(p.Weights, sim, PriceAlignment(c.Price, p.Budget), brand, c.Available),
	}, nil
}
