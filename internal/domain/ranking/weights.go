package ranking

import "fmt"

// Product score weights: score = α·similarity + β·price + γ·brand + δ·availability.
const (
	ProductSimilarityWeight   = 0.6 // α
	ProductPriceWeight        = 0.2 // β
	ProductBrandWeight        = 0.1 // γ
	ProductAvailabilityWeight = 0.1 // δ

	// NeutralPriceAlignment is used when the query carries no budget.
	NeutralPriceAlignment = 0.5
	// DefaultBrandScore is used when a product has no brand signal.
	DefaultBrandScore = 0.5
	// DefaultMinSimilarity is the search similarity gate when the request omits it.
	DefaultMinSimilarity = 0.7
)

// Atelier match weights.
const (
	AtelierCategoryWeight   = 0.4
	AtelierComplexityWeight = 0.3
	AtelierLocationWeight   = 0.2
	AtelierBudgetWeight     = 0.1
	AtelierRatingWeight     = 0.1

	// RatingPivot is the rating that contributes no boost.
	RatingPivot = 3.0
	// RatingSpan maps RatingPivot..5 onto 0..1 before weighting.
	RatingSpan = 2.0
	// MaxMatchScore caps the final atelier score.
	MaxMatchScore = 1.0
	// MinMatchScore is the exclusive inclusion threshold for atelier matches.
	MinMatchScore = 0.3
)

// ProductWeights tunes the product scorer.
type ProductWeights struct {
	Similarity   float64
	Price        float64
	Brand        float64
	Availability float64
}

// DefaultProductWeights returns the production product weights.
func DefaultProductWeights() ProductWeights {
	return ProductWeights{
		Similarity:   ProductSimilarityWeight,
		Price:        ProductPriceWeight,
		Brand:        ProductBrandWeight,
		Availability: ProductAvailabilityWeight,
	}
}

// Validate rejects negative weights.
func (w ProductWeights) Validate() error {
	for name, v := range map[string]float64{
		"similarity": w.Similarity, "price": w.Price,
		"brand": w.Brand, "availability": w.Availability,
	} {
		if v < 0 {
			return fmt.Errorf("product weight %s must be non-negative, got %v", name, v)
		}
	}
	return nil
}

// AtelierWeights tunes the atelier matcher.
type AtelierWeights struct {
	Category   float64
	Complexity float64
	Location   float64
	Budget     float64
	Rating     float64
	MinScore   float64
}

// DefaultAtelierWeights returns the production atelier weights.
func DefaultAtelierWeights() AtelierWeights {
	return AtelierWeights{
		Category:   AtelierCategoryWeight,
		Complexity: AtelierComplexityWeight,
		Location:   AtelierLocationWeight,
		Budget:     AtelierBudgetWeight,
		Rating:     AtelierRatingWeight,
		MinScore:   MinMatchScore,
	}
}

// Validate rejects negative weights and a threshold outside [0,1].
func (w AtelierWeights) Validate() error {
	for name, v := range map[string]float64{
		"category": w.Category, "complexity": w.Complexity, "location": w.Location,
		"budget": w.Budget, "rating": w.Rating,
	} {
		if v < 0 {
			return fmt.Errorf("atelier weight %s must be non-negative, got %v", name, v)
		}
	}
	if w.MinScore < 0 || w.MinScore > MaxMatchScore {
		return fmt.Errorf("atelier min score must be between 0 and %v, got %v", MaxMatchScore, w.MinScore)
	}
	return nil
}
