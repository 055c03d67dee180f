package ranking

import (
	"fmt"
	"math"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
)

// AtelierParams configures an atelier matching pass.
type AtelierParams struct {
	Location   string
	Budget     *float64
	MaxResults int
	Weights    AtelierWeights
	Workers    int
}

// RatingBoost maps a rating onto the boost weight: RatingPivot gives 0,
// a perfect 5 gives the full weight, lower ratings go negative.
func RatingBoost(rating, weight float64) float64 {
	return (rating - RatingPivot) / RatingSpan * weight
}

// MatchAtelier scores an atelier against design features.
// It returns false when the atelier does not work in the design's category.
func MatchAtelier(
	f atelier.Features, a *atelier.Atelier, location string, budget *float64, w AtelierWeights,
) (float64, bool) {
	if !a.Makes(f.Category) {
		return 0, false
	}
	score := w.Category

	complexity := f.Complexity
	if complexity == "" {
		complexity = atelier.Medium
	}
	if a.Supports(complexity) {
		score += w.Complexity
	}

	if location != "" && a.ServesLocation(location) {
		score += w.Location
	}

	// Price ranges are free text; any stated budget earns the flat bonus.
	if budget != nil && *budget > 0 {
		score += w.Budget
	}

	score += RatingBoost(a.Rating, w.Rating)

	return math.Min(MaxMatchScore, score), true
}

// RankAteliers orders ateliers by match score. Ateliers outside the design's
// category, or scoring at or below the weights' MinScore, are excluded.
func RankAteliers(f atelier.Features, candidates []atelier.Atelier, p AtelierParams) Result[atelier.Atelier] {
	pipeline := Pipeline[atelier.Atelier]{
		Score: func(c *atelier.Atelier) (Outcome, error) {
			if c.ID == "" {
				return Outcome{}, fmt.Errorf("%w: missing id", domain.ErrMalformedCandidate)
			}
			if math.IsNaN(c.Rating) || math.IsInf(c.Rating, 0) {
				return Outcome{}, fmt.Errorf("%w: rating is not a number", domain.ErrMalformedCandidate)
			}
			score, ok := MatchAtelier(f, c, p.Location, p.Budget, p.Weights)
			if !ok || score <= p.Weights.MinScore {
				return Outcome{Score: score, Excluded: true}, nil
			}
			return Outcome{Similarity: score, Score: score}, nil
		},
		ID:      func(c *atelier.Atelier) string { return c.ID },
		Workers: p.Workers,
	}
	return pipeline.Rank(candidates, p.MaxResults)
}
