package ranking

import (
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Scored is a candidate with its similarity and composite score.
type Scored[T any] struct {
	Candidate  T
	Similarity float64
	Score      float64
}

// Skipped records a candidate dropped because its data could not be scored.
type Skipped struct {
	ID     string
	Reason string
}

// Result is the ranked, size-bounded outcome of a ranking pass.
type Result[T any] struct {
	Items []Scored[T]
	// TotalMatches counts candidates that passed the gate, before truncation.
	TotalMatches int
	// Excluded counts candidates rejected by the gate or threshold.
	Excluded  int
	Skipped   []Skipped
	QueryTime time.Duration
}

// Outcome is the verdict of scoring one candidate.
type Outcome struct {
	Similarity float64
	Score      float64
	// Excluded drops the candidate from the result (hard gate or threshold).
	Excluded bool
}

// ScoreFunc scores one candidate. A non-nil error marks the candidate as malformed.
type ScoreFunc[T any] func(candidate *T) (Outcome, error)

// Pipeline scores, filters, sorts and truncates a candidate list.
type Pipeline[T any] struct {
	Score ScoreFunc[T]
	// ID names a candidate in Skipped entries.
	ID func(candidate *T) string
	// Workers > 1 scores candidates concurrently.
	Workers int
}

type verdict struct {
	out Outcome
	err error
}

// Rank runs the pipeline over candidates. maxResults <= 0 disables truncation.
// Equal scores keep their input order, so identical input yields identical output.
func (p Pipeline[T]) Rank(candidates []T, maxResults int) Result[T] {
	start := time.Now()

	verdicts := p.scoreAll(candidates)

	res := Result[T]{Items: make([]Scored[T], 0, len(candidates))}
	for i, v := range verdicts {
		if v.err != nil {
			res.Skipped = append(res.Skipped, Skipped{ID: p.id(&candidates[i]), Reason: v.err.Error()})
			continue
		}
		if v.out.Excluded {
			res.Excluded++
			continue
		}
		res.Items = append(res.Items, Scored[T]{
			Candidate:  candidates[i],
			Similarity: v.out.Similarity,
			Score:      v.out.Score,
		})
	}

	sort.SliceStable(res.Items, func(i, j int) bool {
		return res.Items[i].Score > res.Items[j].Score
	})

	res.TotalMatches = len(res.Items)
	if maxResults > 0 && len(res.Items) > maxResults {
		res.Items = res.Items[:maxResults]
	}

	res.QueryTime = time.Since(start)
	return res
}

// scoreAll returns one verdict per candidate, in input order.
func (p Pipeline[T]) scoreAll(candidates []T) []verdict {
	verdicts := make([]verdict, len(candidates))

	if p.Workers <= 1 || len(candidates) < 2 {
		for i := range candidates {
			verdicts[i].out, verdicts[i].err = p.Score(&candidates[i])
		}
		return verdicts
	}

	workers := min(p.Workers, len(candidates))
	chunk := (len(candidates) + workers - 1) / workers

	var eg errgroup.Group
	for lo := 0; lo < len(candidates); lo += chunk {
		hi := min(lo+chunk, len(candidates))
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				verdicts[i].out, verdicts[i].err = p.Score(&candidates[i])
			}
			return nil
		})
	}
	_ = eg.Wait() // workers never fail; errors are per-candidate verdicts

	return verdicts
}

func (p Pipeline[T]) id(c *T) string {
	if p.ID == nil {
		return ""
	}
	return p.ID(c)
}
