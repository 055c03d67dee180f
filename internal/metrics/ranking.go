package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ranking pipeline names.
const (
	PipelineProducts = "products"
	PipelineAteliers = "ateliers"
)

var (
	RankingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Time spent scoring, sorting and truncating candidates",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"pipeline"},
	)

	RankingCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_candidates_total",
			Help:      "Candidates seen by the ranker, by outcome",
		},
		[]string{"pipeline", "outcome"}, // matched / excluded / skipped
	)
)

var registerRankingOnce sync.Once

// RegisterRankingMetrics registers ranking metrics. Safe to call more than once.
func RegisterRankingMetrics() {
	registerRankingOnce.Do(func() {
		prometheus.MustRegister(RankingDuration, RankingCandidatesTotal)
	})
}

// ObserveRanking records one ranking pass.
func ObserveRanking(pipeline string, elapsed time.Duration, matched, excluded, skipped int) {
	RankingDuration.WithLabelValues(pipeline).Observe(elapsed.Seconds())
	RankingCandidatesTotal.WithLabelValues(pipeline, "matched").Add(float64(matched))
	RankingCandidatesTotal.WithLabelValues(pipeline, "excluded").Add(float64(excluded))
	RankingCandidatesTotal.WithLabelValues(pipeline, "skipped").Add(float64(skipped))
}
