package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time to produce every image of a generation request",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	GenerationImagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_images_total",
			Help:      "Images requested from the image provider, by outcome",
		},
		[]string{"outcome"}, // ok / error
	)
)

var registerGenerationOnce sync.Once

// RegisterGenerationMetrics registers image generation metrics. Safe to call more than once.
func RegisterGenerationMetrics() {
	registerGenerationOnce.Do(func() {
		prometheus.MustRegister(GenerationDuration, GenerationImagesTotal)
	})
}

// ObserveGeneration records one generation request.
func ObserveGeneration(elapsed time.Duration, ok, failed int) {
	GenerationDuration.Observe(elapsed.Seconds())
	GenerationImagesTotal.WithLabelValues("ok").Add(float64(ok))
	GenerationImagesTotal.WithLabelValues("error").Add(float64(failed))
}
