package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_upstream_requests_total",
			Help:      "Requests forwarded by the gateway, by upstream service and result",
		},
		[]string{"service", "result"}, // ok / unavailable / invalid_response
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_upstream_duration_seconds",
			Help:      "Upstream round-trip duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
)

var registerGatewayOnce sync.Once

// RegisterGatewayMetrics registers gateway forwarding metrics. Safe to call more than once.
func RegisterGatewayMetrics() {
	registerGatewayOnce.Do(func() {
		prometheus.MustRegister(UpstreamRequestsTotal, UpstreamRequestDuration)
	})
}
