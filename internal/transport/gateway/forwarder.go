// Package gateway forwards public API calls to the internal services.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/logger"
	"github.com/stylegenie/matcher/internal/metrics"
	"github.com/stylegenie/matcher/internal/version"
)

const (
	maxBodyBytes = 1 << 20
	// maxLoggedPrompt bounds the prompt prefix written to logs.
	maxLoggedPrompt = 50
)

// Upstream service names, used in metrics labels and error details.
const (
	ServiceSearch     = "search"
	ServiceMatching   = "matching"
	ServiceGeneration = "generation"
)

var errUpstreamStatus = errors.New("upstream returned non-2xx status")

// Route maps a public path onto an upstream endpoint.
type Route struct {
	Path     string // public path, e.g. /api/v1/search
	Service  string
	Label    string // human name used in the 503 detail
	Upstream string // full upstream URL
	Timeout  time.Duration
	// Describe adds request-specific log fields. Optional.
	Describe func(body []byte) []zap.Field
}

// Config holds upstream locations and timeouts.
type Config struct {
	SearchURL         string
	MatchingURL       string
	GenerationURL     string
	Timeout           time.Duration
	GenerationTimeout time.Duration
	// Client overrides the HTTP client. Optional.
	Client *http.Client
}

// Forwarder relays JSON POST bodies to upstream services.
type Forwarder struct {
	client *http.Client
	routes []Route
	logger *zap.Logger
}

// New creates a Forwarder with the three StyleGenie routes.
func New(cfg Config, logger *zap.Logger) *Forwarder {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &Forwarder{
		client: client,
		logger: logger,
		routes: []Route{
			{
				Path:     "/api/v1/search",
				Service:  ServiceSearch,
				Label:    "Search engine",
				Upstream: joinURL(cfg.SearchURL, "/search"),
				Timeout:  cfg.Timeout,
			},
			{
				Path:     "/api/v1/ateliers",
				Service:  ServiceMatching,
				Label:    "Atelier matching",
				Upstream: joinURL(cfg.MatchingURL, "/match"),
				Timeout:  cfg.Timeout,
			},
			{
				Path:     "/api/v1/generate",
				Service:  ServiceGeneration,
				Label:    "Image generation",
				Upstream: joinURL(cfg.GenerationURL, "/generate"),
				Timeout:  cfg.GenerationTimeout,
				Describe: describePrompt,
			},
		},
	}
}

// Routes registers every forwarding route on r.
func (f *Forwarder) Routes(r chi.Router) {
	for _, rt := range f.routes {
		r.Post(rt.Path, f.Handler(rt))
	}
}

// Handler returns the handler forwarding to rt.
func (f *Forwarder) Handler(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, log := logger.With(r.Context(), zap.String("service", rt.Service))

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil || !json.Valid(body) {
			writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		fields := []zap.Field{zap.String("upstream", rt.Upstream)}
		if rt.Describe != nil {
			fields = append(fields, rt.Describe(body)...)
		}
		log.Info("Forwarding request", fields...)

		start := time.Now()
		resp, err := f.forward(ctx, rt, body)
		metrics.UpstreamRequestDuration.WithLabelValues(rt.Service).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(rt.Service, "unavailable").Inc()
			log.Error("Upstream service error", zap.Error(err))
			writeDetail(w, http.StatusServiceUnavailable, rt.Label+" service unavailable")
			return
		}

		if !json.Valid(resp) {
			metrics.UpstreamRequestsTotal.WithLabelValues(rt.Service, "invalid_response").Inc()
			log.Error("Upstream returned invalid JSON", zap.Int("bytes", len(resp)))
			writeDetail(w, http.StatusInternalServerError, "invalid upstream response")
			return
		}

		metrics.UpstreamRequestsTotal.WithLabelValues(rt.Service, "ok").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp)
	}
}

func (f *Forwarder) forward(ctx context.Context, rt Route, body []byte) ([]byte, error) {
	if rt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rt.Upstream, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent("gateway"))
	if id := chiMiddleware.GetReqID(ctx); id != "" {
		req.Header.Set(chiMiddleware.RequestIDHeader, id)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", rt.Upstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", errUpstreamStatus, resp.StatusCode)
	}
	return data, nil
}

// detailResponse mirrors the public error shape of the gateway.
type detailResponse struct {
	Detail string `json:"detail"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(detailResponse{Detail: detail})
}

func describePrompt(body []byte) []zap.Field {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil
	}
	prompt := []rune(req.Prompt)
	if len(prompt) > maxLoggedPrompt {
		prompt = prompt[:maxLoggedPrompt]
	}
	return []zap.Field{zap.String("prompt", string(prompt))}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
