package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
	atelieruc "github.com/stylegenie/matcher/internal/usecase/atelier"
	healthuc "github.com/stylegenie/matcher/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// ProductSearcher ranks products against a query image.
type ProductSearcher interface {
	Search(ctx context.Context, req *request.Product) (ranking.Result[product.Product], error)
}

// AtelierMatcher ranks ateliers against a design image.
type AtelierMatcher interface {
	Match(ctx context.Context, req *request.Atelier) (atelieruc.Match, error)
}

// Catalog manages stored products and ateliers.
type Catalog interface {
	PutProduct(ctx context.Context, p *product.Product) error
	GetProduct(ctx context.Context, id string) (product.Product, error)
	ListProducts(ctx context.Context, f product.Filter, limit int) ([]product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	PutAtelier(ctx context.Context, a *atelier.Atelier) error
	GetAtelier(ctx context.Context, id string) (atelier.Atelier, error)
	ListAteliers(ctx context.Context, f atelier.Filter, limit int) ([]atelier.Atelier, error)
	DeleteAtelier(ctx context.Context, id string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search, matching and catalog API.
type Server struct {
	search        ProductSearcher
	match         AtelierMatcher
	catalog       Catalog
	health        HealthChecker
	logger        *zap.Logger
	defaults      RequestDefaults
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search ProductSearcher,
	match AtelierMatcher,
	catalog Catalog,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		match:    match,
		catalog:  catalog,
		health:   health,
		logger:   logger,
		defaults: DefaultRequestDefaults(),
	}
	s.errorHandlers = domainErrorHandlers()
	return s
}

// WithDefaults replaces the request defaults. Zero limits keep their
// production values.
func (s *Server) WithDefaults(d RequestDefaults) *Server {
	d.Limits = d.Limits.WithFallback()
	s.defaults = d
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search", s.SearchProducts)
	r.Post("/match", s.MatchAteliers)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/products", s.ListProducts)
		r.Put("/products/{id}", s.PutProduct)
		r.Get("/products/{id}", s.GetProduct)
		r.Delete("/products/{id}", s.DeleteProduct)

		r.Get("/ateliers", s.ListAteliers)
		r.Put("/ateliers/{id}", s.PutAtelier)
		r.Get("/ateliers/{id}", s.GetAtelier)
		r.Delete("/ateliers/{id}", s.DeleteAtelier)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchProducts handles POST /search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if err := validateLimit(body.MaxResults, s.defaults.Limits.Max); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	req, err := body.toDomain(s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(&res))
}

// MatchAteliers handles POST /match.
func (s *Server) MatchAteliers(w http.ResponseWriter, r *http.Request) {
	var body MatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if err := validateLimit(body.MaxResults, s.defaults.Limits.Max); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	req, err := body.toDomain(s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	m, err := s.match.Match(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse(&m))
}

// PutProduct handles PUT /catalog/products/{id}.
func (s *Server) PutProduct(w http.ResponseWriter, r *http.Request) {
	var body ProductBody
	if !decodeBody(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if body.ID != "" && body.ID != id {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "body id does not match path id")
		return
	}
	body.ID = id

	p := productFromBody(&body)
	if err := s.catalog.PutProduct(r.Context(), &p); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productToBody(&p))
}

// GetProduct handles GET /catalog/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToBody(&p))
}

// DeleteProduct handles DELETE /catalog/products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProducts handles GET /catalog/products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, ok := bindListParams(w, r, s.defaults.Limits.Max)
	if !ok {
		return
	}

	list, err := s.catalog.ListProducts(r.Context(), product.Filter{Category: params.category()}, params.limit())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]ProductBody, len(list))
	for i := range list {
		items[i] = productToBody(&list[i])
	}
	writeJSON(w, http.StatusOK, ListResponse[ProductBody]{Items: items, Total: len(items)})
}

// PutAtelier handles PUT /catalog/ateliers/{id}.
func (s *Server) PutAtelier(w http.ResponseWriter, r *http.Request) {
	var body AtelierBody
	if !decodeBody(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if body.ID != "" && body.ID != id {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "body id does not match path id")
		return
	}
	body.ID = id

	a := atelierFromBody(&body)
	if err := s.catalog.PutAtelier(r.Context(), &a); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, atelierToBody(&a))
}

// GetAtelier handles GET /catalog/ateliers/{id}.
func (s *Server) GetAtelier(w http.ResponseWriter, r *http.Request) {
	a, err := s.catalog.GetAtelier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, atelierToBody(&a))
}

// DeleteAtelier handles DELETE /catalog/ateliers/{id}.
func (s *Server) DeleteAtelier(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteAtelier(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAteliers handles GET /catalog/ateliers.
func (s *Server) ListAteliers(w http.ResponseWriter, r *http.Request) {
	params, ok := bindListParams(w, r, s.defaults.Limits.Max)
	if !ok {
		return
	}

	f := atelier.Filter{Category: params.category(), Location: params.location()}
	list, err := s.catalog.ListAteliers(r.Context(), f, params.limit())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]AtelierBody, len(list))
	for i := range list {
		items[i] = atelierToBody(&list[i])
	}
	writeJSON(w, http.StatusOK, ListResponse[AtelierBody]{Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, s.health.Check(r.Context()))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// listParams are the catalog listing query parameters.
type listParams struct {
	Category *string
	Location *string
	Limit    *int

	max int // applies when Limit is unset
}

func (p listParams) category() string { return deref(p.Category) }
func (p listParams) location() string { return deref(p.Location) }
func (p listParams) limit() int {
	if p.Limit == nil {
		return p.max
	}
	return *p.Limit
}

func bindListParams(w http.ResponseWriter, r *http.Request, maxLimit int) (listParams, bool) {
	p := listParams{max: maxLimit}
	q := r.URL.Query()
	for name, dest := range map[string]any{
		"category": &p.Category,
		"location": &p.Location,
		"limit":    &p.Limit,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid format for parameter %s", name))
			return listParams{}, false
		}
	}
	if p.Limit != nil && (*p.Limit <= 0 || *p.Limit > maxLimit) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", maxLimit))
		return listParams{}, false
	}
	return p, true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// decodeBody reads a JSON body into dst, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeHealth(w http.ResponseWriter, report healthuc.Report) {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:  string(report.Status),
		Service: report.Service,
		Checks:  checks,
	})
}

// WriteHealth writes a health report. Exported for the gateway binary.
func WriteHealth(w http.ResponseWriter, report healthuc.Report) { writeHealth(w, report) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// NotFound answers unrouted requests with a JSON 404.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
}

// MethodNotAllowed answers a known route with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Validation messages reach the client; other sentinels expose only their own text.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if errors.Is(sentinel, domain.ErrInvalidInput) {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func domainErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, CodeUpstreamUnavailable),
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	writeDomainError(w, r, s.logger, s.errorHandlers, err)
}

func writeDomainError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, handlers []errorHandler, err error) {
	log := logger.With(zap.String("path", r.URL.Path))
	for _, h := range handlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
