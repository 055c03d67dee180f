package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/metrics"
)

// InstallMiddleware applies the common middleware stack and JSON fallbacks to r.
// service labels the HTTP metrics.
func InstallMiddleware(r chi.Router, service string, logger *zap.Logger, cors CORSConfig) {
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(logger))
	r.Use(CORS(cors))
	r.Use(metrics.Middleware(service))
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
}

// NewRouter builds the matcher HTTP handler.
func NewRouter(s *Server, logger *zap.Logger, cors CORSConfig) http.Handler {
	r := chi.NewRouter()
	InstallMiddleware(r, domain.ServiceMatcher, logger, cors)
	s.Routes(r)
	return r
}
