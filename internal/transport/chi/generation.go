package chi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/domain"
	domgen "github.com/stylegenie/matcher/internal/domain/generation"
	generationuc "github.com/stylegenie/matcher/internal/usecase/generation"
)

// ImageGenerator renders images for a generation request.
type ImageGenerator interface {
	Generate(ctx context.Context, req *domgen.Request) (generationuc.Result, error)
}

// GenerateRequest is the POST /generate body.
type GenerateRequest struct {
	Prompt       string  `json:"prompt"`
	Type         string  `json:"type"` // dress | total_look
	Occasion     string  `json:"occasion,omitempty"`
	ColorPalette string  `json:"colorPalette,omitempty"`
	Silhouette   string  `json:"silhouette,omitempty"`
	Budget       string  `json:"budget,omitempty"`
	BodyType     string  `json:"bodyType,omitempty"`
	NumImages    *int    `json:"num_images,omitempty"`
	Seed         *uint32 `json:"seed,omitempty"`
}

// GenerateResponse is the POST /generate reply. Seeds[i] produced Images[i].
type GenerateResponse struct {
	Images         []string `json:"images"`
	Seeds          []uint32 `json:"seeds"`
	PromptEnhanced string   `json:"prompt_enhanced"`
	GenerationTime float64  `json:"generation_time"`
}

func (r *GenerateRequest) toDomain() (domgen.Request, error) {
	n := domgen.DefaultImages
	if r.NumImages != nil {
		if *r.NumImages < 1 {
			return domgen.Request{}, fmt.Errorf("num_images must be between 1 and %d", domgen.MaxImages)
		}
		n = *r.NumImages
	}
	return domgen.NewRequest(domgen.Params{
		Prompt:       r.Prompt,
		Kind:         domgen.Kind(r.Type),
		Occasion:     r.Occasion,
		ColorPalette: r.ColorPalette,
		Silhouette:   r.Silhouette,
		Budget:       r.Budget,
		BodyType:     r.BodyType,
		NumImages:    n,
		Seed:         r.Seed,
	})
}

// GenerationServer serves the image generation API.
type GenerationServer struct {
	gen           ImageGenerator
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewGenerationServer creates the image generation HTTP server.
func NewGenerationServer(gen ImageGenerator, health HealthChecker, logger *zap.Logger) *GenerationServer {
	return &GenerationServer{
		gen:           gen,
		health:        health,
		logger:        logger,
		errorHandlers: domainErrorHandlers(),
	}
}

// Routes registers the API on r.
func (s *GenerationServer) Routes(r chi.Router) {
	r.Post("/generate", s.Generate)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, s.health.Check(r.Context()))
	})
	r.Handle("/metrics", promhttp.Handler())
}

// Generate handles POST /generate.
func (s *GenerationServer) Generate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	res, err := s.gen.Generate(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, s.logger, s.errorHandlers, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Images:         res.Images,
		Seeds:          res.Seeds,
		PromptEnhanced: res.PromptEnhanced,
		GenerationTime: res.GenerationTime.Seconds(),
	})
}

// NewGenerationRouter builds the image generation HTTP handler.
func NewGenerationRouter(s *GenerationServer, logger *zap.Logger, cors CORSConfig) http.Handler {
	r := chi.NewRouter()
	InstallMiddleware(r, domain.ServiceGenerator, logger, cors)
	s.Routes(r)
	return r
}
