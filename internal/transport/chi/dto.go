package chi

import (
	"fmt"

	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
	atelieruc "github.com/stylegenie/matcher/internal/usecase/atelier"
)

// RequestDefaults fills parameters a request omits and bounds its limits.
type RequestDefaults struct {
	Limits        request.Limits
	MinSimilarity float64
}

// DefaultRequestDefaults returns the production request defaults.
func DefaultRequestDefaults() RequestDefaults {
	return RequestDefaults{
		Limits:        request.DefaultLimits(),
		MinSimilarity: ranking.DefaultMinSimilarity,
	}
}

// ErrorCode is a machine-readable error kind.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeNotFound            ErrorCode = "not_found"
	CodeForbidden           ErrorCode = "forbidden"
	CodeMethodNotAllowed    ErrorCode = "method_not_allowed"
	CodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	ImageURL      string   `json:"imageUrl"`
	MaxResults    *int     `json:"max_results,omitempty"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
	BudgetFilter  *float64 `json:"budget_filter,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// SearchProduct is one ranked product.
type SearchProduct struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	Image        string   `json:"image"`
	URL          string   `json:"url"`
	Brand        string   `json:"brand,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Similarity   float64  `json:"similarity"`
	Score        float64  `json:"score"`
	Availability bool     `json:"availability"`
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Products     []SearchProduct `json:"products"`
	QueryTime    float64         `json:"query_time"` // seconds
	TotalMatches int             `json:"total_matches"`
}

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	ImageURL   string   `json:"imageUrl"`
	Location   string   `json:"location,omitempty"`
	Budget     *float64 `json:"budget,omitempty"`
	MaxResults *int     `json:"max_results,omitempty"`
}

// Contact is the wire form of atelier contact details.
type Contact struct {
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Website   string `json:"website,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// MatchedAtelier is one ranked atelier.
type MatchedAtelier struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	Specialization  []string `json:"specialization"`
	PriceRange      string   `json:"priceRange"`
	Rating          float64  `json:"rating"`
	PortfolioImages []string `json:"portfolioImages"`
	Contact         *Contact `json:"contact,omitempty"`
	MatchScore      float64  `json:"matchScore"`
}

// MatchResponse is the body returned by POST /match.
type MatchResponse struct {
	Ateliers         []MatchedAtelier `json:"ateliers"`
	QueryTime        float64          `json:"query_time"` // seconds
	TotalMatches     int              `json:"total_matches"`
	DesignComplexity float64          `json:"design_complexity"`
}

// ProductBody is the catalog representation of a product.
type ProductBody struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Image        string    `json:"image"`
	URL          string    `json:"url"`
	Brand        string    `json:"brand,omitempty"`
	Rating       *float64  `json:"rating,omitempty"`
	Availability *bool     `json:"availability,omitempty"`
	BrandScore   *float64  `json:"brand_score,omitempty"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// AtelierBody is the catalog representation of an atelier.
type AtelierBody struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	Specialization  []string `json:"specialization"`
	PriceRange      string   `json:"priceRange"`
	Rating          float64  `json:"rating"`
	PortfolioImages []string `json:"portfolioImages"`
	Contact         *Contact `json:"contact,omitempty"`
	ComplexityRange []string `json:"complexity_range,omitempty"`
	Categories      []string `json:"categories"`
}

// ListResponse wraps a catalog listing.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (r *SearchRequest) toDomain(d RequestDefaults) (request.Product, error) {
	minSim := d.MinSimilarity
	if r.MinSimilarity != nil {
		minSim = *r.MinSimilarity
	}
	req, err := d.Limits.NewProduct(r.ImageURL, limitOrZero(r.MaxResults), minSim, r.BudgetFilter, r.Category)
	if err != nil {
		return request.Product{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func (r *MatchRequest) toDomain(d RequestDefaults) (request.Atelier, error) {
	req, err := d.Limits.NewAtelier(r.ImageURL, limitOrZero(r.MaxResults), r.Location, r.Budget)
	if err != nil {
		return request.Atelier{}, fmt.Errorf("build match request: %w", err)
	}
	return req, nil
}

// limitOrZero maps an omitted limit to zero, which selects the default.
func limitOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func validateLimit(p *int, maxLimit int) error {
	if p != nil && (*p <= 0 || *p > maxLimit) {
		return fmt.Errorf("max_results must be between 1 and %d", maxLimit)
	}
	return nil
}

func searchResponse(res *ranking.Result[product.Product]) SearchResponse {
	items := make([]SearchProduct, len(res.Items))
	for i, it := range res.Items {
		p := it.Candidate
		items[i] = SearchProduct{
			ID:           p.ID,
			Name:         p.Name,
			Category:     p.Category,
			Price:        p.Price,
			Image:        p.Image,
			URL:          p.URL,
			Brand:        p.Brand,
			Rating:       p.Rating,
			Similarity:   it.Similarity,
			Score:        it.Score,
			Availability: p.Available,
		}
	}
	return SearchResponse{
		Products:     items,
		QueryTime:    res.QueryTime.Seconds(),
		TotalMatches: res.TotalMatches,
	}
}

func matchResponse(m *atelieruc.Match) MatchResponse {
	items := make([]MatchedAtelier, len(m.Items))
	for i, it := range m.Items {
		a := it.Candidate
		items[i] = MatchedAtelier{
			ID:              a.ID,
			Name:            a.Name,
			Location:        a.Location,
			Specialization:  nonNil(a.Specialization),
			PriceRange:      a.PriceRange,
			Rating:          a.Rating,
			PortfolioImages: nonNil(a.PortfolioImages),
			Contact:         contactToJSON(a.Contact),
			MatchScore:      it.Score,
		}
	}
	return MatchResponse{
		Ateliers:         items,
		QueryTime:        m.QueryTime.Seconds(),
		TotalMatches:     m.TotalMatches,
		DesignComplexity: m.DesignComplexity,
	}
}

func productFromBody(b *ProductBody) product.Product {
	available := true
	if b.Availability != nil {
		available = *b.Availability
	}
	return product.Product{
		ID:         b.ID,
		Name:       b.Name,
		Category:   b.Category,
		Price:      b.Price,
		Image:      b.Image,
		URL:        b.URL,
		Brand:      b.Brand,
		Rating:     b.Rating,
		Embedding:  b.Embedding,
		Available:  available,
		BrandScore: b.BrandScore,
	}
}

// productToBody omits the embedding; it is an internal artifact.
func productToBody(p *product.Product) ProductBody {
	available := p.Available
	return ProductBody{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Price:        p.Price,
		Image:        p.Image,
		URL:          p.URL,
		Brand:        p.Brand,
		Rating:       p.Rating,
		Availability: &available,
		BrandScore:   p.BrandScore,
	}
}

func atelierFromBody(b *AtelierBody) atelier.Atelier {
	a := atelier.Atelier{
		ID:              b.ID,
		Name:            b.Name,
		Location:        b.Location,
		Specialization:  b.Specialization,
		PriceRange:      b.PriceRange,
		Rating:          b.Rating,
		PortfolioImages: b.PortfolioImages,
		Categories:      b.Categories,
	}
	if b.Contact != nil {
		a.Contact = &atelier.Contact{
			Phone:     b.Contact.Phone,
			Email:     b.Contact.Email,
			Website:   b.Contact.Website,
			Instagram: b.Contact.Instagram,
		}
	}
	for _, c := range b.ComplexityRange {
		a.ComplexityRange = append(a.ComplexityRange, atelier.Complexity(c))
	}
	return a
}

func atelierToBody(a *atelier.Atelier) AtelierBody {
	b := AtelierBody{
		ID:              a.ID,
		Name:            a.Name,
		Location:        a.Location,
		Specialization:  nonNil(a.Specialization),
		PriceRange:      a.PriceRange,
		Rating:          a.Rating,
		PortfolioImages: nonNil(a.PortfolioImages),
		Contact:         contactToJSON(a.Contact),
		Categories:      nonNil(a.Categories),
	}
	for _, c := range a.ComplexityRange {
		b.ComplexityRange = append(b.ComplexityRange, string(c))
	}
	return b
}

func contactToJSON(c *atelier.Contact) *Contact {
	if c == nil {
		return nil
	}
	return &Contact{
		Phone:     c.Phone,
		Email:     c.Email,
		Website:   c.Website,
		Instagram: c.Instagram,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
