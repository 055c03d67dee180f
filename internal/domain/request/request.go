package request

import (
	"fmt"
	"math"
	"net/url"
)

// Request parameter limits.
const (
	// MaxImageURLLength is the maximum accepted image reference length.
	MaxImageURLLength   = 4096
	DefaultProductLimit = 20
	DefaultAtelierLimit = 10
	MaxLimit            = 100
	MaxLocationLength   = 256
)

// Limits bounds the number of results a query may ask for.
type Limits struct {
	DefaultProduct int // used when a search omits max_results
	DefaultAtelier int // used when a match omits max_results
	Max            int
}

// DefaultLimits returns the production result limits.
func DefaultLimits() Limits {
	return Limits{
		DefaultProduct: DefaultProductLimit,
		DefaultAtelier: DefaultAtelierLimit,
		Max:            MaxLimit,
	}
}

// Validate rejects non-positive limits and defaults above Max.
func (l Limits) Validate() error {
	if l.Max <= 0 {
		return fmt.Errorf("max results must be positive, got %d", l.Max)
	}
	if l.DefaultProduct <= 0 || l.DefaultProduct > l.Max {
		return fmt.Errorf("default product results must be between 1 and %d, got %d", l.Max, l.DefaultProduct)
	}
	if l.DefaultAtelier <= 0 || l.DefaultAtelier > l.Max {
		return fmt.Errorf("default atelier results must be between 1 and %d, got %d", l.Max, l.DefaultAtelier)
	}
	return nil
}

// WithFallback replaces unset fields with DefaultLimits values.
func (l Limits) WithFallback() Limits {
	d := DefaultLimits()
	if l.Max <= 0 {
		l.Max = d.Max
	}
	if l.DefaultProduct <= 0 {
		l.DefaultProduct = min(d.DefaultProduct, l.Max)
	}
	if l.DefaultAtelier <= 0 {
		l.DefaultAtelier = min(d.DefaultAtelier, l.Max)
	}
	return l
}

func (l Limits) clamp(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, l.Max)
}

// Product is a validated product search query.
type Product struct {
	imageURL      string
	limit         int
	minSimilarity float64
	budget        *float64
	category      string
}

// NewProduct validates product search parameters under DefaultLimits.
func NewProduct(imageURL string, limit int, minSimilarity float64, budget *float64, category string) (Product, error) {
	return DefaultLimits().NewProduct(imageURL, limit, minSimilarity, budget, category)
}

// NewProduct validates and normalizes product search parameters.
// A limit <= 0 selects DefaultProduct; larger limits are clamped to Max.
func (l Limits) NewProduct(
	imageURL string, limit int, minSimilarity float64, budget *float64, category string,
) (Product, error) {
	l = l.WithFallback()
	if err := validateImageURL(imageURL); err != nil {
		return Product{}, err
	}
	if math.IsNaN(minSimilarity) || minSimilarity < -1 || minSimilarity > 1 {
		return Product{}, fmt.Errorf("min_similarity must be between -1 and 1")
	}
	if err := validateBudget(budget); err != nil {
		return Product{}, err
	}

	return Product{
		imageURL:      imageURL,
		limit:         l.clamp(limit, l.DefaultProduct),
		minSimilarity: minSimilarity,
		budget:        budget,
		category:      category,
	}, nil
}

// ImageURL returns the reference image.
func (r *Product) ImageURL() string { return r.imageURL }

// Limit returns the maximum results to return.
func (r *Product) Limit() int { return r.limit }

// MinSimilarity returns the similarity gate.
func (r *Product) MinSimilarity() float64 { return r.minSimilarity }

// Budget returns the target price, nil when unset.
func (r *Product) Budget() *float64 { return r.budget }

// Category returns the optional category pre-filter.
func (r *Product) Category() string { return r.category }

// Atelier is a validated atelier match query.
type Atelier struct {
	imageURL string
	limit    int
	location string
	budget   *float64
}

// NewAtelier validates atelier match parameters under DefaultLimits.
func NewAtelier(imageURL string, limit int, location string, budget *float64) (Atelier, error) {
	return DefaultLimits().NewAtelier(imageURL, limit, location, budget)
}

// NewAtelier validates and normalizes atelier match parameters.
// A limit <= 0 selects DefaultAtelier; larger limits are clamped to Max.
func (l Limits) NewAtelier(imageURL string, limit int, location string, budget *float64) (Atelier, error) {
	l = l.WithFallback()
	if err := validateImageURL(imageURL); err != nil {
		return Atelier{}, err
	}
	if len(location) > MaxLocationLength {
		return Atelier{}, fmt.Errorf("location too long (max %d chars)", MaxLocationLength)
	}
	if err := validateBudget(budget); err != nil {
		return Atelier{}, err
	}

	return Atelier{
		imageURL: imageURL,
		limit:    l.clamp(limit, l.DefaultAtelier),
		location: location,
		budget:   budget,
	}, nil
}

// ImageURL returns the reference design image.
func (r *Atelier) ImageURL() string { return r.imageURL }

// Limit returns the maximum results to return.
func (r *Atelier) Limit() int { return r.limit }

// Location returns the location substring filter, empty when unset.
func (r *Atelier) Location() string { return r.location }

// Budget returns the stated budget, nil when unset.
func (r *Atelier) Budget() *float64 { return r.budget }

func validateImageURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("imageUrl is required")
	}
	if len(raw) > MaxImageURLLength {
		return fmt.Errorf("imageUrl too long (max %d chars)", MaxImageURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("imageUrl is not a valid URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "data":
	default:
		return fmt.Errorf("imageUrl must be an http(s) or data URL")
	}
	return nil
}

func validateBudget(budget *float64) error {
	if budget == nil {
		return nil
	}
	if math.IsNaN(*budget) || math.IsInf(*budget, 0) || *budget < 0 {
		return fmt.Errorf("budget must be a non-negative number")
	}
	return nil
}
