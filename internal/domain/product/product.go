package product

import (
	"fmt"
	"math"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Rating bounds shared by products and ateliers.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Product is a catalog item scored against a query embedding.
type Product struct {
	ID         string
	Name       string
	Category   string
	Price      float64
	Image      string
	URL        string
	Brand      string
	Rating     *float64
	Embedding  []float32
	Available  bool
	BrandScore *float64 // external brand signal in [0,1]; nil when unknown
}

// Validate checks the fields required to store and display a product.
func (p *Product) Validate() error {
	if err := ValidateID(p.ID); err != nil {
		return err
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Category == "" {
		return fmt.Errorf("category is required")
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return fmt.Errorf("price must be a non-negative number")
	}
	if p.Image == "" {
		return fmt.Errorf("image is required")
	}
	if p.URL == "" {
		return fmt.Errorf("url is required")
	}
	if p.Rating != nil && (*p.Rating < MinRating || *p.Rating > MaxRating) {
		return fmt.Errorf("rating must be between %.0f and %.0f", MinRating, MaxRating)
	}
	if p.BrandScore != nil && (*p.BrandScore < 0 || *p.BrandScore > 1) {
		return fmt.Errorf("brand_score must be between 0 and 1")
	}
	return nil
}

// ValidateID checks a catalog identifier: ^[a-zA-Z0-9_-]+$, 1-256 chars.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if len(id) > 256 {
		return fmt.Errorf("id too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("id must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// Filter narrows a product listing. Empty fields match everything.
type Filter struct {
	Category string
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p *Product) bool {
	return f.Category == "" || p.Category == f.Category
}
