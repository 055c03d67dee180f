package atelier

import (
	"fmt"
	"math"
	"strings"

	"github.com/stylegenie/matcher/internal/domain/product"
)

// Contact holds optional atelier contact details.
type Contact struct {
	Phone     string
	Email     string
	Website   string
	Instagram string
}

// Atelier is a tailor or workshop matched against design features.
type Atelier struct {
	ID              string
	Name            string
	Location        string
	Specialization  []string
	PriceRange      string // free text, e.g. "20000-50000 руб"; not parsed
	Rating          float64
	PortfolioImages []string
	Contact         *Contact
	ComplexityRange []Complexity
	Categories      []string
}

// DefaultComplexityRange is assigned to ateliers created without an explicit range.
func DefaultComplexityRange() []Complexity {
	return []Complexity{Low, Medium, High}
}

// Validate checks the fields required to store and display an atelier.
func (a *Atelier) Validate() error {
	if err := product.ValidateID(a.ID); err != nil {
		return err
	}
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.Location == "" {
		return fmt.Errorf("location is required")
	}
	if math.IsNaN(a.Rating) || a.Rating < product.MinRating || a.Rating > product.MaxRating {
		return fmt.Errorf("rating must be between %.0f and %.0f", product.MinRating, product.MaxRating)
	}
	for _, c := range a.ComplexityRange {
		if !c.IsValid() {
			return fmt.Errorf("invalid complexity %q", c)
		}
	}
	return nil
}

// Supports reports whether the atelier takes on designs of the given complexity.
func (a *Atelier) Supports(c Complexity) bool {
	for _, have := range a.ComplexityRange {
		if have == c {
			return true
		}
	}
	return false
}

// Makes reports whether the atelier works in the given garment category.
func (a *Atelier) Makes(category string) bool {
	for _, have := range a.Categories {
		if have == category {
			return true
		}
	}
	return false
}

// ServesLocation reports whether the atelier location contains loc, ignoring case.
func (a *Atelier) ServesLocation(loc string) bool {
	return strings.Contains(strings.ToLower(a.Location), strings.ToLower(loc))
}

// Filter narrows an atelier listing. Empty fields match everything.
type Filter struct {
	Category string
	Location string
}

// Matches reports whether a passes the filter.
func (f Filter) Matches(a *Atelier) bool {
	if f.Category != "" && !a.Makes(f.Category) {
		return false
	}
	if f.Location != "" && !a.ServesLocation(f.Location) {
		return false
	}
	return true
}
