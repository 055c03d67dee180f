package catalog

import (
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
)

// productDoc is the stored JSON shape of a product. A missing availability
// means the product is in stock.
type productDoc struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Category   string    `json:"category" yaml:"category"`
	Price      float64   `json:"price" yaml:"price"`
	Image      string    `json:"image" yaml:"image"`
	URL        string    `json:"url" yaml:"url"`
	Brand      string    `json:"brand,omitempty" yaml:"brand,omitempty"`
	Rating     *float64  `json:"rating,omitempty" yaml:"rating,omitempty"`
	Embedding  []float32 `json:"embedding" yaml:"embedding"`
	Available  *bool     `json:"availability,omitempty" yaml:"availability,omitempty"`
	BrandScore *float64  `json:"brand_score,omitempty" yaml:"brand_score,omitempty"`
}

func toProductDoc(p *product.Product) productDoc {
	available := p.Available
	return productDoc{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		Price:      p.Price,
		Image:      p.Image,
		URL:        p.URL,
		Brand:      p.Brand,
		Rating:     p.Rating,
		Embedding:  p.Embedding,
		Available:  &available,
		BrandScore: p.BrandScore,
	}
}

func (d productDoc) toDomain() product.Product {
	available := true
	if d.Available != nil {
		available = *d.Available
	}
	return product.Product{
		ID:         d.ID,
		Name:       d.Name,
		Category:   d.Category,
		Price:      d.Price,
		Image:      d.Image,
		URL:        d.URL,
		Brand:      d.Brand,
		Rating:     d.Rating,
		Embedding:  d.Embedding,
		Available:  available,
		BrandScore: d.BrandScore,
	}
}

type contactDoc struct {
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Website   string `json:"website,omitempty" yaml:"website,omitempty"`
	Instagram string `json:"instagram,omitempty" yaml:"instagram,omitempty"`
}

// atelierDoc is the stored JSON shape of an atelier.
type atelierDoc struct {
	ID              string      `json:"id" yaml:"id"`
	Name            string      `json:"name" yaml:"name"`
	Location        string      `json:"location" yaml:"location"`
	Specialization  []string    `json:"specialization" yaml:"specialization"`
	PriceRange      string      `json:"priceRange" yaml:"priceRange"`
	Rating          float64     `json:"rating" yaml:"rating"`
	PortfolioImages []string    `json:"portfolioImages" yaml:"portfolioImages"`
	Contact         *contactDoc `json:"contact,omitempty" yaml:"contact,omitempty"`
	ComplexityRange []string    `json:"complexity_range" yaml:"complexity_range"`
	Categories      []string    `json:"categories" yaml:"categories"`
}

func toAtelierDoc(a *atelier.Atelier) atelierDoc {
	d := atelierDoc{
		ID:              a.ID,
		Name:            a.Name,
		Location:        a.Location,
		Specialization:  a.Specialization,
		PriceRange:      a.PriceRange,
		Rating:          a.Rating,
		PortfolioImages: a.PortfolioImages,
		Categories:      a.Categories,
	}
	if a.Contact != nil {
		d.Contact = &contactDoc{
			Phone:     a.Contact.Phone,
			Email:     a.Contact.Email,
			Website:   a.Contact.Website,
			Instagram: a.Contact.Instagram,
		}
	}
	d.ComplexityRange = make([]string, len(a.ComplexityRange))
	for i, c := range a.ComplexityRange {
		d.ComplexityRange[i] = string(c)
	}
	return d
}

func (d atelierDoc) toDomain() atelier.Atelier {
	a := atelier.Atelier{
		ID:              d.ID,
		Name:            d.Name,
		Location:        d.Location,
		Specialization:  d.Specialization,
		PriceRange:      d.PriceRange,
		Rating:          d.Rating,
		PortfolioImages: d.PortfolioImages,
		Categories:      d.Categories,
	}
	if d.Contact != nil {
		a.Contact = &atelier.Contact{
			Phone:     d.Contact.Phone,
			Email:     d.Contact.Email,
			Website:   d.Contact.Website,
			Instagram: d.Contact.Instagram,
		}
	}
	if len(d.ComplexityRange) == 0 {
		a.ComplexityRange = atelier.DefaultComplexityRange()
	} else {
		a.ComplexityRange = make([]atelier.Complexity, len(d.ComplexityRange))
		for i, c := range d.ComplexityRange {
			a.ComplexityRange[i] = atelier.Complexity(c)
		}
	}
	return a
}
