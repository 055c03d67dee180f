// Package generation holds the text-to-image request model and the
// deterministic prompt enrichment applied before any image provider is called.
package generation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Request limits.
const (
	DefaultImages   = 4
	MaxImages       = 8
	MaxPromptLength = 1000
	MaxFieldLength  = 256
)

// Kind is what the generated image shows.
type Kind string

const (
	Dress     Kind = "dress"
	TotalLook Kind = "total_look"
)

// FashionTerms are appended to every enhanced prompt.
const FashionTerms = "high fashion, editorial style, professional photography, studio lighting, detailed fabric texture"

var occasionContext = map[string]string{
	"party":  "elegant evening wear, sophisticated, glamorous",
	"office": "professional, polished, business attire",
	"date":   "romantic, feminine, charming",
	"casual": "relaxed, comfortable, everyday style",
	"formal": "luxurious, refined, haute couture",
}

// OccasionContext returns the style phrase for a known occasion, or "".
func OccasionContext(occasion string) string {
	return occasionContext[strings.ToLower(strings.TrimSpace(occasion))]
}

// Request is a validated generation request.
type Request struct {
	prompt       string
	kind         Kind
	occasion     string
	colorPalette string
	silhouette   string
	budget       string
	bodyType     string
	numImages    int
	seed         *uint32
}

// Params are the raw request fields.
type Params struct {
	Prompt       string
	Kind         Kind
	Occasion     string
	ColorPalette string
	Silhouette   string
	Budget       string
	BodyType     string
	NumImages    int     // 0 selects DefaultImages
	Seed         *uint32 // fixed seed for every image
}

// NewRequest validates p.
func NewRequest(p Params) (Request, error) {
	prompt := strings.TrimSpace(p.Prompt)
	if prompt == "" {
		return Request{}, fmt.Errorf("prompt is required")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return Request{}, fmt.Errorf("prompt too long (max %d chars)", MaxPromptLength)
	}
	switch p.Kind {
	case Dress, TotalLook:
	case "":
		return Request{}, fmt.Errorf("type is required")
	default:
		return Request{}, fmt.Errorf("type must be %q or %q, got %q", Dress, TotalLook, p.Kind)
	}
	for name, v := range map[string]string{
		"occasion": p.Occasion, "colorPalette": p.ColorPalette, "silhouette": p.Silhouette,
		"budget": p.Budget, "bodyType": p.BodyType,
	} {
		if utf8.RuneCountInString(v) > MaxFieldLength {
			return Request{}, fmt.Errorf("%s too long (max %d chars)", name, MaxFieldLength)
		}
	}

	n := p.NumImages
	if n == 0 {
		n = DefaultImages
	}
	if n < 1 || n > MaxImages {
		return Request{}, fmt.Errorf("num_images must be between 1 and %d", MaxImages)
	}

	return Request{
		prompt:       prompt,
		kind:         p.Kind,
		occasion:     strings.TrimSpace(p.Occasion),
		colorPalette: strings.TrimSpace(p.ColorPalette),
		silhouette:   strings.TrimSpace(p.Silhouette),
		budget:       strings.TrimSpace(p.Budget),
		bodyType:     strings.TrimSpace(p.BodyType),
		numImages:    n,
		seed:         p.Seed,
	}, nil
}

func (r *Request) Prompt() string       { return r.prompt }
func (r *Request) Kind() Kind           { return r.kind }
func (r *Request) Occasion() string     { return r.occasion }
func (r *Request) ColorPalette() string { return r.colorPalette }
func (r *Request) Silhouette() string   { return r.silhouette }
func (r *Request) Budget() string       { return r.budget }
func (r *Request) BodyType() string     { return r.bodyType }
func (r *Request) NumImages() int       { return r.numImages }
func (r *Request) Seed() *uint32        { return r.seed }

// Enhance builds the provider prompt: the user prompt, the occasion style,
// the shot type, optional palette and silhouette, then FashionTerms.
// Unknown occasions add nothing.
func Enhance(r *Request) string {
	parts := []string{r.prompt}
	if oc := OccasionContext(r.occasion); oc != "" {
		parts = append(parts, oc)
	}

	shot := "dress photography"
	if r.kind == TotalLook {
		shot = "full body fashion photography"
	}
	if r.colorPalette != "" {
		shot += ", color palette: " + r.colorPalette
	}
	if r.silhouette != "" {
		shot += ", silhouette: " + r.silhouette
	}
	parts = append(parts, shot, FashionTerms)

	return strings.Join(parts, ", ")
}

// Seeds returns one seed per image. A fixed seed is repeated; otherwise seed i
// is the low 32 bits of xxhash(enhanced + i), so identical prompts reproduce.
func Seeds(enhanced string, n int, fixed *uint32) []uint32 {
	seeds := make([]uint32, n)
	for i := range seeds {
		if fixed != nil {
			seeds[i] = *fixed
			continue
		}
		seeds[i] = uint32(xxhash.Sum64String(enhanced + strconv.Itoa(i)))
	}
	return seeds
}
