package atelier

import "fmt"

// Complexity is the construction difficulty of a design.
type Complexity string

// Complexity levels.
const (
	Low    Complexity = "low"
	Medium Complexity = "medium"
	High   Complexity = "high"
)

// IsValid reports whether c is a known complexity level.
func (c Complexity) IsValid() bool {
	switch c {
	case Low, Medium, High:
		return true
	}
	return false
}

// complexityBase maps a complexity level to its base score.
var complexityBase = map[Complexity]float64{
	Low:    0.3,
	Medium: 0.6,
	High:   1.0,
}

// decorativeBonus is added per decorative element.
const decorativeBonus = 0.1

// Features is the categorical description of a design extracted from its image.
type Features struct {
	Category           string
	Complexity         Complexity
	Fabric             string
	DecorativeElements []string
}

// Normalize fills the default complexity and validates the feature set.
func (f Features) Normalize() (Features, error) {
	if f.Category == "" {
		return Features{}, fmt.Errorf("category is required")
	}
	if f.Complexity == "" {
		f.Complexity = Medium
	}
	if !f.Complexity.IsValid() {
		return Features{}, fmt.Errorf("invalid complexity %q", f.Complexity)
	}
	return f, nil
}

// ComplexityScore rates how demanding a design is: base score by level
// plus a bonus per decorative element, capped at 1.0.
func ComplexityScore(f Features) float64 {
	base, ok := complexityBase[f.Complexity]
	if !ok {
		base = complexityBase[Medium]
	}
	return min(1.0, base+float64(len(f.DecorativeElements))*decorativeBonus)
}
