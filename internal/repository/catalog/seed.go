package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
)

type seedFile struct {
	Products []productDoc `yaml:"products"`
	Ateliers []atelierDoc `yaml:"ateliers"`
}

// LoadSeed reads a YAML catalog file. Entries are not validated here.
func LoadSeed(path string) ([]product.Product, []atelier.Atelier, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("read seed %s: %w", path, err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parse seed %s: %w", path, err)
	}

	products := make([]product.Product, len(f.Products))
	for i, d := range f.Products {
		products[i] = d.toDomain()
	}
	ateliers := make([]atelier.Atelier, len(f.Ateliers))
	for i, d := range f.Ateliers {
		ateliers[i] = d.toDomain()
	}
	return products, ateliers, nil
}
