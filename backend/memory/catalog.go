package memory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/seekr/core"
)

//go:embed testdata/catalog.json
var sampleCatalog []byte

// LoadCatalog reads a JSON array of assets from path.
func LoadCatalog(path string) ([]core.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a JSON array of assets. Every asset needs an ID.
func ParseCatalog(data []byte) ([]core.Asset, error) {
	var assets []core.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	for i, a := range assets {
		if a.ID == "" {
			return nil, fmt.Errorf("%w: asset %d has no id", ErrInvalidCatalog, i)
		}
	}
	return assets, nil
}

// SampleCatalog returns a small built-in catalog for demos and tests.
func SampleCatalog() []core.Asset {
	assets, err := ParseCatalog(sampleCatalog)
	if err != nil {
		panic(err)
	}
	return assets
}
