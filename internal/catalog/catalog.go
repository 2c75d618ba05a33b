// Package catalog provides the static component reference table.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/circuit-designer/backend/internal/models"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed components.yaml
var componentsYAML []byte

// Catalog is immutable once loaded.
type Catalog struct {
	entries    map[models.ComponentType]models.ComponentMetadata
	order      []models.ComponentType
	categories []models.CategoryInfo
}

type document struct {
	Categories []models.CategoryInfo      `yaml:"categories"`
	Components []models.ComponentMetadata `yaml:"components"`
}

// Global catalog instance, loaded from the embedded table.
var defaultCatalog = mustLoadDefault()

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

func mustLoadDefault() *Catalog {
	c, err := Load(bytes.NewReader(componentsYAML))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded table is invalid: %v", err))
	}
	return c
}

// Load parses a catalog document and checks that it covers every
// component type exactly once.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding catalog")
	}

	c := &Catalog{
		entries:    make(map[models.ComponentType]models.ComponentMetadata, len(doc.Components)),
		categories: doc.Categories,
	}
	knownCategories := make(map[models.Category]bool, len(doc.Categories))
	for _, cat := range doc.Categories {
		knownCategories[cat.ID] = true
	}

	for _, meta := range doc.Components {
		if !meta.Type.Valid() {
			return nil, errors.Errorf("unknown component type %q", meta.Type)
		}
		if _, dup := c.entries[meta.Type]; dup {
			return nil, errors.Errorf("duplicate entry for %s", meta.Type)
		}
		if !knownCategories[meta.Category] {
			return nil, errors.Errorf("%s: unknown category %q", meta.Type, meta.Category)
		}
		c.entries[meta.Type] = meta
		c.order = append(c.order, meta.Type)
	}

	for _, t := range models.AllComponentTypes {
		if _, ok := c.entries[t]; !ok {
			return nil, errors.Errorf("missing entry for %s", t)
		}
	}
	return c, nil
}

// Lookup returns metadata for t.
func (c *Catalog) Lookup(t models.ComponentType) (models.ComponentMetadata, bool) {
	meta, ok := c.entries[t]
	if !ok {
		return models.ComponentMetadata{}, false
	}
	meta.DefaultPins = meta.DefaultPins.Clone()
	return meta, true
}

// MustLookup is Lookup for types already known to be valid. A miss is a
// programming error.
func (c *Catalog) MustLookup(t models.ComponentType) models.ComponentMetadata {
	meta, ok := c.Lookup(t)
	if !ok {
		panic(fmt.Sprintf("catalog: no entry for component type %q", t))
	}
	return meta
}

// All returns every entry in catalog order.
func (c *Catalog) All() []models.ComponentMetadata {
	out := make([]models.ComponentMetadata, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.MustLookup(t))
	}
	return out
}

// ByCategory returns the entries of one category in catalog order.
func (c *Catalog) ByCategory(cat models.Category) []models.ComponentMetadata {
	var out []models.ComponentMetadata
	for _, t := range c.order {
		if meta := c.MustLookup(t); meta.Category == cat {
			out = append(out, meta)
		}
	}
	return out
}

// Categories returns the palette sections in display order.
func (c *Catalog) Categories() []models.CategoryInfo {
	out := make([]models.CategoryInfo, len(c.categories))
	copy(out, c.categories)
	return out
}

// IsMicrocontroller reports whether t belongs to the microcontroller category.
func (c *Catalog) IsMicrocontroller(t models.ComponentType) bool {
	meta, ok := c.entries[t]
	return ok && meta.Category == models.CategoryMicrocontroller
}
