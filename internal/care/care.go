// Package care holds the static per-category care templates used to fill in
// watering and sunlight defaults for new plants.
package care

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/atinyakov/PlantCare/internal/models"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Template is the care default for one category.
type Template struct {
	Category           models.Category           `yaml:"-" json:"category"`
	WateringSchedule   models.WateringSchedule   `yaml:"watering_schedule" json:"watering_schedule"`
	SunlightPreference models.SunlightPreference `yaml:"sunlight_preference" json:"sunlight_preference"`
	PlaceholderSpecies string                    `yaml:"placeholder_species" json:"placeholder_species"`
}

// Catalog is a read-only set of templates keyed by category.
type Catalog struct {
	templates map[models.Category]Template
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultTemplates)
	if err != nil {
		panic(fmt.Sprintf("care: embedded templates are invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path. An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read care templates: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML templates and checks every category and enum value.
func Parse(data []byte) (*Catalog, error) {
	var raw map[models.Category]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse care templates: %w", err)
	}

	templates := make(map[models.Category]Template, len(raw))
	for cat, t := range raw {
		if !cat.Valid() {
			return nil, fmt.Errorf("care template %q: unknown category", cat)
		}
		if !t.WateringSchedule.Valid() {
			return nil, fmt.Errorf("care template %q: invalid watering schedule %q", cat, t.WateringSchedule)
		}
		if !t.SunlightPreference.Valid() {
			return nil, fmt.Errorf("care template %q: invalid sunlight preference %q", cat, t.SunlightPreference)
		}
		t.Category = cat
		templates[cat] = t
	}
	return &Catalog{templates: templates}, nil
}

// Lookup returns the template for cat.
func (c *Catalog) Lookup(cat models.Category) (Template, bool) {
	t, ok := c.templates[cat]
	return t, ok
}

// All returns every template ordered by category name.
func (c *Catalog) All() []Template {
	out := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Template) int {
		switch {
		case a.Category < b.Category:
			return -1
		case a.Category > b.Category:
			return 1
		}
		return 0
	})
	return out
}

// Fill derives both the watering schedule and the sunlight preference of
// in from its category when either of them is empty. Categories without a
// template fall back to the model defaults.
func (c *Catalog) Fill(in *models.PlantInput) {
	if in.WateringSchedule != "" && in.SunlightPreference != "" {
		return
	}
	t, ok := c.Lookup(in.Category)
	if !ok {
		t = Template{
			WateringSchedule:   models.DefaultWateringSchedule,
			SunlightPreference: models.DefaultSunlightPreference,
		}
	}
	in.WateringSchedule = t.WateringSchedule
	in.SunlightPreference = t.SunlightPreference
}
