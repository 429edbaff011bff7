package l5solver

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// MaterialProperties are the thermal and display properties of one
// surface material.
type MaterialProperties struct {
	Comment          string  `json:"comment"`
	RGB              [3]int  `json:"rgb"`
	SpecificHeat     float64 `json:"specific_heat"`      // kJ/(kg·K)
	Conductivity     float64 `json:"conductivity"`       // W/(m·K)
	Density          float64 `json:"density"`            // kg/m³
	Emissivity       float64 `json:"emissivity"`         // 0-1
	HeatOfCombustion float64 `json:"heat_of_combustion"` // kJ/kg, 0 for inert
	Thickness        float64 `json:"thickness"`          // m
}

// DefaultMaterial is the mandatory fallback for materials missing from a
// property table.
var DefaultMaterial = MaterialProperties{
	Comment:      "generic surface",
	RGB:          [3]int{140, 140, 140},
	SpecificHeat: 1.0,
	Conductivity: 0.5,
	Density:      1000,
	Emissivity:   0.9,
	Thickness:    0.02,
}

// PropertyTable maps material names to their properties.
type PropertyTable struct {
	Default   *MaterialProperties           `json:"default,omitempty"`
	Materials map[string]MaterialProperties `json:"materials"`
}

// LoadPropertyTable decodes a property table document.
func LoadPropertyTable(r io.Reader) (*PropertyTable, error) {
	var t PropertyTable
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode material properties: %w", err)
	}
	for name, p := range t.Materials {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
	}
	return &t, nil
}

func (p MaterialProperties) validate() error {
	for _, c := range p.RGB {
		if c < 0 || c > 255 {
			return fmt.Errorf("rgb component %d out of range", c)
		}
	}
	if p.Emissivity < 0 || p.Emissivity > 1 {
		return fmt.Errorf("emissivity %v out of range", p.Emissivity)
	}
	if p.Thickness < 0 || p.Density < 0 || p.SpecificHeat < 0 || p.Conductivity < 0 {
		return fmt.Errorf("physical properties must not be negative")
	}
	return nil
}

// Lookup returns the properties of name and whether it was found. Missing
// names return the table default, or DefaultMaterial.
func (t *PropertyTable) Lookup(name string) (MaterialProperties, bool) {
	if t != nil {
		if p, ok := t.Materials[name]; ok {
			return p, true
		}
		if t.Default != nil {
			return *t.Default, false
		}
	}
	return DefaultMaterial, false
}

// Names returns the table's material names in sorted order.
func (t *PropertyTable) Names() []string {
	names := make([]string, 0, len(t.Materials))
	for n := range t.Materials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ObjectSurface is the Surface value that stands for the object's own
// material.
const ObjectSurface = ""

// DefaultGeometry is the snippet used when a component does not carry one.
const DefaultGeometry = "&OBST XB={x_min},{x_max},{y_min},{y_max},{z_min},{z_max}, SURF_ID='{surf}' /"

// Component is one part of a multi-part object template. Offsets and sizes
// are in solver axes (X, Y = floor depth, Z = up) relative to the object
// centre. A floor-anchored part spans from the floor up to the centre
// height plus its Z offset.
type Component struct {
	Name          string     `json:"name"`
	Offset        [3]float64 `json:"offset"`
	Size          [3]float64 `json:"size"`
	FloorAnchored bool       `json:"floor_anchored,omitempty"`
	Surface       string     `json:"surface,omitempty"`
	Geometry      string     `json:"geometry,omitempty"`
}

// Template expands an object label into components.
type Template struct {
	Components []Component `json:"components"`
}

// TemplateTable maps lower-case object labels to templates.
type TemplateTable map[string]Template

// LoadTemplateTable decodes a template table and normalizes its keys.
func LoadTemplateTable(r io.Reader) (TemplateTable, error) {
	var raw map[string]Template
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode object templates: %w", err)
	}
	out := make(TemplateTable, len(raw))
	for label, tpl := range raw {
		if len(tpl.Components) == 0 {
			return nil, fmt.Errorf("template %q has no components", label)
		}
		for _, c := range tpl.Components {
			if c.Name == "" {
				return nil, fmt.Errorf("template %q has an unnamed component", label)
			}
		}
		out[normalizeLabel(label)] = tpl
	}
	return out, nil
}

// Lookup finds the template for an object label.
func (t TemplateTable) Lookup(label string) (Template, bool) {
	tpl, ok := t[normalizeLabel(label)]
	return tpl, ok
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
