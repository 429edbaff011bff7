package config

import (
	"embed"
	"fmt"
	"os"
)

//go:embed defaults/categories.txt defaults/materials.json defaults/templates.json
var defaultTables embed.FS

// Embedded table names.
const (
	CategoriesTable = "categories.txt"
	MaterialsTable  = "materials.json"
	TemplatesTable  = "templates.json"
)

// DefaultTable returns the embedded copy of a default table.
func DefaultTable(name string) ([]byte, error) {
	data, err := defaultTables.ReadFile("defaults/" + name)
	if err != nil {
		return nil, fmt.Errorf("no embedded table %q: %w", name, err)
	}
	return data, nil
}

// ReadTable returns the table at the override path, or the embedded
// default when the override is unset.
func ReadTable(override *string, name string) ([]byte, error) {
	if override == nil || *override == "" {
		return DefaultTable(name)
	}
	data, err := os.ReadFile(*override)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s override: %w", name, err)
	}
	return data, nil
}

// Categories returns the material vocabulary source.
func (c *PipelineConfig) Categories() ([]byte, error) {
	return ReadTable(c.CategoriesPath, CategoriesTable)
}

// Materials returns the material property table source.
func (c *PipelineConfig) Materials() ([]byte, error) {
	return ReadTable(c.MaterialsPath, MaterialsTable)
}

// Templates returns the object template table source.
func (c *PipelineConfig) Templates() ([]byte, error) {
	return ReadTable(c.TemplatesPath, TemplatesTable)
}
