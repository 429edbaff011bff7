package l5solver

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/firescene/internal/scene"
)

// SceneDocument is the solver-independent description of a packed room.
type SceneDocument struct {
	Space   scene.SpaceDimensions `json:"space_dimensions"`
	Objects []DocumentObject      `json:"objects"`
}

// MaterialRef names a material and its vocabulary index.
type MaterialRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Dimensions keep the key names of the legacy document: depth is the X
// extent, width the Y (height) extent and height the Z extent.
type Dimensions struct {
	Depth  float64 `json:"depth"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DocumentObject is one placed object.
type DocumentObject struct {
	ObjectNum  int          `json:"object_num"`
	Label      string       `json:"object_label"`
	Material   MaterialRef  `json:"material"`
	Bounds     scene.Bounds `json:"bounds"`
	Dimensions Dimensions   `json:"dimensions"`
	// Overrides replace template component sizes (solver axes) by
	// component name.
	Overrides map[string][3]float64 `json:"overrides,omitempty"`
}

// Serialize converts a packed scene into its document form, keeping the
// placement order.
func Serialize(s scene.Scene) *SceneDocument {
	doc := &SceneDocument{Space: s.Space, Objects: make([]DocumentObject, 0, len(s.Objects))}
	for _, o := range s.Objects {
		doc.Objects = append(doc.Objects, DocumentObject{
			ObjectNum: o.Record.ObjectNum,
			Label:     o.Record.Label,
			Material:  MaterialRef{ID: o.Record.MaterialID, Name: o.Record.Material},
			Bounds:    o.Bounds,
			Dimensions: Dimensions{
				Depth:  o.Bounds.SizeX(),
				Width:  o.Bounds.SizeY(),
				Height: o.Bounds.SizeZ(),
			},
		})
	}
	return doc
}

// Validate checks that the volume is usable.
func (d *SceneDocument) Validate() error {
	if d.Space.X <= 0 || d.Space.Y <= 0 || d.Space.Z <= 0 {
		return fmt.Errorf("space dimensions must be positive, got %+v", d.Space)
	}
	return nil
}

// WriteDocument writes the document as indented JSON.
func WriteDocument(w io.Writer, d *SceneDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode scene document: %w", err)
	}
	return nil
}

// LoadDocument reads and validates a scene document.
func LoadDocument(r io.Reader) (*SceneDocument, error) {
	var d SceneDocument
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode scene document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
