package l2objects

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Detection is one box from the external object detector, in pixel
// coordinates of the projected color image.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
}

// UnmarshalJSON accepts "score" as an alias for "confidence", which is how
// most detector wrappers name the field.
func (d *Detection) UnmarshalJSON(data []byte) error {
	type plain Detection
	aux := struct {
		*plain
		Score *float64 `json:"score"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Score != nil && d.Confidence == 0 {
		d.Confidence = *aux.Score
	}
	return nil
}

// Area is the box area (x2-x1)*(y2-y1).
func (d Detection) Area() float64 {
	return (d.X2 - d.X1) * (d.Y2 - d.Y1)
}

// Contains reports whether pixel (u, v) lies in the box, edges included.
func (d Detection) Contains(u, v float64) bool {
	return u >= d.X1 && u <= d.X2 && v >= d.Y1 && v <= d.Y2
}

// Validate rejects inverted boxes.
func (d Detection) Validate() error {
	if d.X2 < d.X1 || d.Y2 < d.Y1 {
		return fmt.Errorf("detection %q has inverted box (%.2f,%.2f)-(%.2f,%.2f)",
			d.Label, d.X1, d.Y1, d.X2, d.Y2)
	}
	return nil
}

// LoadDetections decodes a JSON array of detections.
func LoadDetections(r io.Reader) ([]Detection, error) {
	var dets []Detection
	if err := json.NewDecoder(r).Decode(&dets); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	for i, d := range dets {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("detection %d: %w", i, err)
		}
	}
	return dets, nil
}

// SortDetections returns a copy of dets ordered by area ascending. Equal
// areas keep detector output order.
func SortDetections(dets []Detection) []Detection {
	out := make([]Detection, len(dets))
	copy(out, dets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Area() < out[j].Area()
	})
	return out
}
