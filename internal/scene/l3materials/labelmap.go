package l3materials

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
)

// LabelMap holds one classifier category index per pixel, indexed [v][u].
type LabelMap [][]int

// LoadLabelMap reads whitespace-separated integers, one image row per line.
// All rows must have the same width.
func LoadLabelMap(r io.Reader) (LabelMap, error) {
	var m LabelMap
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	width := -1
	row := 0
	for sc.Scan() {
		row++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if width >= 0 && len(fields) != width {
			return nil, fmt.Errorf("label map row %d has %d columns, expected %d", row, len(fields), width)
		}
		width = len(fields)
		vals := make([]int, width)
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("label map row %d column %d: %w", row, i+1, err)
			}
			vals[i] = n
		}
		m = append(m, vals)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read label map: %w", err)
	}
	return m, nil
}

// Dims returns width and height.
func (m LabelMap) Dims() (w, h int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m[0]), len(m)
}

// At returns the category at pixel (u, v).
func (m LabelMap) At(u, v int) (int, bool) {
	if v < 0 || v >= len(m) || u < 0 || u >= len(m[v]) {
		return 0, false
	}
	return m[v][u], true
}

// AssignMaterials sets each point's material from the label map. Pixels
// outside the map or indices outside the vocabulary leave the material
// empty. The input cloud is not modified.
func AssignMaterials(cloud scene.PointCloud, labels LabelMap, vocab *Vocabulary) scene.PointCloud {
	out := make(scene.PointCloud, len(cloud))
	missing := 0
	for i, p := range cloud {
		p.Material = ""
		if idx, ok := labels.At(p.U, p.V); ok {
			if name, ok := vocab.Name(idx); ok {
				p.Material = name
			}
		}
		if p.Material == "" {
			missing++
		}
		out[i] = p
	}
	w, h := labels.Dims()
	monitoring.Logf("[l3materials] labelled %d points from %dx%d map (%d without material)",
		len(cloud), w, h, missing)
	return out
}
