package scene

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// RequiredColumns are the point-table columns every input must carry.
var RequiredColumns = []string{"x", "y", "z", "u", "v", "R", "G", "B"}

// OptionalColumns are read when present and always written.
var OptionalColumns = []string{"material", "object_num", "object_label"}

// ReadCloudCSV parses a point table with a header row. Column order is free;
// extra columns are ignored. A missing required column fails with
// ErrMissingRequiredColumn.
func ReadCloudCSV(r io.Reader) (PointCloud, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", ErrMissingRequiredColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingRequiredColumn, name)
		}
	}

	var cloud PointCloud
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		p, err := parseRow(rec, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		cloud = append(cloud, p)
	}
	return cloud, nil
}

func parseRow(rec []string, index map[string]int) (Point, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	number := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		return v, nil
	}

	var p Point
	var err error
	if p.X, err = number("x"); err != nil {
		return p, err
	}
	if p.Y, err = number("y"); err != nil {
		return p, err
	}
	if p.Z, err = number("z"); err != nil {
		return p, err
	}

	// Pixel and color columns are often written as floats by upstream tools.
	ints := make(map[string]int, 5)
	for _, name := range []string{"u", "v", "R", "G", "B"} {
		f, err := number(name)
		if err != nil {
			return p, err
		}
		ints[name] = int(math.Round(f))
	}
	p.U, p.V = ints["u"], ints["v"]
	p.R, p.G, p.B = clampByte(ints["R"]), clampByte(ints["G"]), clampByte(ints["B"])

	p.Material = field("material")
	p.Label = field("object_label")
	if s := field("object_num"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("column object_num: %w", err)
		}
		if !math.IsNaN(f) && f > 0 {
			p.ObjectNum = int(math.Round(f))
		}
	}
	return p, nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// WriteCloudCSV writes the cloud with the required columns followed by the
// optional ones. Null optional values are written as empty fields.
func WriteCloudCSV(w io.Writer, cloud PointCloud) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, RequiredColumns...), OptionalColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range cloud {
		objectNum := ""
		if p.HasObject() {
			objectNum = strconv.Itoa(p.ObjectNum)
		}
		row := []string{
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
			strconv.FormatFloat(p.Z, 'f', -1, 64),
			strconv.Itoa(p.U),
			strconv.Itoa(p.V),
			strconv.Itoa(int(p.R)),
			strconv.Itoa(int(p.G)),
			strconv.Itoa(int(p.B)),
			p.Material,
			objectNum,
			p.Label,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
