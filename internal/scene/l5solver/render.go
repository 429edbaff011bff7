package l5solver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
)

// Sensor is a fixed thermocouple placed at a fraction of the mesh extents.
type Sensor struct {
	ID       string
	Fraction [3]float64
}

// RenderOptions are the fixed, non-scene parameters of the solver input.
type RenderOptions struct {
	CHID          string
	Title         string
	TEnd          float64    // simulated seconds
	CellsPerMeter float64    // mesh resolution multiplier
	HRRPUA        float64    // ignition heat release per unit area, kW/m²
	Ignition      [6]float64 // ignition obstruction XB, solver axes
	SlicePBY      float64    // temperature slice plane
	Door          [6]float64 // synthesized door vent XB
	Window        [6]float64 // synthesized window vent XB
	Sensors       []Sensor
}

// DefaultRenderOptions returns the stock room simulation parameters.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		CHID:          "room_simulation",
		Title:         "Room with detected objects",
		TEnd:          10,
		CellsPerMeter: 10,
		HRRPUA:        1000,
		Ignition:      [6]float64{4.5, 5.5, 2.0, 3.0, 0.0, 0.5},
		SlicePBY:      2,
		Door:          [6]float64{0, 0, 1, 2, 0, 2},
		Window:        [6]float64{4, 5, 0, 0, 1, 2},
		Sensors: []Sensor{
			{ID: "TC_1", Fraction: [3]float64{0.25, 0.25, 0.9}},
			{ID: "TC_2", Fraction: [3]float64{0.5, 0.5, 0.9}},
			{ID: "TC_3", Fraction: [3]float64{0.75, 0.75, 0.9}},
		},
	}
}

// Renderer turns scene documents into solver input text.
type Renderer struct {
	Properties *PropertyTable
	Templates  TemplateTable
	Options    RenderOptions
}

// NewRenderer builds a renderer with the default options.
func NewRenderer(props *PropertyTable, templates TemplateTable) *Renderer {
	return &Renderer{Properties: props, Templates: templates, Options: DefaultRenderOptions()}
}

// fireRamp is the normalized heat release curve: (fraction of T_END, F).
var fireRamp = [][2]float64{{0, 0}, {0.2, 1}, {0.8, 1}, {1, 0}}

// fmtReal formats a real-valued field with three decimals.
func fmtReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if s == "-0.000" {
		return "0.000"
	}
	return s
}

func xb(b [6]float64) string {
	parts := make([]string, 6)
	for i, v := range b {
		parts[i] = fmtReal(v)
	}
	return strings.Join(parts, ",")
}

func quoted(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "") + "'"
}

func comment(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

// solverBox converts scene bounds to solver XB order: scene X stays X,
// scene Z (floor depth) becomes Y and scene Y (height) becomes Z.
func solverBox(b scene.Bounds) [6]float64 {
	return [6]float64{b.XMin, b.XMax, b.ZMin, b.ZMax, b.YMin, b.YMax}
}

// OpeningKind classifies a label as a door or window, or neither.
func OpeningKind(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "door"):
		return "door"
	case strings.Contains(l, "window"):
		return "window"
	}
	return ""
}

// Render writes the solver input for doc. Unknown materials fall back to
// the default surface and are reported as issues.
func (r *Renderer) Render(doc *SceneDocument) (string, []scene.Issue) {
	opts := r.Options
	var sb strings.Builder
	var issues []scene.Issue

	ext := [3]float64{doc.Space.X, doc.Space.Z, doc.Space.Y}

	// Header, time and chemistry.
	fmt.Fprintf(&sb, "&HEAD CHID=%s, TITLE=%s /\n\n", quoted(opts.CHID), quoted(opts.Title))
	fmt.Fprintf(&sb, "&TIME T_END=%s /\n\n", fmtReal(opts.TEnd))
	fmt.Fprintf(&sb, "&REAC ID='POLYURETHANE', FUEL='REAC_FUEL', C=%s, H=%s, O=%s, N=%s, SOOT_YIELD=%s, HEAT_OF_COMBUSTION=%s, IDEAL=.TRUE. /\n\n",
		fmtReal(6.3), fmtReal(7.1), fmtReal(2.1), fmtReal(1.0), fmtReal(0.1), fmtReal(24000))

	// Mesh.
	ijk := make([]string, 3)
	for i, e := range ext {
		ijk[i] = strconv.Itoa(max(1, int(math.Round(opts.CellsPerMeter*e))))
	}
	fmt.Fprintf(&sb, "&MESH IJK=%s, XB=%s /\n\n", strings.Join(ijk, ","),
		xb([6]float64{0, ext[0], 0, ext[1], 0, ext[2]}))

	// Surfaces, in order of first use.
	var surfaces []string
	firstUser := make(map[string]int)
	addSurface := func(name string, objectNum int) {
		if name == "" {
			return
		}
		if _, seen := firstUser[name]; seen {
			return
		}
		firstUser[name] = objectNum
		surfaces = append(surfaces, name)
	}
	for _, o := range doc.Objects {
		if OpeningKind(o.Label) != "" {
			continue
		}
		addSurface(o.Material.Name, o.ObjectNum)
	}
	for _, o := range doc.Objects {
		if OpeningKind(o.Label) != "" {
			continue
		}
		if tpl, ok := r.Templates.Lookup(o.Label); ok {
			for _, c := range tpl.Components {
				addSurface(c.Surface, o.ObjectNum)
			}
		}
	}

	sb.WriteString("! Material surface definitions\n")
	for _, name := range surfaces {
		p, known := r.Properties.Lookup(name)
		if !known {
			is := scene.Issue{
				Kind:      scene.IssueUnknownMaterial,
				ObjectNum: firstUser[name],
				Detail:    fmt.Sprintf("no properties for %q, using default surface", name),
			}
			monitoring.Logf("[l5solver] %s", is)
			issues = append(issues, is)
		}
		fmt.Fprintf(&sb, "! %s: %s\n", comment(name), comment(p.Comment))
		fmt.Fprintf(&sb, "&MATL ID=%s, SPECIFIC_HEAT=%s, CONDUCTIVITY=%s, DENSITY=%s, EMISSIVITY=%s",
			quoted(name+"_MATL"), fmtReal(p.SpecificHeat), fmtReal(p.Conductivity), fmtReal(p.Density), fmtReal(p.Emissivity))
		if p.HeatOfCombustion > 0 {
			fmt.Fprintf(&sb, ", HEAT_OF_COMBUSTION=%s", fmtReal(p.HeatOfCombustion))
		}
		sb.WriteString(" /\n")
		fmt.Fprintf(&sb, "&SURF ID=%s, RGB=%d,%d,%d, MATL_ID=%s, THICKNESS=%s /\n\n",
			quoted(name), p.RGB[0], p.RGB[1], p.RGB[2], quoted(name+"_MATL"), fmtReal(p.Thickness))
	}

	// Geometry.
	sb.WriteString("! Object definitions\n")
	var doors, windows []DocumentObject
	for _, o := range doc.Objects {
		switch OpeningKind(o.Label) {
		case "door":
			doors = append(doors, o)
			continue
		case "window":
			windows = append(windows, o)
			continue
		}
		r.writeObject(&sb, o)
	}

	// Openings.
	sb.WriteString("! Openings\n")
	writeVents(&sb, "door", doors, opts.Door, ext)
	writeVents(&sb, "window", windows, opts.Window, ext)
	sb.WriteString("\n")

	// Diagnostics.
	sb.WriteString("! Diagnostics\n")
	for _, s := range opts.Sensors {
		fmt.Fprintf(&sb, "&DEVC ID=%s, QUANTITY='THERMOCOUPLE', XYZ=%s,%s,%s /\n", quoted(s.ID),
			fmtReal(s.Fraction[0]*ext[0]), fmtReal(s.Fraction[1]*ext[1]), fmtReal(s.Fraction[2]*ext[2]))
	}
	pby := opts.SlicePBY
	if pby <= 0 || pby >= ext[1] {
		pby = ext[1] / 2
	}
	fmt.Fprintf(&sb, "&SLCF PBY=%s, QUANTITY='TEMPERATURE' /\n\n", fmtReal(pby))

	// Ignition.
	sb.WriteString("! Fire source\n")
	fmt.Fprintf(&sb, "&SURF ID='FIRE', RGB=255,0,0, HRRPUA=%s, RAMP_Q='FIRE_RAMP' /\n", fmtReal(opts.HRRPUA))
	for _, pt := range fireRamp {
		fmt.Fprintf(&sb, "&RAMP ID='FIRE_RAMP', T=%s, F=%s /\n", fmtReal(pt[0]*opts.TEnd), fmtReal(pt[1]))
	}
	fmt.Fprintf(&sb, "&OBST XB=%s, COLOR='RED', SURF_ID='FIRE' /\n\n", xb(FitBox(opts.Ignition, ext)))

	sb.WriteString("&TAIL /\n")
	return sb.String(), issues
}

func surfaceID(material string) string {
	if material == "" {
		return "INERT"
	}
	return material
}

func (r *Renderer) writeObject(sb *strings.Builder, o DocumentObject) {
	label := o.Label
	if label == "" {
		label = fmt.Sprintf("object %d", o.ObjectNum)
	}
	fmt.Fprintf(sb, "! %s - %s\n", comment(label), comment(o.Material.Name))

	tpl, ok := r.Templates.Lookup(o.Label)
	if !ok {
		fmt.Fprintf(sb, "&OBST XB=%s, SURF_ID=%s /\n\n", xb(solverBox(o.Bounds)), quoted(surfaceID(o.Material.Name)))
		return
	}

	box := solverBox(o.Bounds)
	cx, cy, cz := (box[0]+box[1])/2, (box[2]+box[3])/2, (box[4]+box[5])/2
	for _, c := range tpl.Components {
		size := c.Size
		if ov, ok := o.Overrides[c.Name]; ok {
			size = ov
		}
		b := [6]float64{
			cx + c.Offset[0], cx + c.Offset[0] + size[0],
			cy + c.Offset[1], cy + c.Offset[1] + size[1],
			cz + c.Offset[2], cz + c.Offset[2] + size[2],
		}
		if c.FloorAnchored {
			b[4], b[5] = 0, cz+c.Offset[2]
		}

		surf := c.Surface
		if surf == ObjectSurface {
			surf = o.Material.Name
		}
		geom := c.Geometry
		if geom == "" {
			geom = DefaultGeometry
		}
		rep := strings.NewReplacer(
			"{x_min}", fmtReal(b[0]), "{x_max}", fmtReal(b[1]),
			"{y_min}", fmtReal(b[2]), "{y_max}", fmtReal(b[3]),
			"{z_min}", fmtReal(b[4]), "{z_max}", fmtReal(b[5]),
			"{surf}", strings.ReplaceAll(surfaceID(surf), "'", ""),
			"{name}", c.Name,
		)
		sb.WriteString(rep.Replace(geom))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeVents emits one OPEN vent per detected opening, snapped to the
// nearest wall, or the synthesized default when none was detected.
func writeVents(sb *strings.Builder, kind string, found []DocumentObject, fallback [6]float64, ext [3]float64) {
	if len(found) == 0 {
		fmt.Fprintf(sb, "! %s (synthesized)\n", kind)
		fmt.Fprintf(sb, "&VENT XB=%s, SURF_ID='OPEN' /\n", xb(FitBox(fallback, ext)))
		return
	}
	for _, o := range found {
		fmt.Fprintf(sb, "! %s (object %d)\n", kind, o.ObjectNum)
		fmt.Fprintf(sb, "&VENT XB=%s, SURF_ID='OPEN' /\n", xb(SnapToWall(solverBox(o.Bounds), ext)))
	}
}

// FitBox moves a fixed box inside the mesh extents, shrinking an axis only
// when the box is longer than the mesh on that axis. Axes with extent keep
// it, so a vent stays a plane and an obstruction stays a volume.
func FitBox(b [6]float64, ext [3]float64) [6]float64 {
	out := b
	for i := 0; i < 3; i++ {
		lo, size := b[2*i], b[2*i+1]-b[2*i]
		size = math.Min(size, ext[i])
		lo = math.Max(lo, 0)
		if lo+size > ext[i] {
			lo = ext[i] - size
		}
		out[2*i], out[2*i+1] = lo, lo+size
	}
	return out
}

// SnapToWall collapses a box onto the closest vertical mesh boundary.
// Ties prefer x=0, x=max, y=0, y=max in that order.
func SnapToWall(b [6]float64, ext [3]float64) [6]float64 {
	dist := [4]float64{b[0], ext[0] - b[1], b[2], ext[1] - b[3]}
	best := 0
	for i := 1; i < 4; i++ {
		if dist[i] < dist[best] {
			best = i
		}
	}
	out := b
	switch best {
	case 0:
		out[0], out[1] = 0, 0
	case 1:
		out[0], out[1] = ext[0], ext[0]
	case 2:
		out[2], out[3] = 0, 0
	case 3:
		out[2], out[3] = ext[1], ext[1]
	}
	return out
}
