package preview

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/firescene/internal/scene/l5solver"
)

// Footprint image size.
const (
	footprintWidth  = 8 * vg.Inch
	footprintHeight = 6.4 * vg.Inch
)

// materialColor returns the table colour of a material, falling back to the
// default surface colour.
func materialColor(props *l5solver.PropertyTable, name string) color.RGBA {
	mp, _ := props.Lookup(name)
	return color.RGBA{R: uint8(mp.RGB[0]), G: uint8(mp.RGB[1]), B: uint8(mp.RGB[2]), A: 255}
}

// FootprintPlot draws every placed object as its X–Z rectangle, filled with
// its material colour and labelled with its object number.
func FootprintPlot(doc *l5solver.SceneDocument, props *l5solver.PropertyTable) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Packed footprints (%d objects)", len(doc.Objects))
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Z (m)"
	p.X.Min, p.X.Max = 0, doc.Space.X
	p.Y.Min, p.Y.Max = 0, doc.Space.Z
	p.Add(plotter.NewGrid())

	labels := plotter.XYLabels{}
	for _, o := range doc.Objects {
		b := o.Bounds
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: b.XMin, Y: b.ZMin},
			{X: b.XMax, Y: b.ZMin},
			{X: b.XMax, Y: b.ZMax},
			{X: b.XMin, Y: b.ZMax},
		})
		if err != nil {
			return nil, fmt.Errorf("object %d footprint: %w", o.ObjectNum, err)
		}
		poly.Color = materialColor(props, o.Material.Name)
		poly.LineStyle.Width = vg.Points(1)
		p.Add(poly)

		cx, _, cz := b.Center()
		labels.XYs = append(labels.XYs, plotter.XY{X: cx, Y: cz})
		labels.Labels = append(labels.Labels, strconv.Itoa(o.ObjectNum))
	}
	if len(labels.XYs) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("footprint labels: %w", err)
		}
		p.Add(l)
	}
	return p, nil
}

// WriteFootprintPNG renders FootprintPlot as a PNG image.
func WriteFootprintPNG(w io.Writer, doc *l5solver.SceneDocument, props *l5solver.PropertyTable) error {
	p, err := FootprintPlot(doc, props)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(footprintWidth, footprintHeight, "png")
	if err != nil {
		return fmt.Errorf("footprint canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write footprint png: %w", err)
	}
	return nil
}
