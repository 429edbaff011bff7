package preview

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/firescene/internal/scene"
	"github.com/banshee-data/firescene/internal/scene/l5solver"
)

// materialCounts returns material names in sorted order with the number of
// placed objects carrying each one. Objects without a material count as
// "INERT".
func materialCounts(doc *l5solver.SceneDocument) ([]string, []int) {
	counts := make(map[string]int)
	for _, o := range doc.Objects {
		name := o.Material.Name
		if name == "" {
			name = "INERT"
		}
		counts[name]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]int, len(names))
	for i, name := range names {
		values[i] = counts[name]
	}
	return names, values
}

func materialBar(doc *l5solver.SceneDocument) *charts.Bar {
	names, values := materialCounts(doc)
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: v}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Objects per material", Subtitle: fmt.Sprintf("objects=%d", len(doc.Objects))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("objects", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func footprintScatter(doc *l5solver.SceneDocument, issues []scene.Issue) *charts.Scatter {
	pts := make([]opts.ScatterData, 0, len(doc.Objects))
	for _, o := range doc.Objects {
		cx, _, cz := o.Bounds.Center()
		pts = append(pts, opts.ScatterData{
			Name:  fmt.Sprintf("#%d %s (%s)", o.ObjectNum, o.Label, o.Material.Name),
			Value: []interface{}{cx, cz, o.Bounds.FootprintArea()},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Placed objects",
			Subtitle: fmt.Sprintf("space=%.1fx%.1fx%.1f m issues=%d", doc.Space.X, doc.Space.Y, doc.Space.Z, len(issues)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: doc.Space.X, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: doc.Space.Z, Name: "Z (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("objects", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	return scatter
}

// WriteReport renders an HTML page with the material breakdown and the
// footprint centres of a packed scene.
func WriteReport(w io.Writer, doc *l5solver.SceneDocument, issues []scene.Issue) error {
	page := components.NewPage()
	page.PageTitle = "Scene report"
	page.AddCharts(materialBar(doc), footprintScatter(doc, issues))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
