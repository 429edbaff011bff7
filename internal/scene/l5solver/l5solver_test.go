package l5solver

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

const testTemplates = `{
  "Chair": {"components": [
    {"name": "seat", "offset": [-0.25, -0.25, 0], "size": [0.5, 0.5, 0.1]},
    {"name": "leg_1", "offset": [-0.30, -0.30, 0], "size": [0.1, 0.1, 0], "floor_anchored": true, "surface": "metal"},
    {"name": "leg_2", "offset": [-0.30, 0.20, 0], "size": [0.1, 0.1, 0], "floor_anchored": true, "surface": "metal"},
    {"name": "leg_3", "offset": [0.20, -0.30, 0], "size": [0.1, 0.1, 0], "floor_anchored": true, "surface": "metal"},
    {"name": "leg_4", "offset": [0.20, 0.20, 0], "size": [0.1, 0.1, 0], "floor_anchored": true, "surface": "metal"},
    {"name": "backrest", "offset": [-0.25, -0.25, 0.1], "size": [0.5, 0.1, 0.6], "surface": "leather"}
  ]}
}`

func testProps() *PropertyTable {
	return &PropertyTable{Materials: map[string]MaterialProperties{
		"fabric":  {Comment: "upholstery", RGB: [3]int{255, 182, 193}, SpecificHeat: 1.3, Conductivity: 0.05, Density: 100, Emissivity: 0.9, HeatOfCombustion: 25000, Thickness: 0.05},
		"leather": {Comment: "hide", RGB: [3]int{160, 82, 45}, SpecificHeat: 1.5, Conductivity: 0.16, Density: 860, Emissivity: 0.9, HeatOfCombustion: 20000, Thickness: 0.005},
		"metal":   {Comment: "steel", RGB: [3]int{192, 192, 192}, SpecificHeat: 0.46, Conductivity: 45.8, Density: 7850, Emissivity: 0.95, Thickness: 0.003},
	}}
}

func testTemplateTable(t *testing.T) TemplateTable {
	t.Helper()
	tt, err := LoadTemplateTable(strings.NewReader(testTemplates))
	require.NoError(t, err)
	return tt
}

func sofaDoc() *SceneDocument {
	return &SceneDocument{
		Space: scene.SpaceDimensions{X: 10, Y: 3, Z: 8},
		Objects: []DocumentObject{{
			ObjectNum: 2,
			Label:     "sofa",
			Material:  MaterialRef{ID: 3, Name: "fabric"},
			Bounds:    scene.Bounds{XMin: 0, XMax: 2, YMin: 0, YMax: 0.8, ZMin: 0, ZMax: 1},
		}},
	}
}

func TestRender_ExactOutput(t *testing.T) {
	r := NewRenderer(testProps(), nil)
	got, issues := r.Render(sofaDoc())
	assert.Empty(t, issues)

	want := `&HEAD CHID='room_simulation', TITLE='Room with detected objects' /

&TIME T_END=10.000 /

&REAC ID='POLYURETHANE', FUEL='REAC_FUEL', C=6.300, H=7.100, O=2.100, N=1.000, SOOT_YIELD=0.100, HEAT_OF_COMBUSTION=24000.000, IDEAL=.TRUE. /

&MESH IJK=100,80,30, XB=0.000,10.000,0.000,8.000,0.000,3.000 /

! Material surface definitions
! fabric: upholstery
&MATL ID='fabric_MATL', SPECIFIC_HEAT=1.300, CONDUCTIVITY=0.050, DENSITY=100.000, EMISSIVITY=0.900, HEAT_OF_COMBUSTION=25000.000 /
&SURF ID='fabric', RGB=255,182,193, MATL_ID='fabric_MATL', THICKNESS=0.050 /

! Object definitions
! sofa - fabric
&OBST XB=0.000,2.000,0.000,1.000,0.000,0.800, SURF_ID='fabric' /

! Openings
! door (synthesized)
&VENT XB=0.000,0.000,1.000,2.000,0.000,2.000, SURF_ID='OPEN' /
! window (synthesized)
&VENT XB=4.000,5.000,0.000,0.000,1.000,2.000, SURF_ID='OPEN' /

! Diagnostics
&DEVC ID='TC_1', QUANTITY='THERMOCOUPLE', XYZ=2.500,2.000,2.700 /
&DEVC ID='TC_2', QUANTITY='THERMOCOUPLE', XYZ=5.000,4.000,2.700 /
&DEVC ID='TC_3', QUANTITY='THERMOCOUPLE', XYZ=7.500,6.000,2.700 /
&SLCF PBY=2.000, QUANTITY='TEMPERATURE' /

! Fire source
&SURF ID='FIRE', RGB=255,0,0, HRRPUA=1000.000, RAMP_Q='FIRE_RAMP' /
&RAMP ID='FIRE_RAMP', T=0.000, F=0.000 /
&RAMP ID='FIRE_RAMP', T=2.000, F=1.000 /
&RAMP ID='FIRE_RAMP', T=8.000, F=1.000 /
&RAMP ID='FIRE_RAMP', T=10.000, F=0.000 /
&OBST XB=4.500,5.500,2.000,3.000,0.000,0.500, COLOR='RED', SURF_ID='FIRE' /

&TAIL /
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestFmtReal(t *testing.T) {
	assert.Equal(t, "0.000", fmtReal(-0.0001))
	assert.Equal(t, "1.235", fmtReal(1.2349999))
	assert.Equal(t, "-2.500", fmtReal(-2.5))
	assert.Equal(t, "24000.000", fmtReal(24000))
}

func chairSofaDoc() *SceneDocument {
	return &SceneDocument{
		Space: scene.SpaceDimensions{X: 10, Y: 3, Z: 8},
		Objects: []DocumentObject{
			{ObjectNum: 2, Label: "sofa", Material: MaterialRef{ID: 3, Name: "fabric"},
				Bounds: scene.Bounds{XMin: 0, XMax: 2, YMin: 0, YMax: 0.8, ZMin: 0, ZMax: 1}},
			{ObjectNum: 1, Label: "chair", Material: MaterialRef{ID: 8, Name: "leather"},
				Bounds: scene.Bounds{XMin: 2, XMax: 2.6, YMin: 0, YMax: 0.9, ZMin: 0, ZMax: 0.6}},
		},
	}
}

func section(text, start, end string) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	rest := text[i:]
	j := strings.Index(rest, end)
	if j < 0 {
		return rest
	}
	return rest[:j]
}

func TestRender_ChairTemplate(t *testing.T) {
	r := NewRenderer(testProps(), testTemplateTable(t))
	out, issues := r.Render(chairSofaDoc())
	assert.Empty(t, issues)

	objects := section(out, "! Object definitions", "! Openings")
	assert.Equal(t, 7, strings.Count(objects, "&OBST"), "sofa box plus six chair parts")

	chair := section(out, "! chair - leather", "! Openings")
	lines := strings.Split(strings.TrimSpace(chair), "\n")
	require.Len(t, lines, 7)
	// Centre in solver axes is (2.3, 0.3, 0.45).
	assert.Equal(t, "&OBST XB=2.050,2.550,0.050,0.550,0.450,0.550, SURF_ID='leather' /", lines[1])
	assert.Equal(t, "&OBST XB=2.000,2.100,0.000,0.100,0.000,0.450, SURF_ID='metal' /", lines[2])
	assert.Equal(t, "&OBST XB=2.500,2.600,0.500,0.600,0.000,0.450, SURF_ID='metal' /", lines[5])
	assert.Equal(t, "&OBST XB=2.050,2.550,0.050,0.150,0.550,1.150, SURF_ID='leather' /", lines[6])

	// Surfaces: object materials in order, then template parts.
	surfaces := section(out, "! Material surface definitions", "! Object definitions")
	iFabric := strings.Index(surfaces, "&SURF ID='fabric'")
	iLeather := strings.Index(surfaces, "&SURF ID='leather'")
	iMetal := strings.Index(surfaces, "&SURF ID='metal'")
	assert.True(t, iFabric >= 0 && iFabric < iLeather && iLeather < iMetal)
	assert.Equal(t, 3, strings.Count(surfaces, "&SURF "))
	// Inert metal has no heat of combustion.
	assert.Contains(t, surfaces, "&MATL ID='metal_MATL', SPECIFIC_HEAT=0.460, CONDUCTIVITY=45.800, DENSITY=7850.000, EMISSIVITY=0.950 /")
}

func TestRender_TemplateOverride(t *testing.T) {
	doc := chairSofaDoc()
	doc.Objects[1].Overrides = map[string][3]float64{"seat": {0.8, 0.8, 0.2}}
	r := NewRenderer(testProps(), testTemplateTable(t))
	out, _ := r.Render(doc)
	assert.Contains(t, out, "&OBST XB=2.050,2.850,0.050,0.850,0.450,0.650, SURF_ID='leather' /")
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer(testProps(), testTemplateTable(t))
	first, _ := r.Render(chairSofaDoc())
	for i := 0; i < 20; i++ {
		again, _ := r.Render(chairSofaDoc())
		require.Equal(t, first, again)
	}
}

func TestRender_UnknownMaterialFallsBack(t *testing.T) {
	doc := sofaDoc()
	doc.Objects[0].Material.Name = "unobtainium"
	r := NewRenderer(testProps(), nil)
	out, issues := r.Render(doc)

	require.Len(t, issues, 1)
	assert.Equal(t, scene.IssueUnknownMaterial, issues[0].Kind)
	assert.Equal(t, 2, issues[0].ObjectNum)
	assert.ErrorIs(t, issues[0].Err(), scene.ErrUnknownMaterial)
	assert.Contains(t, out, "&SURF ID='unobtainium', RGB=140,140,140, MATL_ID='unobtainium_MATL', THICKNESS=0.020 /")
	assert.Contains(t, out, "SURF_ID='unobtainium' /")
}

func TestRender_OpeningSynthesis(t *testing.T) {
	r := NewRenderer(testProps(), nil)

	out, _ := r.Render(sofaDoc())
	assert.Equal(t, 1, strings.Count(out, "! door (synthesized)"))
	assert.Equal(t, 1, strings.Count(out, "! window (synthesized)"))
	assert.Equal(t, 2, strings.Count(out, "SURF_ID='OPEN'"))

	// A detected door replaces the synthesized one and is not an obstruction.
	doc := sofaDoc()
	doc.Objects = append(doc.Objects, DocumentObject{
		ObjectNum: 5, Label: "Front Door", Material: MaterialRef{Name: "wood"},
		Bounds: scene.Bounds{XMin: 9.5, XMax: 9.9, YMin: 0, YMax: 2.1, ZMin: 3, ZMax: 4},
	})
	out, issues := r.Render(doc)
	assert.Empty(t, issues, "door materials are not rendered as surfaces")
	assert.NotContains(t, out, "door (synthesized)")
	assert.Contains(t, out, "! door (object 5)\n&VENT XB=10.000,10.000,3.000,4.000,0.000,2.100, SURF_ID='OPEN' /")
	assert.Equal(t, 1, strings.Count(out, "! window (synthesized)"))
	assert.NotContains(t, out, "SURF_ID='wood'")
}

func TestRender_SmallRoomKeepsFixedGeometryInsideMesh(t *testing.T) {
	r := NewRenderer(testProps(), nil)
	doc := &SceneDocument{Space: scene.SpaceDimensions{X: 3, Y: 2.5, Z: 3}}

	out, _ := r.Render(doc)
	assert.Contains(t, out, "&MESH IJK=30,30,25, XB=0.000,3.000,0.000,3.000,0.000,2.500 /")
	assert.Contains(t, out, "&OBST XB=2.000,3.000,2.000,3.000,0.000,0.500, COLOR='RED', SURF_ID='FIRE' /")
	assert.Contains(t, out, "! door (synthesized)\n&VENT XB=0.000,0.000,1.000,2.000,0.000,2.000, SURF_ID='OPEN' /")
	assert.Contains(t, out, "! window (synthesized)\n&VENT XB=2.000,3.000,0.000,0.000,1.000,2.000, SURF_ID='OPEN' /")
	assert.Contains(t, out, "&SLCF PBY=2.000, QUANTITY='TEMPERATURE' /")

	// Shallower than the default slice plane and door.
	doc.Space.Z = 1.5
	out, _ = r.Render(doc)
	assert.Contains(t, out, "&VENT XB=0.000,0.000,0.500,1.500,0.000,2.000, SURF_ID='OPEN' /")
	assert.Contains(t, out, "&OBST XB=2.000,3.000,0.500,1.500,0.000,0.500, COLOR='RED', SURF_ID='FIRE' /")
	assert.Contains(t, out, "&SLCF PBY=0.750, QUANTITY='TEMPERATURE' /")
}

func TestFitBox(t *testing.T) {
	tests := []struct {
		name string
		in   [6]float64
		ext  [3]float64
		want [6]float64
	}{
		{"already inside", [6]float64{4.5, 5.5, 2, 3, 0, 0.5}, [3]float64{10, 8, 3}, [6]float64{4.5, 5.5, 2, 3, 0, 0.5}},
		{"shifted back", [6]float64{4.5, 5.5, 2, 3, 0, 0.5}, [3]float64{3, 3, 2.5}, [6]float64{2, 3, 2, 3, 0, 0.5}},
		{"plane stays a plane", [6]float64{4, 5, 0, 0, 1, 2}, [3]float64{3, 3, 2.5}, [6]float64{2, 3, 0, 0, 1, 2}},
		{"longer than mesh", [6]float64{0, 4, 0, 1, 0, 1}, [3]float64{2, 3, 3}, [6]float64{0, 2, 0, 1, 0, 1}},
		{"negative origin", [6]float64{-1, 0.5, 0, 1, 0, 1}, [3]float64{3, 3, 3}, [6]float64{0, 1.5, 0, 1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FitBox(tt.in, tt.ext))
		})
	}
}

func TestOpeningKind(t *testing.T) {
	assert.Equal(t, "door", OpeningKind("Sliding DOOR"))
	assert.Equal(t, "window", OpeningKind("window"))
	assert.Equal(t, "", OpeningKind("chair"))
}

func TestSnapToWall(t *testing.T) {
	ext := [3]float64{10, 8, 3}
	assert.Equal(t, [6]float64{0, 0, 2, 3, 0, 2}, SnapToWall([6]float64{0.2, 1, 2, 3, 0, 2}, ext))
	assert.Equal(t, [6]float64{4, 5, 8, 8, 1, 2}, SnapToWall([6]float64{4, 5, 7, 7.9, 1, 2}, ext))
	assert.Equal(t, [6]float64{4, 5, 0, 0, 1, 2}, SnapToWall([6]float64{4, 5, 0.1, 0.5, 1, 2}, ext))
}

func TestSerializeAndLoadDocument(t *testing.T) {
	s := scene.Scene{
		Space: scene.SpaceDimensions{X: 10, Y: 3, Z: 8},
		Objects: []scene.PlacedObject{{
			Record: scene.ObjectRecord{ObjectNum: 4, Label: "sofa", Material: "fabric", MaterialID: 3},
			Bounds: scene.Bounds{XMin: 0, XMax: 2, YMin: 0.1, YMax: 0.9, ZMin: 0, ZMax: 1},
		}},
	}
	doc := Serialize(s)
	require.Len(t, doc.Objects, 1)
	assert.InDelta(t, 2.0, doc.Objects[0].Dimensions.Depth, 1e-12)
	assert.InDelta(t, 0.8, doc.Objects[0].Dimensions.Width, 1e-12)
	assert.InDelta(t, 1.0, doc.Objects[0].Dimensions.Height, 1e-12)

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc))
	assert.Contains(t, buf.String(), `"space_dimensions"`)
	assert.Contains(t, buf.String(), `"x_min": 0`)
	assert.NotContains(t, buf.String(), "overrides")

	back, err := LoadDocument(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}

	_, err = LoadDocument(strings.NewReader(`{"space_dimensions": {"x": 0, "y": 1, "z": 1}, "objects": []}`))
	assert.Error(t, err)
}

func TestLoadTables(t *testing.T) {
	props, err := LoadPropertyTable(strings.NewReader(`{
		"default": {"comment": "gypsum", "rgb": [200, 200, 200], "thickness": 0.01},
		"materials": {"wood": {"comment": "pine", "rgb": [139, 69, 19], "emissivity": 0.9}}
	}`))
	require.NoError(t, err)
	p, ok := props.Lookup("wood")
	assert.True(t, ok)
	assert.Equal(t, [3]int{139, 69, 19}, p.RGB)
	p, ok = props.Lookup("glass")
	assert.False(t, ok)
	assert.Equal(t, "gypsum", p.Comment)
	assert.Equal(t, []string{"wood"}, props.Names())

	var nilTable *PropertyTable
	p, ok = nilTable.Lookup("wood")
	assert.False(t, ok)
	assert.Equal(t, DefaultMaterial, p)

	_, err = LoadPropertyTable(strings.NewReader(`{"materials": {"x": {"rgb": [300, 0, 0]}}}`))
	assert.Error(t, err)

	tt := testTemplateTable(t)
	_, ok = tt.Lookup("  CHAIR ")
	assert.True(t, ok)
	_, err = LoadTemplateTable(strings.NewReader(`{"table": {"components": []}}`))
	assert.Error(t, err)
}

func TestRenderSmokeviewScript(t *testing.T) {
	got := RenderSmokeviewScript(DefaultRenderOptions())
	want := "LOAD3DSMOKE\n TEMPERATURE\nLOADSLCF\n PBY=2.000, QUANTITY=TEMPERATURE\nRENDERALL\n1 0\nroom_simulation\nMAKEMOVIE\nmovie_fire\nroom_simulation\n10\n" +
		"LOAD3DSMOKE\n SOOT DENSITY\nLOADSLCF\n PBY=2.000, QUANTITY=TEMPERATURE\nRENDERALL\n1 0\nroom_simulation\nMAKEMOVIE\nmovie_smoke\nroom_simulation\n10\n"
	assert.Equal(t, want, got)
}
