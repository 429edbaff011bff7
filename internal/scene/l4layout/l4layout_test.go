package l4layout

import (
	"errors"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func box(x0, z0, w, d, h float64) scene.Bounds {
	return scene.Bounds{XMin: x0, XMax: x0 + w, YMin: 0, YMax: h, ZMin: z0, ZMax: z0 + d}
}

func TestFrameFromCloud(t *testing.T) {
	cloud := scene.PointCloud{
		{X: -1, Y: 2, Z: 5},
		{X: 4, Y: 2, Z: 9},
	}
	f, err := FrameFromCloud(cloud, scene.SpaceDimensions{X: 10, Y: 3, Z: 8})
	require.NoError(t, err)

	b := f.Apply(scene.Bounds{XMin: -1, XMax: 4, YMin: 2, YMax: 2, ZMin: 5, ZMax: 9})
	assert.InDelta(t, 0.0, b.XMin, 1e-12)
	assert.InDelta(t, 10.0, b.XMax, 1e-12)
	assert.InDelta(t, 0.0, b.ZMin, 1e-12)
	assert.InDelta(t, 8.0, b.ZMax, 1e-12)
	// Zero span on Y collapses to 0.
	assert.Equal(t, 0.0, b.YMin)
	assert.Equal(t, 0.0, b.YMax)

	_, err = FrameFromCloud(nil, scene.SpaceDimensions{X: 1, Y: 1, Z: 1})
	assert.ErrorIs(t, err, scene.ErrEmptyCloud)
}

func TestOverlaps(t *testing.T) {
	a := box(0, 0, 2, 1, 1)
	assert.True(t, Overlaps(a, box(1, 0.5, 2, 2, 1)))
	assert.False(t, Overlaps(a, box(2, 0, 1, 1, 1)), "shared edge is not overlap")
	assert.False(t, Overlaps(a, box(0, 1, 1, 1, 1)))
	// Y never matters.
	assert.True(t, Overlaps(a, scene.Bounds{XMin: 0, XMax: 1, YMin: 50, YMax: 60, ZMin: 0, ZMax: 1}))
}

func TestPackScene_ChairAndSofa(t *testing.T) {
	records := []scene.ObjectRecord{
		{ObjectNum: 1, Label: "chair", Material: "leather", Bounds: box(3.1, 4.7, 0.6, 0.6, 0.9)},
		{ObjectNum: 2, Label: "sofa", Material: "fabric", Bounds: box(-0.2, 1.3, 2.0, 1.0, 0.8)},
	}
	s, issues := PackScene(records, IdentityFrame(), scene.SpaceDimensions{X: 10, Y: 3, Z: 8})
	assert.Empty(t, issues)
	require.Len(t, s.Objects, 2)

	sofa := s.Objects[0]
	assert.Equal(t, "sofa", sofa.Record.Label)
	assert.InDelta(t, 0.0, sofa.Bounds.XMin, 1e-12)
	assert.InDelta(t, 0.0, sofa.Bounds.ZMin, 1e-12)
	assert.InDelta(t, 2.0, sofa.Bounds.XMax, 1e-12)

	chair := s.Objects[1]
	assert.Equal(t, "chair", chair.Record.Label)
	assert.InDelta(t, 2.0, chair.Bounds.XMin, 1e-12)
	assert.InDelta(t, 0.0, chair.Bounds.ZMin, 1e-12)
	assert.InDelta(t, 0.6, chair.Bounds.SizeX(), 1e-12)
	assert.InDelta(t, 0.6, chair.Bounds.SizeZ(), 1e-12)
	// Height preserved.
	assert.InDelta(t, 0.9, chair.Bounds.YMax, 1e-12)

	require.NoError(t, Validate(s))
}

func TestPackScene_Unplaceable(t *testing.T) {
	records := []scene.ObjectRecord{
		{ObjectNum: 1, Bounds: box(0, 0, 3, 3, 1)},
		{ObjectNum: 2, Bounds: box(0, 0, 3, 3, 1)},
		{ObjectNum: 3, Bounds: box(0, 0, 12, 1, 1)},
	}
	s, issues := PackScene(records, IdentityFrame(), scene.SpaceDimensions{X: 4, Y: 3, Z: 4})
	require.Len(t, s.Objects, 1)
	require.Len(t, issues, 2)

	// Largest first: object 3 (12x1) does not fit, then 1 is placed, then 2 has no slot.
	assert.Equal(t, 3, issues[0].ObjectNum)
	assert.Equal(t, 2, issues[1].ObjectNum)
	for _, is := range issues {
		assert.Equal(t, scene.IssueUnplaceable, is.Kind)
		assert.True(t, errors.Is(is.Err(), scene.ErrUnplaceableObject))
	}
	assert.Equal(t, 1, s.Objects[0].Record.ObjectNum)
}

func TestPackScene_ExactFit(t *testing.T) {
	records := []scene.ObjectRecord{
		{ObjectNum: 1, Bounds: box(0, 0, 5, 4, 1)},
		{ObjectNum: 2, Bounds: box(0, 0, 5, 4, 1)},
		{ObjectNum: 3, Bounds: box(0, 0, 5, 4, 1)},
		{ObjectNum: 4, Bounds: box(0, 0, 5, 4, 1)},
	}
	s, issues := PackScene(records, IdentityFrame(), scene.SpaceDimensions{X: 10, Y: 3, Z: 8})
	assert.Empty(t, issues)
	require.Len(t, s.Objects, 4)

	// Bottom row first, then the next row up.
	corners := [][2]float64{{0, 0}, {5, 0}, {0, 4}, {5, 4}}
	for i, o := range s.Objects {
		assert.InDelta(t, corners[i][0], o.Bounds.XMin, 1e-12, "object %d x", i)
		assert.InDelta(t, corners[i][1], o.Bounds.ZMin, 1e-12, "object %d z", i)
	}
	require.NoError(t, Validate(s))
}

func TestPackScene_RandomInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	space := scene.SpaceDimensions{X: 10, Y: 3, Z: 8}
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(15)
		records := make([]scene.ObjectRecord, n)
		for i := range records {
			records[i] = scene.ObjectRecord{
				ObjectNum: i + 1,
				Bounds:    box(rng.Float64()*5, rng.Float64()*5, 0.2+rng.Float64()*4, 0.2+rng.Float64()*4, rng.Float64()*2),
			}
		}
		s, issues := PackScene(records, IdentityFrame(), space)
		require.NoError(t, Validate(s), "trial %d", trial)
		assert.Equal(t, n, len(s.Objects)+len(issues), "every object placed or reported, trial %d", trial)
	}
}

func TestValidate_DetectsOverlap(t *testing.T) {
	s := scene.Scene{
		Space: scene.SpaceDimensions{X: 10, Y: 3, Z: 8},
		Objects: []scene.PlacedObject{
			{Record: scene.ObjectRecord{ObjectNum: 1}, Bounds: box(0, 0, 2, 2, 1)},
			{Record: scene.ObjectRecord{ObjectNum: 2}, Bounds: box(1, 1, 2, 2, 1)},
		},
	}
	assert.Error(t, Validate(s))

	s.Objects = s.Objects[:1]
	s.Objects[0].Bounds = box(9, 0, 2, 2, 1)
	assert.Error(t, Validate(s))
}
