package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBounds(t *testing.T) {
	b := Bounds{XMin: 1, XMax: 3, YMin: 0, YMax: 1, ZMin: 2, ZMax: 2.5}
	assert.InDelta(t, 2.0, b.SizeX(), 1e-12)
	assert.InDelta(t, 1.0, b.SizeY(), 1e-12)
	assert.InDelta(t, 0.5, b.SizeZ(), 1e-12)
	assert.InDelta(t, 1.0, b.FootprintArea(), 1e-12)

	x, y, z := b.Center()
	assert.InDelta(t, 2.0, x, 1e-12)
	assert.InDelta(t, 0.5, y, 1e-12)
	assert.InDelta(t, 2.25, z, 1e-12)

	outer := Bounds{XMin: 0, XMax: 4, YMin: 0, YMax: 1, ZMin: 0, ZMax: 3}
	assert.True(t, outer.Contains(b))
	assert.False(t, b.Contains(outer))
}

func TestPointCloudClone(t *testing.T) {
	pc := PointCloud{{X: 1}, {X: 2}}
	cp := pc.Clone()
	cp[0].X = 99
	assert.Equal(t, 1.0, pc[0].X)
	assert.Nil(t, PointCloud(nil).Clone())
}

func TestIssueErr(t *testing.T) {
	tests := []struct {
		kind IssueKind
		want error
	}{
		{IssueNoMaterial, ErrNoMaterialForObject},
		{IssueUnplaceable, ErrUnplaceableObject},
		{IssueUnknownMaterial, ErrUnknownMaterial},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := Issue{Kind: tt.kind, ObjectNum: 3, Detail: "x"}.Err()
			assert.True(t, errors.Is(err, tt.want))
			assert.Contains(t, err.Error(), "object 3")
		})
	}

	err := Issue{Kind: IssueUnassignedPoints, Detail: "12 points"}.Err()
	assert.EqualError(t, err, "unassigned_points: 12 points")
}

func TestProject(t *testing.T) {
	cloud := PointCloud{
		{U: 1, V: 2, R: 10, G: 20, B: 30},
		{U: -1, V: 0, R: 255},
		{U: 4, V: 4, R: 255},
	}
	img := Project(cloud, 4, 4)
	assert.Equal(t, 4, img.Bounds().Dx())
	c := img.RGBAAt(1, 2)
	assert.Equal(t, uint8(10), c.R)
	assert.Equal(t, uint8(20), c.G)
	assert.Equal(t, uint8(30), c.B)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
}
