package l4layout

import (
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/firescene/internal/scene"
)

// Frame is a per-axis affine map v' = (v - Min) * Scale shared by every
// object of a capture.
type Frame struct {
	Min   [3]float64
	Scale [3]float64
}

// IdentityFrame leaves coordinates unchanged.
func IdentityFrame() Frame {
	return Frame{Scale: [3]float64{1, 1, 1}}
}

// FrameFromCloud maps the cloud's per-axis [min, max] onto [0, space]. An
// axis with zero span maps every coordinate to 0.
func FrameFromCloud(cloud scene.PointCloud, space scene.SpaceDimensions) (Frame, error) {
	if len(cloud) == 0 {
		return Frame{}, scene.ErrEmptyCloud
	}
	xs := make([]float64, len(cloud))
	ys := make([]float64, len(cloud))
	zs := make([]float64, len(cloud))
	for i, p := range cloud {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}

	var f Frame
	extent := [3]float64{space.X, space.Y, space.Z}
	for axis, vals := range [3][]float64{xs, ys, zs} {
		lo, hi := floats.Min(vals), floats.Max(vals)
		f.Min[axis] = lo
		if span := hi - lo; span > 0 {
			f.Scale[axis] = extent[axis] / span
		}
	}
	return f, nil
}

// Apply maps a box through the frame.
func (f Frame) Apply(b scene.Bounds) scene.Bounds {
	return scene.Bounds{
		XMin: (b.XMin - f.Min[0]) * f.Scale[0],
		XMax: (b.XMax - f.Min[0]) * f.Scale[0],
		YMin: (b.YMin - f.Min[1]) * f.Scale[1],
		YMax: (b.YMax - f.Min[1]) * f.Scale[1],
		ZMin: (b.ZMin - f.Min[2]) * f.Scale[2],
		ZMax: (b.ZMax - f.Min[2]) * f.Scale[2],
	}
}
