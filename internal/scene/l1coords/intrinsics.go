package l1coords

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// DistortionModel names a lens distortion model.
type DistortionModel string

const (
	DistortionNone                DistortionModel = "none"
	DistortionInverseBrownConrady DistortionModel = "inverse_brown_conrady"
)

// Intrinsics are pinhole camera parameters for the color stream.
// Coefficients follow the sensor SDK ordering k1, k2, p1, p2, k3.
type Intrinsics struct {
	Width  int
	Height int
	Fx     float64
	Fy     float64
	Ppx    float64
	Ppy    float64
	Model  DistortionModel
	Coeffs [5]float64
}

// DefaultIntrinsics are the factory parameters of the 1280x720 color stream
// used for the stock reference correspondences.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{
		Width:  1280,
		Height: 720,
		Fx:     906.0663452148438,
		Fy:     905.1234741210938,
		Ppx:    646.94970703125,
		Ppy:    374.4667663574219,
		Model:  DistortionNone,
	}
}

// Validate checks that the focal lengths are usable.
func (in Intrinsics) Validate() error {
	if in.Fx <= 0 || in.Fy <= 0 {
		return fmt.Errorf("focal lengths must be positive, got fx=%v fy=%v", in.Fx, in.Fy)
	}
	switch in.Model {
	case "", DistortionNone, DistortionInverseBrownConrady:
	default:
		return fmt.Errorf("unsupported distortion model %q", in.Model)
	}
	return nil
}

// Deproject maps pixel (u, v) at the given depth (meters) to a camera-space
// point in meters.
func (in Intrinsics) Deproject(u, v, depth float64) r3.Vector {
	x := (u - in.Ppx) / in.Fx
	y := (v - in.Ppy) / in.Fy

	if in.Model == DistortionInverseBrownConrady {
		k1, k2, p1, p2, k3 := in.Coeffs[0], in.Coeffs[1], in.Coeffs[2], in.Coeffs[3], in.Coeffs[4]
		xo, yo := x, y
		for i := 0; i < 10; i++ {
			r2 := x*x + y*y
			icdist := 1 / (1 + ((k3*r2+k2)*r2+k1)*r2)
			dx := 2*p1*x*y + p2*(r2+2*x*x)
			dy := 2*p2*x*y + p1*(r2+2*y*y)
			x = (xo - dx) * icdist
			y = (yo - dy) * icdist
		}
	}

	return r3.Vector{X: depth * x, Y: depth * y, Z: depth}
}

// Project maps a camera-space point back to pixel coordinates. Distortion
// is not re-applied; with a zero-coefficient model this is the exact
// inverse of Deproject.
func (in Intrinsics) Project(p r3.Vector) (u, v float64) {
	if p.Z == 0 {
		return in.Ppx, in.Ppy
	}
	u = p.X/p.Z*in.Fx + in.Ppx
	v = p.Y/p.Z*in.Fy + in.Ppy
	return u, v
}
