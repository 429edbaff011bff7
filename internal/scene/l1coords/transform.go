package l1coords

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
	"github.com/banshee-data/firescene/internal/units"
)

// MinReferencePoints is the smallest correspondence set that pins an affine
// 4x4 transform.
const MinReferencePoints = 4

// MaxConditionNumber bounds the condition number of the homogeneous camera
// matrix used in the fit. Larger values mean the reference points are
// (nearly) collinear or coplanar in camera space.
const MaxConditionNumber = 1e10

// ReferenceCorrespondence pins a pixel+depth sample to a known world point.
// Depth is expressed in the calibration depth unit.
type ReferenceCorrespondence struct {
	U, V  float64
	Depth float64
	World r3.Vector
}

// DefaultReferenceCorrespondences are the stock four-point calibration
// targets, depths in millimeters, world coordinates in meters.
func DefaultReferenceCorrespondences() []ReferenceCorrespondence {
	return []ReferenceCorrespondence{
		{U: 475, V: 83, Depth: 691, World: r3.Vector{X: 0.002, Y: 0.3, Z: 0}},
		{U: 958, V: 130, Depth: 638, World: r3.Vector{X: 0.2468, Y: 0.2415, Z: 0.033}},
		{U: 330, V: 621, Depth: 551, World: r3.Vector{X: 0, Y: 0, Z: 0.033}},
		{U: 1395, V: 648, Depth: 577, World: r3.Vector{X: 0.43, Y: 0, Z: 0}},
	}
}

// CalibratedTransform is an affine sensor→world mapping fitted by
// least squares. WorldToImage is the pseudo-inverse of ImageToWorld.
// Both matrices operate on camera-space meters.
type CalibratedTransform struct {
	Intrinsics   Intrinsics
	ImageToWorld *mat.Dense
	WorldToImage *mat.Dense

	// RMSE is the fit residual over the reference points, in world units.
	RMSE float64
	// Condition is the condition number of the camera-space fit matrix.
	Condition float64
}

// Calibrate fits T = W * pinv(C) where C stacks the deprojected reference
// points and W the world points, both as homogeneous columns. depthUnit is
// the unit of every ReferenceCorrespondence.Depth.
func Calibrate(intr Intrinsics, refs []ReferenceCorrespondence, depthUnit string) (*CalibratedTransform, error) {
	if len(refs) < MinReferencePoints {
		return nil, fmt.Errorf("%w: need at least %d, got %d",
			scene.ErrInsufficientReferencePoints, MinReferencePoints, len(refs))
	}
	if err := intr.Validate(); err != nil {
		return nil, fmt.Errorf("intrinsics: %w", err)
	}
	toMeters, err := units.MetersPer(depthUnit)
	if err != nil {
		return nil, fmt.Errorf("calibration depth unit: %w", err)
	}

	n := len(refs)
	camera := mat.NewDense(4, n, nil)
	world := mat.NewDense(4, n, nil)
	for i, ref := range refs {
		c := intr.Deproject(ref.U, ref.V, ref.Depth*toMeters)
		camera.SetCol(i, []float64{c.X, c.Y, c.Z, 1})
		world.SetCol(i, []float64{ref.World.X, ref.World.Y, ref.World.Z, 1})
	}

	cameraPinv, values, ok := pseudoInverse(camera)
	if !ok {
		return nil, fmt.Errorf("%w: SVD did not converge", scene.ErrDegenerateCorrespondences)
	}
	cond := conditionNumber(values)
	if cond > MaxConditionNumber {
		return nil, fmt.Errorf("%w: condition number %.3g exceeds %.3g",
			scene.ErrDegenerateCorrespondences, cond, MaxConditionNumber)
	}

	imageToWorld := mat.NewDense(4, 4, nil)
	imageToWorld.Mul(world, cameraPinv)

	worldToImage, _, ok := pseudoInverse(imageToWorld)
	if !ok {
		return nil, fmt.Errorf("%w: transform is not invertible", scene.ErrDegenerateCorrespondences)
	}

	t := &CalibratedTransform{
		Intrinsics:   intr,
		ImageToWorld: imageToWorld,
		WorldToImage: worldToImage,
		Condition:    cond,
	}

	var sumSq float64
	for i := 0; i < n; i++ {
		c := camera.ColView(i)
		got := t.apply(t.ImageToWorld, r3.Vector{X: c.AtVec(0), Y: c.AtVec(1), Z: c.AtVec(2)})
		sumSq += got.Sub(refs[i].World).Norm2()
	}
	t.RMSE = math.Sqrt(sumSq / float64(n))

	monitoring.Logf("[l1coords] calibrated from %d reference points: rmse=%.6f cond=%.3g", n, t.RMSE, cond)
	return t, nil
}

func (t *CalibratedTransform) apply(m *mat.Dense, p r3.Vector) r3.Vector {
	in := mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1})
	var out mat.VecDense
	out.MulVec(m, in)
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// TransformPoint deprojects pixel (u, v) at depth (meters) and maps it into
// the world frame.
func (t *CalibratedTransform) TransformPoint(u, v, depth float64) r3.Vector {
	return t.apply(t.ImageToWorld, t.Intrinsics.Deproject(u, v, depth))
}

// CameraPoint maps a world point back into camera space (meters).
func (t *CalibratedTransform) CameraPoint(world r3.Vector) r3.Vector {
	return t.apply(t.WorldToImage, world)
}

// ProjectWorld maps a world point to pixel coordinates and depth (meters).
func (t *CalibratedTransform) ProjectWorld(world r3.Vector) (u, v, depth float64) {
	c := t.CameraPoint(world)
	u, v = t.Intrinsics.Project(c)
	return u, v, c.Z
}

// CloudOptions describe the depth column of an input cloud.
type CloudOptions struct {
	// DepthUnit is the unit of the cloud's z column ("mm", "cm" or "m").
	DepthUnit string
	// MaxDepthM rejects clouds whose depths exceed the sensor range once
	// converted to meters. Zero disables the check.
	MaxDepthM float64
}

// TransformCloud maps every point from sensor space (u, v, depth in z) to
// world space. Rows with no depth reading (zero or NaN) are dropped; the
// remaining rows keep their order, pixel coordinates, colors and labels.
// The input cloud is not modified.
func (t *CalibratedTransform) TransformCloud(cloud scene.PointCloud, opts CloudOptions) (scene.PointCloud, error) {
	if len(cloud) == 0 {
		return nil, scene.ErrEmptyCloud
	}
	toMeters, err := units.MetersPer(opts.DepthUnit)
	if err != nil {
		return nil, fmt.Errorf("cloud depth unit: %w", err)
	}

	out := make(scene.PointCloud, 0, len(cloud))
	for i, p := range cloud {
		if !HasDepth(p.Z) {
			continue
		}
		depth := p.Z * toMeters
		if depth < 0 || math.IsInf(depth, 0) || (opts.MaxDepthM > 0 && depth > opts.MaxDepthM) {
			return nil, fmt.Errorf("%w: row %d depth %.3f m (unit %q, limit %.3f m)",
				scene.ErrDepthOutOfRange, i, depth, opts.DepthUnit, opts.MaxDepthM)
		}
		w := t.TransformPoint(float64(p.U), float64(p.V), depth)
		p.X, p.Y, p.Z = w.X, w.Y, w.Z
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none of %d rows has a depth reading", scene.ErrEmptyCloud, len(cloud))
	}
	return out, nil
}

// HasDepth reports whether a raw depth value is a sensor reading. The
// sensor writes 0 for pixels it could not range.
func HasDepth(z float64) bool {
	return z != 0 && !math.IsNaN(z)
}
