package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientReferencePoints is returned when calibration receives fewer than four correspondences.
	ErrInsufficientReferencePoints = errors.New("insufficient reference points")

	// ErrDegenerateCorrespondences is returned when the calibration fit matrix is near-singular.
	ErrDegenerateCorrespondences = errors.New("degenerate reference correspondences")

	// ErrMissingRequiredColumn is returned when an input point table lacks a required column.
	ErrMissingRequiredColumn = errors.New("missing required column")

	// ErrDepthOutOfRange is returned when converted depths exceed the configured sensor range,
	// which almost always means the declared depth unit is wrong.
	ErrDepthOutOfRange = errors.New("depth out of range")

	// ErrEmptyCloud is returned when a stage receives no points.
	ErrEmptyCloud = errors.New("point cloud is empty")

	// ErrNoMaterialForObject marks an object whose points carry no material (non-fatal).
	ErrNoMaterialForObject = errors.New("no material for object")

	// ErrUnplaceableObject marks an object that does not fit in the target volume (non-fatal).
	ErrUnplaceableObject = errors.New("unplaceable object")

	// ErrUnknownMaterial marks a material missing from a lookup table (non-fatal).
	ErrUnknownMaterial = errors.New("unknown material")
)

// IssueKind classifies a non-fatal pipeline condition.
type IssueKind string

const (
	IssueNoMaterial       IssueKind = "no_material"
	IssueUnplaceable      IssueKind = "unplaceable"
	IssueUnknownMaterial  IssueKind = "unknown_material"
	IssueUnassignedPoints IssueKind = "unassigned_points"
	IssueNoDepth          IssueKind = "no_depth"
)

// Issue is a non-fatal condition reported alongside successful output.
type Issue struct {
	Kind      IssueKind `json:"kind"`
	ObjectNum int       `json:"object_num,omitempty"`
	Detail    string    `json:"detail"`
}

func (i Issue) String() string {
	if i.ObjectNum > 0 {
		return fmt.Sprintf("%s (object %d): %s", i.Kind, i.ObjectNum, i.Detail)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
}

// Err returns the sentinel error matching the issue kind, wrapped with the
// issue text, so callers can use errors.Is.
func (i Issue) Err() error {
	var base error
	switch i.Kind {
	case IssueNoMaterial:
		base = ErrNoMaterialForObject
	case IssueUnplaceable:
		base = ErrUnplaceableObject
	case IssueUnknownMaterial:
		base = ErrUnknownMaterial
	default:
		return errors.New(i.String())
	}
	return fmt.Errorf("%w: %s", base, i.String())
}
