package pipeline

import "fmt"

// Stage names one step of the run.
type Stage string

const (
	StageTransform Stage = "transform"
	StageSegment   Stage = "segment"
	StageMaterial  Stage = "material"
	StageLayout    Stage = "layout"
	StageSerialize Stage = "serialize"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageTransform, StageSegment, StageMaterial, StageLayout, StageSerialize}

// StageFailure wraps the fatal error that aborted a run.
type StageFailure struct {
	Stage Stage
	Err   error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageFailure) Unwrap() error { return e.Err }

func fail(stage Stage, err error) error {
	return &StageFailure{Stage: stage, Err: err}
}
