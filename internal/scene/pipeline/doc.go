// Package pipeline runs the five scene stages in order and collects their
// output.
//
// This package is the composition root: it imports from the layer packages
// (l1coords, l2objects, l3materials, l4layout, l5solver), config and
// preview, but none of those packages import pipeline/.
//
// The run is a strict linear sequence. The first fatal error aborts the run
// and is returned as a *StageFailure naming the stage; non-fatal conditions
// are collected as scene.Issue values on the Result.
package pipeline
