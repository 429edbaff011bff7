// Package scene owns the shared data model of the room-to-solver pipeline.
//
// Responsibilities: the point table (Point, PointCloud) and its CSV form,
// per-object aggregates (ObjectRecord, PlacedObject), the packed Scene, and
// the error/issue taxonomy shared by every stage.
//
// The stage packages form a strict chain and may only depend on this package
// and on stages below them:
//
//	l1coords → l2objects → l3materials → l4layout → l5solver
//
// pipeline/ is the composition root; storage/ and preview/ consume its
// results. No SQL is allowed in this package or in the l* packages.
package scene
