// Package l2objects owns Layer 2 (Objects) of the scene data model.
//
// Responsibilities: loading detector output and stamping every point with
// the identity of the smallest detection box that contains its pixel.
// Key types: Detection, Assignment.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
// No SQL/database code is allowed in this package.
package l2objects
