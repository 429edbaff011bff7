// Package l3materials owns Layer 3 (Materials) of the scene data model.
//
// Responsibilities: the material vocabulary, per-pixel label maps from the
// external classifier, per-point material assignment, and the per-object
// aggregation that picks a dominant material and a percentile-trimmed
// bounding box.
// Key types: Vocabulary, LabelMap, Options.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
// No SQL/database code is allowed in this package.
package l3materials
