// Package l1coords owns Layer 1 (Coordinates) of the scene data model.
//
// Responsibilities: pinhole deprojection of pixel+depth samples, affine
// calibration from reference correspondences, and transformation of whole
// point clouds from sensor space to world space.
// Key types: Intrinsics, ReferenceCorrespondence, CalibratedTransform.
//
// Depth unit rule: every depth is converted to meters before deprojection.
// Callers declare the unit of their reference depths and of their cloud
// depths separately, so a millimeter calibration can drive a meter cloud.
//
// Dependency rule: L1 depends only on internal/scene and internal/units.
// No SQL/database code is allowed in this package.
package l1coords
