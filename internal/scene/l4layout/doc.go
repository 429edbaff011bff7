// Package l4layout owns Layer 4 (Layout) of the scene data model.
//
// Responsibilities: rescaling world-frame object bounds into the fixed
// simulation volume through one global affine frame, and greedy
// bottom-left packing of object footprints in the X–Z plane.
// Key types: Frame.
//
// Packing is sequential: each placement depends on every earlier one.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5.
// No SQL/database code is allowed in this package.
package l4layout
