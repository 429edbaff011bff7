// Package l5solver owns Layer 5 (Solver) of the scene data model.
//
// Responsibilities: the structured scene document, material property and
// object template tables, and rendering of the document into the
// fire-dynamics solver's namelist input and the viewer's batch script.
// Key types: SceneDocument, PropertyTable, TemplateTable, Renderer.
//
// Output must be byte-for-byte deterministic: every loop over a table is
// driven by a slice or by sorted keys, and every real number is written
// with three decimals.
//
// Dependency rule: L5 may depend on L1-L4.
// No SQL/database code is allowed in this package.
package l5solver
