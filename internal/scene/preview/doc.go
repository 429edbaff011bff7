// Package preview renders quick-look artifacts for a packed scene: a
// top-down footprint plot, an STL mesh of the obstructions and an HTML
// report. Previews read the scene document only and never change it.
package preview
