package preview

import (
	"fmt"
	"io"

	"github.com/unixpickle/model3d/model3d"

	"github.com/banshee-data/firescene/internal/scene/l5solver"
)

// SceneMesh builds one box per placed object in solver axes (scene Z is
// depth, scene Y is height) so the mesh lines up with the solver input.
// Objects with an empty box are skipped.
func SceneMesh(doc *l5solver.SceneDocument) *model3d.Mesh {
	mesh := model3d.NewMesh()
	for _, o := range doc.Objects {
		b := o.Bounds
		if b.SizeX() <= 0 || b.SizeY() <= 0 || b.SizeZ() <= 0 {
			continue
		}
		mesh.AddMesh(model3d.NewMeshRect(
			model3d.XYZ(b.XMin, b.ZMin, b.YMin),
			model3d.XYZ(b.XMax, b.ZMax, b.YMax),
		))
	}
	return mesh
}

// WriteSTL writes SceneMesh as binary STL.
func WriteSTL(w io.Writer, doc *l5solver.SceneDocument) error {
	if err := model3d.WriteSTL(w, SceneMesh(doc).TriangleSlice()); err != nil {
		return fmt.Errorf("write scene stl: %w", err)
	}
	return nil
}
