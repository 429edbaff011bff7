package l3materials

import (
	"sort"

	"github.com/banshee-data/firescene/internal/scene"
)

// SlabMaterials reports the modal material of the extreme 10% of points
// along Y and Z: roughly the floor, ceiling, near and far walls of the
// capture. Empty strings mean the slab had no material.
type SlabMaterials struct {
	Bottom string `json:"bottom"`
	Top    string `json:"top"`
	Front  string `json:"front"`
	Back   string `json:"back"`
}

// DetectSlabMaterials computes SlabMaterials over the whole cloud.
func DetectSlabMaterials(cloud scene.PointCloud) SlabMaterials {
	k := len(cloud) / 10
	if k == 0 {
		return SlabMaterials{}
	}
	slab := func(key func(scene.Point) float64, top bool) string {
		pts := cloud.Clone()
		sort.SliceStable(pts, func(i, j int) bool {
			if top {
				return key(pts[i]) > key(pts[j])
			}
			return key(pts[i]) < key(pts[j])
		})
		m, _ := ModalMaterial(pts[:k])
		return m
	}
	y := func(p scene.Point) float64 { return p.Y }
	z := func(p scene.Point) float64 { return p.Z }
	return SlabMaterials{
		Bottom: slab(y, false),
		Top:    slab(y, true),
		Front:  slab(z, false),
		Back:   slab(z, true),
	}
}
