package l2objects

import (
	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
)

// Assignment records which object id a detection received and how many
// points it claimed. A detection that claims nothing still consumes its id.
type Assignment struct {
	ObjectNum int
	Detection Detection
	Points    int
}

// AssignObjects stamps each point with the object id and label of the
// smallest detection containing its pixel. Ids start at 1 in sorted order.
// Points already carrying an object id are cleared first; points outside
// every box are left unassigned. The input cloud is not modified.
func AssignObjects(cloud scene.PointCloud, dets []Detection) (scene.PointCloud, []Assignment) {
	sorted := SortDetections(dets)
	assignments := make([]Assignment, len(sorted))
	for i, d := range sorted {
		assignments[i] = Assignment{ObjectNum: i + 1, Detection: d}
	}

	out := make(scene.PointCloud, len(cloud))
	unassigned := 0
	for i, p := range cloud {
		p.ObjectNum = 0
		p.Label = ""
		u, v := float64(p.U), float64(p.V)
		// Processing boxes smallest first and letting the first hit win is
		// the same as claiming only still-unassigned points per box.
		for j := range sorted {
			if sorted[j].Contains(u, v) {
				p.ObjectNum = assignments[j].ObjectNum
				p.Label = sorted[j].Label
				assignments[j].Points++
				break
			}
		}
		if !p.HasObject() {
			unassigned++
		}
		out[i] = p
	}

	monitoring.Logf("[l2objects] assigned %d detections over %d points (%d unassigned)",
		len(sorted), len(cloud), unassigned)
	return out, assignments
}

// CountUnassigned returns the number of points without an object id.
func CountUnassigned(cloud scene.PointCloud) int {
	n := 0
	for _, p := range cloud {
		if !p.HasObject() {
			n++
		}
	}
	return n
}
