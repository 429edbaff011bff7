package l4layout

import (
	"fmt"
	"sort"

	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
)

// Tolerance absorbs float error when testing an object against the
// container edges.
const Tolerance = 1e-9

// Overlaps reports whether two boxes intersect in the X–Z plane. Boxes that
// only share an edge do not overlap.
func Overlaps(a, b scene.Bounds) bool {
	xOverlap := a.XMax > b.XMin && b.XMax > a.XMin
	zOverlap := a.ZMax > b.ZMin && b.ZMax > a.ZMin
	return xOverlap && zOverlap
}

// PackScene rescales each record through frame and places it in the
// volume. Objects are taken by X–Z footprint area, largest first. Each one
// goes to the feasible candidate corner with the smallest z, then smallest
// x; candidates are {0} and the far edges of already placed objects.
// Footprint and height never change. Objects that fit nowhere are left out
// and reported as unplaceable issues.
func PackScene(records []scene.ObjectRecord, frame Frame, space scene.SpaceDimensions) (scene.Scene, []scene.Issue) {
	type item struct {
		rec    scene.ObjectRecord
		bounds scene.Bounds
	}
	items := make([]item, len(records))
	for i, r := range records {
		items[i] = item{rec: r, bounds: frame.Apply(r.Bounds)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].bounds.FootprintArea() > items[j].bounds.FootprintArea()
	})

	out := scene.Scene{Space: space}
	var issues []scene.Issue
	var placed []scene.Bounds

	for _, it := range items {
		w, d := it.bounds.SizeX(), it.bounds.SizeZ()

		xs := []float64{0}
		zs := []float64{0}
		for _, p := range placed {
			xs = append(xs, p.XMax)
			zs = append(zs, p.ZMax)
		}

		found := false
		var bestX, bestZ float64
		for _, x0 := range xs {
			if x0+w > space.X+Tolerance {
				continue
			}
			for _, z0 := range zs {
				if z0+d > space.Z+Tolerance {
					continue
				}
				cand := scene.Bounds{XMin: x0, XMax: x0 + w, ZMin: z0, ZMax: z0 + d}
				if collides(cand, placed) {
					continue
				}
				if !found || z0 < bestZ || (z0 == bestZ && x0 < bestX) {
					found = true
					bestX, bestZ = x0, z0
				}
			}
		}

		if !found {
			is := scene.Issue{
				Kind:      scene.IssueUnplaceable,
				ObjectNum: it.rec.ObjectNum,
				Detail: fmt.Sprintf("footprint %.3f x %.3f does not fit in %.3f x %.3f",
					w, d, space.X, space.Z),
			}
			monitoring.Logf("[l4layout] %s", is)
			issues = append(issues, is)
			continue
		}

		b := scene.Bounds{
			XMin: bestX, XMax: bestX + w,
			YMin: it.bounds.YMin, YMax: it.bounds.YMax,
			ZMin: bestZ, ZMax: bestZ + d,
		}
		placed = append(placed, b)
		out.Objects = append(out.Objects, scene.PlacedObject{Record: it.rec, Bounds: b})
	}

	monitoring.Logf("[l4layout] placed %d of %d objects in %.3fx%.3fx%.3f",
		len(out.Objects), len(records), space.X, space.Y, space.Z)
	return out, issues
}

func collides(b scene.Bounds, placed []scene.Bounds) bool {
	for _, p := range placed {
		if Overlaps(b, p) {
			return true
		}
	}
	return false
}

// Validate checks the packing invariants of a scene: every footprint lies
// inside the volume and no two footprints overlap.
func Validate(s scene.Scene) error {
	for i, a := range s.Objects {
		b := a.Bounds
		if b.XMin < -Tolerance || b.ZMin < -Tolerance ||
			b.XMax > s.Space.X+Tolerance || b.ZMax > s.Space.Z+Tolerance {
			return fmt.Errorf("object %d lies outside the volume", a.Record.ObjectNum)
		}
		for _, o := range s.Objects[i+1:] {
			if Overlaps(b, o.Bounds) {
				return fmt.Errorf("objects %d and %d overlap", a.Record.ObjectNum, o.Record.ObjectNum)
			}
		}
	}
	return nil
}
