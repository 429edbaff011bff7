package l3materials

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
)

// Options controls per-object aggregation.
type Options struct {
	PercentileLow  float64 // lower bound percentile, default 10
	PercentileHigh float64 // upper bound percentile, default 90
	Workers        int     // parallel object aggregations, <= 0 means 1
}

// DefaultOptions returns the 10/90 trim with four workers.
func DefaultOptions() Options {
	return Options{PercentileLow: 10, PercentileHigh: 90, Workers: 4}
}

// Validate checks the percentile range.
func (o Options) Validate() error {
	if o.PercentileLow < 0 || o.PercentileHigh > 100 || o.PercentileLow >= o.PercentileHigh {
		return fmt.Errorf("invalid percentile range [%v, %v]", o.PercentileLow, o.PercentileHigh)
	}
	return nil
}

type objectResult struct {
	record scene.ObjectRecord
	issues []scene.Issue
	ok     bool
}

// DeriveObjects builds one ObjectRecord per object id present in the cloud,
// ordered by id. Each record takes the modal material of the object's
// points (ties to the lexicographically smallest name) and bounds from the
// percentile-trimmed coordinates of the points carrying that material.
//
// Objects without any material are skipped with a no_material issue.
// Materials absent from vocab keep MaterialID -1 with an unknown_material
// issue. Aggregation runs in parallel per object and merges in id order.
func DeriveObjects(cloud scene.PointCloud, vocab *Vocabulary, opts Options) ([]scene.ObjectRecord, []scene.Issue, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	groups := make(map[int][]scene.Point)
	for _, p := range cloud {
		if p.HasObject() {
			groups[p.ObjectNum] = append(groups[p.ObjectNum], p)
		}
	}
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	results := make([]objectResult, len(ids))
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = deriveObject(id, groups[id], vocab, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var records []scene.ObjectRecord
	var issues []scene.Issue
	for _, r := range results {
		for _, is := range r.issues {
			monitoring.Logf("[l3materials] %s", is)
		}
		issues = append(issues, r.issues...)
		if r.ok {
			records = append(records, r.record)
		}
	}

	monitoring.Logf("[l3materials] derived %d objects from %d ids", len(records), len(ids))
	return records, issues, nil
}

func deriveObject(id int, points []scene.Point, vocab *Vocabulary, opts Options) objectResult {
	material, ok := ModalMaterial(points)
	if !ok {
		return objectResult{issues: []scene.Issue{{
			Kind:      scene.IssueNoMaterial,
			ObjectNum: id,
			Detail:    fmt.Sprintf("none of %d points carry a material", len(points)),
		}}}
	}

	var xs, ys, zs []float64
	for _, p := range points {
		if p.Material != material {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
		zs = append(zs, p.Z)
	}

	res := objectResult{ok: true}
	res.record = scene.ObjectRecord{
		ObjectNum:  id,
		Label:      points[0].Label,
		Material:   material,
		MaterialID: -1,
		Bounds:     TrimmedBounds(xs, ys, zs, opts.PercentileLow, opts.PercentileHigh),
		PointCount: len(xs),
	}
	if idx, found := vocab.Index(material); found {
		res.record.MaterialID = idx
	} else {
		res.issues = append(res.issues, scene.Issue{
			Kind:      scene.IssueUnknownMaterial,
			ObjectNum: id,
			Detail:    fmt.Sprintf("material %q is not in the vocabulary", material),
		})
	}
	return res
}

// ModalMaterial returns the most frequent non-empty material. Ties resolve
// to the lexicographically smallest name.
func ModalMaterial(points []scene.Point) (string, bool) {
	counts := make(map[string]int)
	for _, p := range points {
		if p.Material != "" {
			counts[p.Material]++
		}
	}
	best, bestN := "", 0
	for name, n := range counts {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best, bestN > 0
}

// TrimmedBounds computes per-axis [low, high] percentile bounds.
func TrimmedBounds(xs, ys, zs []float64, low, high float64) scene.Bounds {
	axis := func(v []float64) (float64, float64) {
		s := make([]float64, len(v))
		copy(s, v)
		sort.Float64s(s)
		return percentileSorted(s, low), percentileSorted(s, high)
	}
	var b scene.Bounds
	b.XMin, b.XMax = axis(xs)
	b.YMin, b.YMax = axis(ys)
	b.ZMin, b.ZMax = axis(zs)
	return b
}
