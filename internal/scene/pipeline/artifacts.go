package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/firescene/internal/fsutil"
	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
	"github.com/banshee-data/firescene/internal/scene/l3materials"
	"github.com/banshee-data/firescene/internal/scene/l5solver"
	"github.com/banshee-data/firescene/internal/scene/preview"
)

// Artifact file names that do not depend on the run id.
const (
	PointsFile    = "point_cloud_with_objects.csv"
	IssuesFile    = "issues.json"
	FootprintFile = "footprint.png"
	MeshFile      = "obstructions.stl"
	ReportFile    = "report.html"
)

// Summary is the machine-readable outcome written next to the artifacts.
type Summary struct {
	CHID    string                    `json:"chid"`
	Points  int                       `json:"points"`
	Objects int                       `json:"objects"`
	Slabs   l3materials.SlabMaterials `json:"slabs"`
	Issues  []scene.Issue             `json:"issues"`
	Space   scene.SpaceDimensions     `json:"space_dimensions"`
}

// Artifacts renders every output of a run keyed by file name: the scene
// document, solver input and smokeview script named after the CHID, the
// labelled point table, the issue summary and the previews.
func (p *Pipeline) Artifacts(res *Result) (map[string][]byte, error) {
	chid := p.Renderer.Options.CHID
	out := make(map[string][]byte)

	var buf bytes.Buffer
	if err := l5solver.WriteDocument(&buf, res.Document); err != nil {
		return nil, err
	}
	out[chid+".json"] = append([]byte(nil), buf.Bytes()...)
	out[chid+".fds"] = []byte(res.SolverInput)
	out[chid+".ssf"] = []byte(res.SmokeviewScript)

	buf.Reset()
	if err := scene.WriteCloudCSV(&buf, res.Cloud); err != nil {
		return nil, fmt.Errorf("write point table: %w", err)
	}
	out[PointsFile] = append([]byte(nil), buf.Bytes()...)

	summary := Summary{
		CHID:    chid,
		Points:  len(res.Cloud),
		Objects: len(res.Scene.Objects),
		Slabs:   res.Slabs,
		Issues:  res.Issues,
		Space:   res.Scene.Space,
	}
	if summary.Issues == nil {
		summary.Issues = []scene.Issue{}
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	out[IssuesFile] = data

	buf.Reset()
	if err := preview.WriteFootprintPNG(&buf, res.Document, p.Renderer.Properties); err != nil {
		return nil, err
	}
	out[FootprintFile] = append([]byte(nil), buf.Bytes()...)

	buf.Reset()
	if err := preview.WriteSTL(&buf, res.Document); err != nil {
		return nil, err
	}
	out[MeshFile] = append([]byte(nil), buf.Bytes()...)

	buf.Reset()
	if err := preview.WriteReport(&buf, res.Document, res.Issues); err != nil {
		return nil, err
	}
	out[ReportFile] = append([]byte(nil), buf.Bytes()...)

	return out, nil
}

// WriteArtifacts renders the run outputs and writes them into dir.
func (p *Pipeline) WriteArtifacts(fsys fsutil.FileSystem, dir string, res *Result) error {
	artifacts, err := p.Artifacts(res)
	if err != nil {
		return err
	}
	if err := fsutil.WriteAll(fsys, dir, artifacts); err != nil {
		return err
	}
	monitoring.Logf("[pipeline] wrote %d artifacts to %s", len(artifacts), dir)
	return nil
}
