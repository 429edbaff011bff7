package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/firescene/internal/config"
	"github.com/banshee-data/firescene/internal/monitoring"
	"github.com/banshee-data/firescene/internal/scene"
	"github.com/banshee-data/firescene/internal/scene/l1coords"
	"github.com/banshee-data/firescene/internal/scene/l2objects"
	"github.com/banshee-data/firescene/internal/scene/l3materials"
	"github.com/banshee-data/firescene/internal/scene/l4layout"
	"github.com/banshee-data/firescene/internal/scene/l5solver"
	"github.com/banshee-data/firescene/internal/timeutil"
)

// Inputs are the external collaborator outputs for one capture.
type Inputs struct {
	// Cloud is the sensor-space point table: u, v, colour and depth in z.
	Cloud scene.PointCloud
	// InWorld marks a cloud that is already in world coordinates; the
	// transform stage then leaves x, y, z untouched.
	InWorld bool
	// Detections are the detector boxes in image pixels.
	Detections []l2objects.Detection
	// Labels is the classifier's per-pixel material map. When nil the
	// cloud's own material column is used.
	Labels l3materials.LabelMap
}

// Result is everything a successful run produced.
type Result struct {
	Cloud           scene.PointCloud
	Assignments     []l2objects.Assignment
	Records         []scene.ObjectRecord
	Slabs           l3materials.SlabMaterials
	Scene           scene.Scene
	Document        *l5solver.SceneDocument
	SolverInput     string
	SmokeviewScript string
	Issues          []scene.Issue
}

// Pipeline holds the immutable per-run configuration of every stage.
type Pipeline struct {
	Transform    *l1coords.CalibratedTransform
	CloudOptions l1coords.CloudOptions
	Vocabulary   *l3materials.Vocabulary
	Cluster      l3materials.Options
	Space        scene.SpaceDimensions
	Renderer     *l5solver.Renderer
	// Clock times the stages for the log.
	Clock        timeutil.Clock
}

// New builds a pipeline from cfg: it calibrates the transform, loads the
// vocabulary, property and template tables, and copies the solver
// parameters. Calibration errors are reported as a transform StageFailure.
func New(cfg *config.PipelineConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, scene.ErrInsufficientReferencePoints) {
			return nil, fail(StageTransform, fmt.Errorf("calibrate: %w", err))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	intr, refs := calibrationInputs(cfg)
	tr, err := l1coords.Calibrate(intr, refs, cfg.GetCalibrationDepthUnit())
	if err != nil {
		return nil, fail(StageTransform, fmt.Errorf("calibrate: %w", err))
	}

	cats, err := cfg.Categories()
	if err != nil {
		return nil, err
	}
	vocab, err := l3materials.LoadVocabulary(bytes.NewReader(cats))
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	mats, err := cfg.Materials()
	if err != nil {
		return nil, err
	}
	props, err := l5solver.LoadPropertyTable(bytes.NewReader(mats))
	if err != nil {
		return nil, fmt.Errorf("load material properties: %w", err)
	}

	tpls, err := cfg.Templates()
	if err != nil {
		return nil, err
	}
	templates, err := l5solver.LoadTemplateTable(bytes.NewReader(tpls))
	if err != nil {
		return nil, fmt.Errorf("load object templates: %w", err)
	}

	renderer := l5solver.NewRenderer(props, templates)
	renderer.Options.CHID = cfg.GetCHID()
	renderer.Options.Title = cfg.GetTitle()
	renderer.Options.TEnd = cfg.GetTEndS()
	renderer.Options.CellsPerMeter = cfg.GetMeshCellsPerMeter()
	renderer.Options.HRRPUA = cfg.GetHRRPUA()

	return &Pipeline{
		Transform: tr,
		CloudOptions: l1coords.CloudOptions{
			DepthUnit: cfg.GetCloudDepthUnit(),
			MaxDepthM: cfg.GetMaxDepthM(),
		},
		Vocabulary: vocab,
		Cluster: l3materials.Options{
			PercentileLow:  cfg.GetPercentileLow(),
			PercentileHigh: cfg.GetPercentileHigh(),
			Workers:        cfg.GetWorkers(),
		},
		Space: scene.SpaceDimensions{
			X: cfg.GetSpaceX(),
			Y: cfg.GetSpaceY(),
			Z: cfg.GetSpaceZ(),
		},
		Renderer: renderer,
		Clock:    timeutil.RealClock{},
	}, nil
}

// calibrationInputs returns the configured intrinsics and references,
// falling back to the stock calibration for any part that is absent.
func calibrationInputs(cfg *config.PipelineConfig) (l1coords.Intrinsics, []l1coords.ReferenceCorrespondence) {
	intr := l1coords.DefaultIntrinsics()
	refs := l1coords.DefaultReferenceCorrespondences()
	cal := cfg.Calibration
	if cal == nil {
		return intr, refs
	}
	if f := cal.Intrinsics; f != nil {
		intr = l1coords.Intrinsics{
			Width:  f.Width,
			Height: f.Height,
			Fx:     f.Fx,
			Fy:     f.Fy,
			Ppx:    f.Ppx,
			Ppy:    f.Ppy,
			Model:  l1coords.DistortionModel(f.Model),
		}
		copy(intr.Coeffs[:], f.Coeffs)
	}
	if len(cal.References) > 0 {
		refs = make([]l1coords.ReferenceCorrespondence, len(cal.References))
		for i, r := range cal.References {
			refs[i] = l1coords.ReferenceCorrespondence{
				U:     r.PixelDepth[0],
				V:     r.PixelDepth[1],
				Depth: r.PixelDepth[2],
				World: r3.Vector{X: r.World[0], Y: r.World[1], Z: r.World[2]},
			}
		}
	}
	return intr, refs
}

// Run executes the five stages in order. The first fatal error is returned
// as a *StageFailure; nothing after it runs.
func (p *Pipeline) Run(in Inputs) (*Result, error) {
	res := &Result{}
	clock := p.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()

	// transform
	t0 := clock.Now()
	if len(in.Cloud) == 0 {
		return nil, fail(StageTransform, scene.ErrEmptyCloud)
	}
	if in.InWorld {
		res.Cloud = in.Cloud.Clone()
	} else {
		cloud, err := p.Transform.TransformCloud(in.Cloud, p.CloudOptions)
		if err != nil {
			return nil, fail(StageTransform, err)
		}
		res.Cloud = cloud
		if n := len(in.Cloud) - len(cloud); n > 0 {
			issue := scene.Issue{
				Kind:   scene.IssueNoDepth,
				Detail: fmt.Sprintf("dropped %d of %d rows without a depth reading", n, len(in.Cloud)),
			}
			monitoring.Logf("[pipeline] %s", issue)
			res.Issues = append(res.Issues, issue)
		}
	}
	monitoring.Logf("[pipeline] stage=%s points=%d in_world=%v duration=%s",
		StageTransform, len(res.Cloud), in.InWorld, clock.Since(t0))

	// segment
	t0 = clock.Now()
	for i, d := range in.Detections {
		if err := d.Validate(); err != nil {
			return nil, fail(StageSegment, fmt.Errorf("detection %d: %w", i, err))
		}
	}
	res.Cloud, res.Assignments = l2objects.AssignObjects(res.Cloud, in.Detections)
	if n := l2objects.CountUnassigned(res.Cloud); n > 0 {
		issue := scene.Issue{
			Kind:   scene.IssueUnassignedPoints,
			Detail: fmt.Sprintf("%d of %d points fall outside every detection", n, len(res.Cloud)),
		}
		monitoring.Logf("[pipeline] %s", issue)
		res.Issues = append(res.Issues, issue)
	}
	monitoring.Logf("[pipeline] stage=%s detections=%d duration=%s",
		StageSegment, len(in.Detections), clock.Since(t0))

	// material
	t0 = clock.Now()
	if in.Labels != nil {
		res.Cloud = l3materials.AssignMaterials(res.Cloud, in.Labels, p.Vocabulary)
	}
	records, issues, err := l3materials.DeriveObjects(res.Cloud, p.Vocabulary, p.Cluster)
	if err != nil {
		return nil, fail(StageMaterial, err)
	}
	res.Records = records
	res.Issues = append(res.Issues, issues...)
	res.Slabs = l3materials.DetectSlabMaterials(res.Cloud)
	monitoring.Logf("[pipeline] stage=%s objects=%d issues=%d duration=%s",
		StageMaterial, len(records), len(issues), clock.Since(t0))

	// layout
	t0 = clock.Now()
	frame, err := l4layout.FrameFromCloud(res.Cloud, p.Space)
	if err != nil {
		return nil, fail(StageLayout, err)
	}
	packed, issues := l4layout.PackScene(res.Records, frame, p.Space)
	if err := l4layout.Validate(packed); err != nil {
		return nil, fail(StageLayout, err)
	}
	res.Scene = packed
	res.Issues = append(res.Issues, issues...)
	monitoring.Logf("[pipeline] stage=%s placed=%d dropped=%d duration=%s",
		StageLayout, len(packed.Objects), len(issues), clock.Since(t0))

	// serialize
	t0 = clock.Now()
	doc := l5solver.Serialize(res.Scene)
	if err := doc.Validate(); err != nil {
		return nil, fail(StageSerialize, err)
	}
	text, issues := p.Renderer.Render(doc)
	res.Document = doc
	res.SolverInput = text
	res.SmokeviewScript = l5solver.RenderSmokeviewScript(p.Renderer.Options)
	res.Issues = append(res.Issues, issues...)
	monitoring.Logf("[pipeline] stage=%s bytes=%d duration=%s",
		StageSerialize, len(text), clock.Since(t0))

	monitoring.Logf("[pipeline] run complete: %d objects placed, %d issues in %s",
		len(res.Scene.Objects), len(res.Issues), clock.Since(start))
	return res, nil
}

// RenderDocument runs only the serialize stage over a stored document.
func (p *Pipeline) RenderDocument(doc *l5solver.SceneDocument) (string, []scene.Issue, error) {
	if err := doc.Validate(); err != nil {
		return "", nil, fail(StageSerialize, err)
	}
	text, issues := p.Renderer.Render(doc)
	return text, issues, nil
}
