package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/firescene/internal/config"
	"github.com/banshee-data/firescene/internal/fsutil"
	"github.com/banshee-data/firescene/internal/scene"
	"github.com/banshee-data/firescene/internal/scene/l2objects"
	"github.com/banshee-data/firescene/internal/scene/l3materials"
	"github.com/banshee-data/firescene/internal/scene/l5solver"
	"github.com/banshee-data/firescene/internal/scene/pipeline"
	"github.com/banshee-data/firescene/internal/scene/storage/sqlite"
)

const defaultDBPath = "scene_runs.db"

var fsys fsutil.FileSystem = fsutil.OSFileSystem{}

func loadConfig(path string) (*config.PipelineConfig, error) {
	if path == "" {
		return config.EmptyPipelineConfig(), nil
	}
	return config.LoadPipelineConfig(path)
}

func readCloud(path string) (scene.PointCloud, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cloud, err := scene.ReadCloudCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cloud, nil
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "pipeline config JSON (built-in defaults when empty)")
	cloudPath := fs.String("cloud", "", "point table CSV (required)")
	detPath := fs.String("detections", "", "detector output JSON")
	labelsPath := fs.String("labels", "", "classifier label map (one image row per line)")
	inWorld := fs.Bool("world", false, "point table is already in world coordinates")
	outDir := fs.String("out", "output", "artifact directory")
	dbPath := fs.String("db", "", "record the run in this sqlite database")
	notes := fs.String("notes", "", "notes stored with the run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cloudPath == "" {
		return fmt.Errorf("-cloud is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	in := pipeline.Inputs{InWorld: *inWorld}
	if in.Cloud, err = readCloud(*cloudPath); err != nil {
		return err
	}
	if *detPath != "" {
		data, err := fsys.ReadFile(*detPath)
		if err != nil {
			return err
		}
		if in.Detections, err = l2objects.LoadDetections(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%s: %w", *detPath, err)
		}
	}
	if *labelsPath != "" {
		data, err := fsys.ReadFile(*labelsPath)
		if err != nil {
			return err
		}
		if in.Labels, err = l3materials.LoadLabelMap(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%s: %w", *labelsPath, err)
		}
	}

	res, err := p.Run(in)
	if err != nil {
		return err
	}
	for _, issue := range res.Issues {
		log.Printf("issue: %s", issue)
	}
	if err := p.WriteArtifacts(fsys, *outDir, res); err != nil {
		return err
	}

	if *dbPath != "" {
		db, err := sqlite.NewDB(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		run, objects, err := sqlite.NewRun(cfg.GetCHID(), res.Document, res.SolverInput, len(res.Cloud), res.Issues)
		if err != nil {
			return err
		}
		run.Notes = *notes
		if err := sqlite.NewRunStore(db.DB).InsertRun(run, objects); err != nil {
			return err
		}
		log.Printf("recorded run %s in %s", run.RunID, *dbPath)
	}

	log.Printf("placed %d objects, %d issues, artifacts in %s", len(res.Scene.Objects), len(res.Issues), *outDir)
	return nil
}

func renderCommand(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "pipeline config JSON (built-in defaults when empty)")
	docPath := fs.String("doc", "", "scene document JSON (required)")
	outPath := fs.String("out", "", "solver input file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *docPath == "" {
		return fmt.Errorf("-doc is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	data, err := fsys.ReadFile(*docPath)
	if err != nil {
		return err
	}
	doc, err := l5solver.LoadDocument(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", *docPath, err)
	}
	text, issues, err := p.RenderDocument(doc)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.Printf("issue: %s", issue)
	}

	if *outPath == "" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}
	return fsutil.WriteAll(fsys, filepath.Dir(*outPath), map[string][]byte{
		filepath.Base(*outPath): []byte(text),
	})
}

func projectCommand(args []string) error {
	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "pipeline config JSON (image size)")
	cloudPath := fs.String("cloud", "", "point table CSV (required)")
	outPath := fs.String("out", "projection.png", "output PNG")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cloudPath == "" {
		return fmt.Errorf("-cloud is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	cloud, err := readCloud(*cloudPath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := scene.WriteProjectionPNG(&buf, cloud, cfg.GetImageWidth(), cfg.GetImageHeight()); err != nil {
		return err
	}
	return fsutil.WriteAll(fsys, filepath.Dir(*outPath), map[string][]byte{
		filepath.Base(*outPath): buf.Bytes(),
	})
}

func runsCommand(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "path to sqlite db")
	runID := fs.String("id", "", "show the objects of one run")
	limit := fs.Int("limit", 20, "number of runs to list (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := sqlite.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	store := sqlite.NewRunStore(db.DB)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if *runID != "" {
		run, err := store.GetRun(*runID)
		if err != nil {
			return err
		}
		objects, err := store.ListObjects(run.RunID)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "run %s (%s) space %.2fx%.2fx%.2f\n", run.RunID, run.CHID, run.Space.X, run.Space.Y, run.Space.Z)
		fmt.Fprintln(tw, "ORDER\tOBJECT\tLABEL\tMATERIAL\tX\tZ\tHEIGHT")
		for _, o := range objects {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.3f-%.3f\t%.3f-%.3f\t%.3f\n",
				o.Order, o.ObjectNum, o.Label, o.Material,
				o.Bounds.XMin, o.Bounds.XMax, o.Bounds.ZMin, o.Bounds.ZMax, o.Bounds.SizeY())
		}
		for _, issue := range run.Issues {
			fmt.Fprintf(tw, "issue\t%s\n", issue)
		}
		return nil
	}

	runs, err := store.ListRuns(*limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "RUN\tCHID\tCREATED\tPOINTS\tOBJECTS\tISSUES")
	for _, r := range runs {
		created := time.Unix(0, r.CreatedAtNs).UTC().Format(time.RFC3339)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", r.RunID, r.CHID, created, r.PointCount, r.ObjectCount, len(r.Issues))
	}
	return nil
}

func migrateCommand(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "path to sqlite db")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: scenegen migrate [-db path] up|down|status|force <version>")
	}

	// Open without migrating; the action manages the schema.
	db, err := sqlite.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	switch rest[0] {
	case "up":
		if err := db.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := db.MigrateDown(); err != nil {
			return err
		}
	case "force":
		if len(rest) < 2 {
			return fmt.Errorf("usage: scenegen migrate force <version>")
		}
		v, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", rest[1], err)
		}
		if err := db.MigrateForce(v); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migrate action %q", rest[0])
	}

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "schema version %d (dirty=%v)\n", version, dirty)
	return nil
}
