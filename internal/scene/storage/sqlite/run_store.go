package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/firescene/internal/scene"
	"github.com/banshee-data/firescene/internal/scene/l5solver"
	"github.com/banshee-data/firescene/internal/timeutil"
)

// Run is one completed scene generation.
type Run struct {
	RunID        string                `json:"run_id"`
	CHID         string                `json:"chid"`
	Space        scene.SpaceDimensions `json:"space_dimensions"`
	PointCount   int                   `json:"point_count"`
	ObjectCount  int                   `json:"object_count"`
	Issues       []scene.Issue         `json:"issues,omitempty"`
	DocumentJSON json.RawMessage       `json:"document_json"`
	SolverInput  string                `json:"solver_input"`
	Notes        string                `json:"notes,omitempty"`
	CreatedAtNs  int64                 `json:"created_at_ns"`
}

// RunObject is one placed object of a run, in placement order.
type RunObject struct {
	RunID      string       `json:"run_id"`
	ObjectNum  int          `json:"object_num"`
	Label      string       `json:"object_label,omitempty"`
	MaterialID int          `json:"material_id"`
	Material   string       `json:"material,omitempty"`
	Bounds     scene.Bounds `json:"bounds"`
	Order      int          `json:"placement_order"`
}

// NewRun builds a run and its objects from a rendered scene document.
func NewRun(chid string, doc *l5solver.SceneDocument, solverInput string, points int, issues []scene.Issue) (*Run, []RunObject, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("encode scene document: %w", err)
	}
	run := &Run{
		CHID:         chid,
		Space:        doc.Space,
		PointCount:   points,
		ObjectCount:  len(doc.Objects),
		Issues:       issues,
		DocumentJSON: docJSON,
		SolverInput:  solverInput,
	}
	objects := make([]RunObject, len(doc.Objects))
	for i, o := range doc.Objects {
		objects[i] = RunObject{
			ObjectNum:  o.ObjectNum,
			Label:      o.Label,
			MaterialID: o.Material.ID,
			Material:   o.Material.Name,
			Bounds:     o.Bounds,
			Order:      i,
		}
	}
	return run, objects, nil
}

// Document decodes the stored scene document.
func (r *Run) Document() (*l5solver.SceneDocument, error) {
	var doc l5solver.SceneDocument
	if err := json.Unmarshal(r.DocumentJSON, &doc); err != nil {
		return nil, fmt.Errorf("decode scene document: %w", err)
	}
	return &doc, nil
}

// RunStore provides persistence for scene runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore stamping runs with wall-clock time.
func NewRunStore(db *sql.DB) *RunStore {
	return NewRunStoreWithClock(db, timeutil.RealClock{})
}

// NewRunStoreWithClock creates a RunStore that reads creation times from clock.
func NewRunStoreWithClock(db *sql.DB, clock timeutil.Clock) *RunStore {
	return &RunStore{db: db, clock: clock}
}

// InsertRun stores a run and its objects in one transaction.
// If run.RunID is empty, a new UUID is generated.
func (s *RunStore) InsertRun(run *Run, objects []RunObject) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = s.clock.Now().UnixNano()
	}

	var issuesJSON []byte
	if len(run.Issues) > 0 {
		var err error
		issuesJSON, err = json.Marshal(run.Issues)
		if err != nil {
			return fmt.Errorf("encode issues: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO scene_runs (
			run_id, chid, space_x, space_y, space_z,
			point_count, object_count, issues_json, document_json,
			solver_input, notes, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.CHID,
		run.Space.X,
		run.Space.Y,
		run.Space.Z,
		run.PointCount,
		run.ObjectCount,
		nullString(string(issuesJSON)),
		string(run.DocumentJSON),
		run.SolverInput,
		nullString(run.Notes),
		run.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i := range objects {
		o := &objects[i]
		o.RunID = run.RunID
		_, err := tx.Exec(`
			INSERT INTO scene_objects (
				run_id, object_num, object_label, material_id, material,
				x_min, x_max, y_min, y_max, z_min, z_max, placement_order
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			o.RunID,
			o.ObjectNum,
			nullString(o.Label),
			o.MaterialID,
			nullString(o.Material),
			o.Bounds.XMin, o.Bounds.XMax,
			o.Bounds.YMin, o.Bounds.YMax,
			o.Bounds.ZMin, o.Bounds.ZMax,
			o.Order,
		)
		if err != nil {
			return fmt.Errorf("insert object %d: %w", o.ObjectNum, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `
	run_id, chid, space_x, space_y, space_z, point_count, object_count,
	issues_json, document_json, solver_input, notes, created_at_ns
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var issuesJSON, notes sql.NullString
	var docJSON string
	err := row.Scan(
		&run.RunID,
		&run.CHID,
		&run.Space.X,
		&run.Space.Y,
		&run.Space.Z,
		&run.PointCount,
		&run.ObjectCount,
		&issuesJSON,
		&docJSON,
		&run.SolverInput,
		&notes,
		&run.CreatedAtNs,
	)
	if err != nil {
		return nil, err
	}

	run.DocumentJSON = json.RawMessage(docJSON)
	if notes.Valid {
		run.Notes = notes.String
	}
	if issuesJSON.Valid && issuesJSON.String != "" {
		if err := json.Unmarshal([]byte(issuesJSON.String), &run.Issues); err != nil {
			return nil, fmt.Errorf("decode issues of run %s: %w", run.RunID, err)
		}
	}
	return &run, nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM scene_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (s *RunStore) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM scene_runs ORDER BY created_at_ns DESC, run_id`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListObjects returns the placed objects of a run in placement order.
func (s *RunStore) ListObjects(runID string) ([]RunObject, error) {
	rows, err := s.db.Query(`
		SELECT run_id, object_num, object_label, material_id, material,
		       x_min, x_max, y_min, y_max, z_min, z_max, placement_order
		FROM scene_objects
		WHERE run_id = ?
		ORDER BY placement_order
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer rows.Close()

	var objects []RunObject
	for rows.Next() {
		var o RunObject
		var label, material sql.NullString
		if err := rows.Scan(
			&o.RunID,
			&o.ObjectNum,
			&label,
			&o.MaterialID,
			&material,
			&o.Bounds.XMin, &o.Bounds.XMax,
			&o.Bounds.YMin, &o.Bounds.YMax,
			&o.Bounds.ZMin, &o.Bounds.ZMax,
			&o.Order,
		); err != nil {
			return nil, fmt.Errorf("scan object row: %w", err)
		}
		o.Label = label.String
		o.Material = material.String
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// MaterialUsage counts placed objects per material across all runs,
// keyed by material name. Objects without a material are not counted.
func (s *RunStore) MaterialUsage() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT material, COUNT(*) FROM scene_objects
		WHERE material IS NOT NULL
		GROUP BY material
	`)
	if err != nil {
		return nil, fmt.Errorf("material usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan material usage: %w", err)
		}
		usage[name] = n
	}
	return usage, rows.Err()
}

// DeleteRun removes a run and, through the foreign key, its objects.
func (s *RunStore) DeleteRun(runID string) error {
	res, err := s.db.Exec(`DELETE FROM scene_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
