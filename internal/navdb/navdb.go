package navdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
	_ "modernc.org/sqlite"
)

type NavDB struct {
	*sql.DB
}

// schema.sql contains the SQL statements for creating the navigation database
// schema. It defines tables for recorded runs and their per-step trajectories.
//
//go:embed schema.sql
var schemaSQL string

func NewNavDB(path string) (*NavDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schemaSQL)
	if err != nil {
		return nil, err
	}

	return &NavDB{db}, nil
}

// RunSummary describes one recorded propagation run.
type RunSummary struct {
	ID          string
	Geometry    string
	Direction   string
	Start       r3.Vec
	Dir         r3.Vec
	Status      string
	BreakReason string
	Steps       int
	PathLength  float64
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// StepRecord is one integration step of a recorded run.
type StepRecord struct {
	RunID    string
	Index    int
	Position r3.Vec
	StepSize float64
	Volume   string
	Surface  string
}

// BeginRun inserts a new run row in the 'running' state and returns its id.
func (ndb *NavDB) BeginRun(geometry, direction string, start, dir r3.Vec) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO nav_runs (id, geometry, direction, start_x, start_y, start_z, dir_x, dir_y, dir_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := ndb.Exec(query, id, geometry, direction, start.X, start.Y, start.Z, dir.X, dir.Y, dir.Z)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %v", err)
	}

	return id, nil
}

// RecordStep stores one integration step for a run.
func (ndb *NavDB) RecordStep(runID string, idx int, pos r3.Vec, stepSize float64, volume, surface string) error {
	query := `
		INSERT INTO nav_steps (run_id, step_idx, x, y, z, step_size, volume, surface)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := ndb.Exec(query, runID, idx, pos.X, pos.Y, pos.Z, stepSize, volume, surface)
	if err != nil {
		return fmt.Errorf("failed to insert step %d for run %s: %v", idx, runID, err)
	}

	return nil
}

// FinishRun marks a run as complete with its final status and tallies.
func (ndb *NavDB) FinishRun(runID, status, breakReason string, steps int, pathLength float64) error {
	query := `
		UPDATE nav_runs
		SET status = ?, break_reason = ?, steps = ?, path_length = ?, finished_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	res, err := ndb.Exec(query, status, breakReason, steps, pathLength, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %v", runID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no run with id %s", runID)
	}

	return nil
}

// GetRun returns the summary row for a single run.
func (ndb *NavDB) GetRun(runID string) (*RunSummary, error) {
	query := `
		SELECT id, geometry, direction, start_x, start_y, start_z, dir_x, dir_y, dir_z,
		       status, break_reason, steps, path_length, started_at, finished_at
		FROM nav_runs
		WHERE id = ?
	`

	row := ndb.QueryRow(query, runID)

	var rs RunSummary
	var finished sql.NullTime
	err := row.Scan(&rs.ID, &rs.Geometry, &rs.Direction,
		&rs.Start.X, &rs.Start.Y, &rs.Start.Z,
		&rs.Dir.X, &rs.Dir.Y, &rs.Dir.Z,
		&rs.Status, &rs.BreakReason, &rs.Steps, &rs.PathLength,
		&rs.StartedAt, &finished)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %v", runID, err)
	}
	if finished.Valid {
		rs.FinishedAt = &finished.Time
	}

	return &rs, nil
}

// ListRuns returns the most recent runs, newest first.
func (ndb *NavDB) ListRuns(limit int) ([]RunSummary, error) {
	query := `
		SELECT id, geometry, direction, start_x, start_y, start_z, dir_x, dir_y, dir_z,
		       status, break_reason, steps, path_length, started_at, finished_at
		FROM nav_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := ndb.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %v", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var rs RunSummary
		var finished sql.NullTime
		err := rows.Scan(&rs.ID, &rs.Geometry, &rs.Direction,
			&rs.Start.X, &rs.Start.Y, &rs.Start.Z,
			&rs.Dir.X, &rs.Dir.Y, &rs.Dir.Z,
			&rs.Status, &rs.BreakReason, &rs.Steps, &rs.PathLength,
			&rs.StartedAt, &finished)
		if err != nil {
			return nil, err
		}
		if finished.Valid {
			rs.FinishedAt = &finished.Time
		}
		runs = append(runs, rs)
	}

	return runs, rows.Err()
}

// StepsForRun returns the recorded steps of a run in step order.
func (ndb *NavDB) StepsForRun(runID string) ([]StepRecord, error) {
	query := `
		SELECT run_id, step_idx, x, y, z, step_size, volume, surface
		FROM nav_steps
		WHERE run_id = ?
		ORDER BY step_idx ASC
	`

	rows, err := ndb.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps for run %s: %v", runID, err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var sr StepRecord
		err := rows.Scan(&sr.RunID, &sr.Index,
			&sr.Position.X, &sr.Position.Y, &sr.Position.Z,
			&sr.StepSize, &sr.Volume, &sr.Surface)
		if err != nil {
			return nil, err
		}
		steps = append(steps, sr)
	}

	return steps, rows.Err()
}
