package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/bee.report/internal/analysis"
	"github.com/banshee-data/bee.report/internal/summary"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("analysis run not found")

// Run is one stored analysis.
type Run struct {
	RunID           string         `json:"run_id"`
	Source          string         `json:"source"`
	Method          summary.Method `json:"method"`
	Threshold       float64        `json:"threshold"`
	Units           string         `json:"units"`
	SampleCount     int            `json:"sample_count"`
	EntityCount     int            `json:"entity_count"`
	SummarizedCount int            `json:"summarized_count"`
	RetainedCount   int            `json:"retained_count"`
	Stats           summary.Stats  `json:"retained_stats"`
	CreatedAt       time.Time      `json:"created_at"`
}

// EntitySummary is one entity's stored summary.
type EntitySummary struct {
	EntityID   string  `json:"entity_id"`
	Value      float64 `json:"value"`
	SpeedCount int     `json:"speed_count"`
	Retained   bool    `json:"retained"`
}

// NewRun describes res as a Run with a fresh ID.
func NewRun(source, units string, res *analysis.Result, now time.Time) *Run {
	return &Run{
		RunID:           uuid.NewString(),
		Source:          source,
		Method:          res.Method,
		Threshold:       res.Threshold,
		Units:           units,
		SampleCount:     res.Samples,
		EntityCount:     res.Entities(),
		SummarizedCount: len(res.Summaries),
		RetainedCount:   res.Filtered.Len(),
		Stats:           res.Stats,
		CreatedAt:       now,
	}
}

// RecordRun stores run and every summary of res in one transaction.
func (db *DB) RecordRun(ctx context.Context, run *Run, res *analysis.Result) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analysis_runs (
			run_id, source, method, threshold, units, sample_count,
			entity_count, summarized_count, retained_count, stats_json,
			created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Source, string(run.Method), run.Threshold, run.Units, run.SampleCount,
		run.EntityCount, run.SummarizedCount, run.RetainedCount, string(stats),
		run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entity_summaries (
			run_id, position, entity_id, summary_value, speed_count, retained
		) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, s := range res.Summaries {
		if _, err := stmt.ExecContext(ctx, run.RunID, i, s.EntityID, s.Value, s.Count, res.Retained(s.EntityID)); err != nil {
			return fmt.Errorf("insert summary %s: %w", s.EntityID, err)
		}
	}
	return tx.Commit()
}

const runColumns = `run_id, source, method, threshold, units, sample_count,
	entity_count, summarized_count, retained_count, stats_json, created_unix_nanos`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r      Run
		method string
		stats  string
		nanos  int64
	)
	err := row.Scan(&r.RunID, &r.Source, &method, &r.Threshold, &r.Units, &r.SampleCount,
		&r.EntityCount, &r.SummarizedCount, &r.RetainedCount, &stats, &nanos)
	if err != nil {
		return nil, err
	}
	r.Method = summary.Method(method)
	r.CreatedAt = time.Unix(0, nanos).UTC()
	if err := json.Unmarshal([]byte(stats), &r.Stats); err != nil {
		return nil, fmt.Errorf("decode stats for run %s: %w", r.RunID, err)
	}
	return &r, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs
		ORDER BY created_unix_nanos DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with id or ErrRunNotFound.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return r, err
}

// RunSummaries returns a run's summaries in discovery order, optionally only
// the retained ones.
func (db *DB) RunSummaries(ctx context.Context, id string, retainedOnly bool) ([]EntitySummary, error) {
	q := `SELECT entity_id, summary_value, speed_count, retained
		FROM entity_summaries WHERE run_id = ?`
	if retainedOnly {
		q += ` AND retained = 1`
	}
	q += ` ORDER BY position`

	rows, err := db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []EntitySummary{}
	for rows.Next() {
		var s EntitySummary
		if err := rows.Scan(&s.EntityID, &s.Value, &s.SpeedCount, &s.Retained); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its summaries.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}
