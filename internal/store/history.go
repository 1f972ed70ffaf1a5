package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// HistoryStore persists every pipeline run in sqlite.
type HistoryStore struct {
	DB *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps in-memory databases and concurrent batch writers consistent.
	db.SetMaxOpenConns(1)

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			source TEXT,
			intent TEXT,
			plan_json TEXT,
			plan_digest TEXT,
			result_json TEXT,
			result_digest TEXT,
			status TEXT NOT NULL,
			error TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_plan_digest ON runs (plan_digest);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

func (h *HistoryStore) SaveRun(ctx context.Context, r Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO runs (run_id, source, intent, plan_json, plan_digest, result_json, result_digest, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := h.DB.ExecContext(ctx, query,
		r.RunID, r.Source, r.Intent, r.PlanJSON, r.PlanDigest, r.ResultJSON, r.ResultDigest,
		string(r.Status), r.Error, r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	return nil
}

const runColumns = `run_id, source, intent, plan_json, plan_digest, result_json, result_digest, status, error, created_at`

func (h *HistoryStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := h.DB.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns the most recent runs first.
func (h *HistoryStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.DB.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// RunsByPlanDigest finds earlier runs of the same plan, most recent first.
func (h *HistoryStore) RunsByPlanDigest(ctx context.Context, digest string) ([]Run, error) {
	rows, err := h.DB.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE plan_digest = ? ORDER BY id DESC`, digest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var source, intent, planJSON, planDigest, resultJSON, resultDigest, errText sql.NullString
	var status, createdAt string
	if err := s.Scan(&r.RunID, &source, &intent, &planJSON, &planDigest, &resultJSON, &resultDigest, &status, &errText, &createdAt); err != nil {
		return nil, err
	}
	r.Source = source.String
	r.Intent = intent.String
	r.PlanJSON = planJSON.String
	r.PlanDigest = planDigest.String
	r.ResultJSON = resultJSON.String
	r.ResultDigest = resultDigest.String
	r.Status = Status(status)
	r.Error = errText.String

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for run %s: %w", r.RunID, err)
	}
	r.CreatedAt = ts
	return &r, nil
}
