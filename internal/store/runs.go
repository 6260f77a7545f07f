package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RunRecord is one recorded execution of a stored flow.
type RunRecord struct {
	ID         string
	FlowName   string
	RootNode   string
	Status     string
	Result     string // root node's result JSON, or the error text
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun appends a run record.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record run: empty id")
	}
	if rec.Status != StatusOK && rec.Status != StatusError {
		return fmt.Errorf("record run %s: invalid status %q", rec.ID, rec.Status)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, flow_name, root_node, status, result, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FlowName, rec.RootNode, rec.Status,
		sql.NullString{String: rec.Result, Valid: rec.Result != ""},
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", rec.ID, err)
	}
	return nil
}

// ListRuns returns a flow's runs, most recent first, capped at limit
// (0 means no cap).
func (s *Store) ListRuns(ctx context.Context, flowName string, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, flow_name, root_node, status, COALESCE(result, ''), started_at, finished_at
		FROM runs WHERE flow_name = ? ORDER BY started_at DESC`
	args := []any{flowName}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished string
		if err := rows.Scan(&rec.ID, &rec.FlowName, &rec.RootNode, &rec.Status, &rec.Result, &started, &finished); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("list runs: bad started_at for %s: %w", rec.ID, err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("list runs: bad finished_at for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}
