package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hilrig/hilrig/internal/report"
)

// ErrRunNotFound is returned when a run ID has no stored row.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns the most recent runs, newest first. limit <= 0 means
// no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]report.RunInfo, error) {
	query := `
		SELECT id, state, total, passed, failed, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []report.RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the stored summary of one run.
func (s *Store) GetRun(ctx context.Context, runID string) (report.RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, state, total, passed, failed, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return report.RunInfo{}, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return report.RunInfo{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return info, nil
}

// RunResults returns a run's entry stream in recorded order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]report.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, at, level, grp, test, message, detail
		FROM results WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run results %s: %w", runID, err)
	}
	defer rows.Close()

	var entries []report.Entry
	for rows.Next() {
		var (
			e         report.Entry
			at, level string
		)
		if err := rows.Scan(&e.Seq, &at, &level, &e.Group, &e.Test, &e.Message, &e.Detail); err != nil {
			return nil, fmt.Errorf("run results %s: %w", runID, err)
		}
		if e.Time, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("run results %s seq %d: %w", runID, e.Seq, err)
		}
		if e.Level, err = report.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("run results %s seq %d: %w", runID, e.Seq, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run results %s: %w", runID, err)
	}
	return entries, nil
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (report.RunInfo, error) {
	var (
		info               report.RunInfo
		started, finished  string
	)
	err := row.Scan(&info.ID, &info.State, &info.Total, &info.Passed, &info.Failed, &started, &finished)
	if err != nil {
		return report.RunInfo{}, err
	}
	if info.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return report.RunInfo{}, fmt.Errorf("parse started_at: %w", err)
	}
	if info.Finished, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return report.RunInfo{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return info, nil
}
