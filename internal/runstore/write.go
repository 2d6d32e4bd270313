package runstore

import (
	"context"
	"fmt"
	"time"

	"github.com/hilrig/hilrig/internal/report"
)

// WriteRun stores a finished run and its entry stream in one
// transaction, so the history never contains a run without its results.
// Writing the same run ID twice is an error; run IDs are UUIDs and a
// collision means a caller bug.
func (s *Store) WriteRun(ctx context.Context, info report.RunInfo, entries []report.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, state, total, passed, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		info.ID,
		info.State,
		info.Total,
		info.Passed,
		info.Failed,
		info.Started.UTC().Format(time.RFC3339Nano),
		info.Finished.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", info.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, seq, at, level, grp, test, message, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run %s: %w", info.ID, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			info.ID,
			e.Seq,
			e.Time.UTC().Format(time.RFC3339Nano),
			e.Level.String(),
			e.Group,
			e.Test,
			e.Message,
			e.Detail,
		)
		if err != nil {
			return fmt.Errorf("write run %s result %d: %w", info.ID, e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: %w", info.ID, err)
	}
	return nil
}
