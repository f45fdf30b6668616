package repository

import (
	"context"
	"database/sql"
	"fmt"

	"docs-evaluator/internal/domain"
)

// SyncRunRepo implements domain.SyncRunRepository using SQLite.
type SyncRunRepo struct {
	db *sql.DB
}

var _ domain.SyncRunRepository = (*SyncRunRepo)(nil)

// NewSyncRunRepo creates a new SyncRunRepo.
func NewSyncRunRepo(db *sql.DB) *SyncRunRepo {
	return &SyncRunRepo{db: db}
}

// Create inserts a run, assigning an id when it has none.
func (r *SyncRunRepo) Create(ctx context.Context, run *domain.SyncRun) (*domain.SyncRun, error) {
	if run.ID == "" {
		run.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, trigger_type, status, rows_total, rows_routed, rows_skipped, error_message, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Trigger), string(run.Status),
		run.RowsTotal, run.RowsRouted, run.RowsSkipped,
		nullString(run.ErrorMessage), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	return run, nil
}

// Finish stores the final counters and status of a run.
func (r *SyncRunRepo) Finish(ctx context.Context, run *domain.SyncRun) error {
	var finished sql.NullString
	if run.FinishedAt != nil {
		finished = sql.NullString{String: formatTime(*run.FinishedAt), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_runs
		SET status = ?, rows_total = ?, rows_routed = ?, rows_skipped = ?, error_message = ?, finished_at = ?
		WHERE id = ?`,
		string(run.Status), run.RowsTotal, run.RowsRouted, run.RowsSkipped,
		nullString(run.ErrorMessage), finished, run.ID,
	)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("sync run %q not found", run.ID)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (r *SyncRunRepo) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trigger_type, status, rows_total, rows_routed, rows_skipped, error_message, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.SyncRun
	for rows.Next() {
		var (
			run       domain.SyncRun
			trigger   string
			status    string
			errMsg    sql.NullString
			startedAt string
			finished  sql.NullString
		)
		if err := rows.Scan(&run.ID, &trigger, &status, &run.RowsTotal, &run.RowsRouted,
			&run.RowsSkipped, &errMsg, &startedAt, &finished); err != nil {
			return nil, err
		}
		run.Trigger = domain.SyncTrigger(trigger)
		run.Status = domain.SyncRunStatus(status)
		if errMsg.Valid {
			run.ErrorMessage = &errMsg.String
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at of run %s: %w", run.ID, err)
		}
		if finished.Valid {
			t, err := parseTime(finished.String)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at of run %s: %w", run.ID, err)
			}
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
