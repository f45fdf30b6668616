package repository

import (
	"context"
	"database/sql"
	"fmt"

	"docs-evaluator/internal/domain"
)

// EvaluationRepo implements domain.EvaluationRepository using SQLite.
type EvaluationRepo struct {
	db *sql.DB
}

var _ domain.EvaluationRepository = (*EvaluationRepo)(nil)

// NewEvaluationRepo creates a new EvaluationRepo.
func NewEvaluationRepo(db *sql.DB) *EvaluationRepo {
	return &EvaluationRepo{db: db}
}

// Insert stores e, assigning an id when it has none.
func (r *EvaluationRepo) Insert(ctx context.Context, e *domain.Evaluation) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, file_id, file_name, model_used, evaluation_result, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.FileID, e.FileName, e.ModelUsed, e.Result, formatTime(e.EvaluatedAt),
	)
	return mapDBError(err)
}

// ListRecent returns up to limit evaluations, newest first.
func (r *EvaluationRepo) ListRecent(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_id, file_name, model_used, evaluation_result, evaluated_at
		FROM evaluations
		ORDER BY evaluated_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Evaluation
	for rows.Next() {
		var (
			e  domain.Evaluation
			at string
		)
		if err := rows.Scan(&e.ID, &e.FileID, &e.FileName, &e.ModelUsed, &e.Result, &at); err != nil {
			return nil, err
		}
		if e.EvaluatedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("parse evaluated_at of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
