// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"docs-evaluator/internal/domain"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// === Row Source Mock ===

// MockRowSource implements domain.RowSource for testing. Ranges holds canned
// values per A1 range; ReadRangeFn overrides it when set.
type MockRowSource struct {
	ReadRangeFn func(ctx context.Context, rangeA1 string) ([][]string, error)
	Ranges      map[string][][]string
}

// ReadRange implements the interface method for testing.
func (m *MockRowSource) ReadRange(ctx context.Context, rangeA1 string) ([][]string, error) {
	if m.ReadRangeFn != nil {
		return m.ReadRangeFn(ctx, rangeA1)
	}
	if rows, ok := m.Ranges[rangeA1]; ok {
		return rows, nil
	}
	return nil, nil
}

var _ domain.RowSource = (*MockRowSource)(nil)

// === Sync Run Repository Mock ===

// MockSyncRunRepo implements domain.SyncRunRepository and records runs in memory.
type MockSyncRunRepo struct {
	CreateFn func(ctx context.Context, run *domain.SyncRun) (*domain.SyncRun, error)
	FinishFn func(ctx context.Context, run *domain.SyncRun) error

	mu       sync.Mutex
	Finished []domain.SyncRun
}

// Create implements the interface method for testing.
func (m *MockSyncRunRepo) Create(ctx context.Context, run *domain.SyncRun) (*domain.SyncRun, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, run)
	}
	if run.ID == "" {
		run.ID = domain.NewID()
	}
	return run, nil
}

// Finish implements the interface method for testing.
func (m *MockSyncRunRepo) Finish(ctx context.Context, run *domain.SyncRun) error {
	if m.FinishFn != nil {
		return m.FinishFn(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Finished = append(m.Finished, *run)
	return nil
}

// List implements the interface method for testing.
func (m *MockSyncRunRepo) List(_ context.Context, _ int) ([]domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SyncRun, len(m.Finished))
	copy(out, m.Finished)
	return out, nil
}

// LastRun returns the last finished run, or nil if none.
func (m *MockSyncRunRepo) LastRun() *domain.SyncRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Finished) == 0 {
		return nil
	}
	r := m.Finished[len(m.Finished)-1]
	return &r
}

var _ domain.SyncRunRepository = (*MockSyncRunRepo)(nil)

// === Evaluation Repository Mock ===

// MockEvaluationRepo implements domain.EvaluationRepository for testing.
type MockEvaluationRepo struct {
	InsertFn     func(ctx context.Context, e *domain.Evaluation) error
	ListRecentFn func(ctx context.Context, limit int) ([]domain.Evaluation, error)
	Entries      []*domain.Evaluation // collected entries for assertions
}

// Insert implements the interface method for testing.
func (m *MockEvaluationRepo) Insert(ctx context.Context, e *domain.Evaluation) error {
	if m.InsertFn != nil {
		if err := m.InsertFn(ctx, e); err != nil {
			return err
		}
	}
	m.Entries = append(m.Entries, e)
	return nil
}

// ListRecent implements the interface method for testing.
func (m *MockEvaluationRepo) ListRecent(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	if m.ListRecentFn != nil {
		return m.ListRecentFn(ctx, limit)
	}
	panic("unexpected call to MockEvaluationRepo.ListRecent")
}

var _ domain.EvaluationRepository = (*MockEvaluationRepo)(nil)
