package repository

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docs-evaluator/internal/db"
	"docs-evaluator/internal/domain"
)

func TestSyncRunRepo_Lifecycle(t *testing.T) {
	writeDB, readDB := db.OpenTestSQLite(t)
	repo := NewSyncRunRepo(writeDB)
	ctx := context.Background()

	started := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	run, err := repo.Create(ctx, &domain.SyncRun{
		Trigger:   domain.SyncTriggerManual,
		Status:    domain.SyncRunStatusRunning,
		StartedAt: started,
	})
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	finished := started.Add(42 * time.Second)
	msg := "partial"
	run.Status = domain.SyncRunStatusSucceeded
	run.RowsTotal, run.RowsRouted, run.RowsSkipped = 10, 8, 2
	run.FinishedAt = &finished
	run.ErrorMessage = &msg
	require.NoError(t, repo.Finish(ctx, run))

	later, err := repo.Create(ctx, &domain.SyncRun{
		Trigger:   domain.SyncTriggerScheduled,
		Status:    domain.SyncRunStatusRunning,
		StartedAt: started.Add(time.Hour),
	})
	require.NoError(t, err)

	got, err := NewSyncRunRepo(readDB).List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, later.ID, got[0].ID, "newest first")
	assert.Nil(t, got[0].FinishedAt)

	assert.Equal(t, run.ID, got[1].ID)
	assert.Equal(t, domain.SyncRunStatusSucceeded, got[1].Status)
	assert.Equal(t, 8, got[1].RowsRouted)
	assert.Equal(t, 2, got[1].RowsSkipped)
	require.NotNil(t, got[1].FinishedAt)
	assert.True(t, finished.Equal(*got[1].FinishedAt))
	require.NotNil(t, got[1].ErrorMessage)
	assert.Equal(t, "partial", *got[1].ErrorMessage)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSyncRunRepo_FinishUnknown(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	err := NewSyncRunRepo(writeDB).Finish(context.Background(), &domain.SyncRun{
		ID: "nope", Status: domain.SyncRunStatusFailed,
	})
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSyncRunRepo_DuplicateID(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewSyncRunRepo(writeDB)
	run := &domain.SyncRun{ID: "dup", Trigger: domain.SyncTriggerManual, Status: domain.SyncRunStatusRunning, StartedAt: time.Now()}

	_, err := repo.Create(context.Background(), run)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), run)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestEvaluationRepo_InsertAndListRecent(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewEvaluationRepo(writeDB)
	ctx := context.Background()
	base := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Insert(ctx, &domain.Evaluation{
			FileID:      "file-" + name,
			FileName:    name + ".docx",
			ModelUsed:   "amazon/nova-lite-v1:free",
			Result:      "ok " + name,
			EvaluatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third.docx", got[0].FileName)
	assert.Equal(t, "second.docx", got[1].FileName)
	assert.Equal(t, "ok third", got[0].Result)
	assert.True(t, base.Add(2*time.Minute).Equal(got[0].EvaluatedAt))
}
