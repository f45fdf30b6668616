package domain

import (
	"context"
	"time"
)

// SyncRunStatus is the lifecycle state of a sync run.
type SyncRunStatus string

// Sync run states.
const (
	SyncRunStatusRunning   SyncRunStatus = "RUNNING"
	SyncRunStatusSucceeded SyncRunStatus = "SUCCEEDED"
	SyncRunStatusFailed    SyncRunStatus = "FAILED"
	SyncRunStatusCanceled  SyncRunStatus = "CANCELED"
)

// SyncTrigger records what started a sync run.
type SyncTrigger string

// Sync triggers.
const (
	SyncTriggerManual    SyncTrigger = "MANUAL"
	SyncTriggerScheduled SyncTrigger = "SCHEDULED"
)

// SyncRun is the recorded outcome of one sync invocation.
type SyncRun struct {
	ID           string        `json:"id"`
	Trigger      SyncTrigger   `json:"trigger"`
	Status       SyncRunStatus `json:"status"`
	RowsTotal    int           `json:"rowsTotal"`
	RowsRouted   int           `json:"rowsRouted"`
	RowsSkipped  int           `json:"rowsSkipped"`
	ErrorMessage *string       `json:"errorMessage,omitempty"`
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   *time.Time    `json:"finishedAt,omitempty"`
}

// SyncRunRepository persists sync run history.
type SyncRunRepository interface {
	Create(ctx context.Context, run *SyncRun) (*SyncRun, error)
	Finish(ctx context.Context, run *SyncRun) error
	List(ctx context.Context, limit int) ([]SyncRun, error)
}
