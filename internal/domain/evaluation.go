package domain

import (
	"context"
	"time"
)

// Evaluation is a stored AI review of a submitted document.
type Evaluation struct {
	ID          string    `json:"id" bson:"_id"`
	FileID      string    `json:"fileId" bson:"file_id"`
	FileName    string    `json:"fileName" bson:"file_name"`
	ModelUsed   string    `json:"modelUsed" bson:"model_used"`
	Result      string    `json:"evaluationResult" bson:"evaluation_result"`
	EvaluatedAt time.Time `json:"evaluatedAt" bson:"evaluated_at"`
}

// EvaluationRepository persists evaluations.
type EvaluationRepository interface {
	Insert(ctx context.Context, e *Evaluation) error
	// ListRecent returns evaluations newest first.
	ListRecent(ctx context.Context, limit int) ([]Evaluation, error)
}

// Role of a verified user.
type Role string

// Roles.
const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// RosterRecord is one entry of the class allowlist.
type RosterRecord struct {
	StudentName string `json:"studentName"`
	Section     string `json:"section"`
	GroupCode   string `json:"groupCode"`
	Role        Role   `json:"role"`
}
