// Package api provides the HTTP handlers for the submission dashboard.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/middleware"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxBodyBytes     = 1 << 20
)

// FileService browses and manages the submission folder tree.
type FileService interface {
	ListFiles(ctx context.Context, folderID string) ([]domain.ObjectMeta, error)
	CreateFolder(ctx context.Context, name, parentID string) (*domain.ObjectMeta, error)
	DeleteFile(ctx context.Context, id string) error
	SearchFiles(ctx context.Context, query string) ([]domain.ObjectMeta, error)
}

// Syncer routes every submission row and returns the routed files.
type Syncer interface {
	Sync(ctx context.Context) ([]domain.RoutedFile, error)
}

// Evaluator reviews documents with a named AI provider.
type Evaluator interface {
	Analyze(ctx context.Context, fileID, fileName, providerName string) (*domain.Evaluation, error)
	History(ctx context.Context, limit int) ([]domain.Evaluation, error)
	Providers() []string
}

// RosterVerifier checks a user against the class allowlist.
type RosterVerifier interface {
	Verify(ctx context.Context, displayName, email string) (*domain.RosterRecord, error)
	VerifyToken(ctx context.Context, rawToken string) (*domain.RosterRecord, error)
}

// DeliverableSource loads the configured deliverable deadlines.
type DeliverableSource interface {
	Load(ctx context.Context) (map[string]domain.DeliverableConfig, error)
}

// Handler serves the REST API. Optional services may be nil; their routes
// then answer 503.
type Handler struct {
	files        FileService
	syncer       Syncer
	runs         domain.SyncRunRepository
	deliverables DeliverableSource
	eval         Evaluator
	roster       RosterVerifier
	logger       *slog.Logger
}

// Services groups the dependencies of Handler.
type Services struct {
	Files        FileService
	Syncer       Syncer
	Runs         domain.SyncRunRepository
	Deliverables DeliverableSource
	Eval         Evaluator
	Roster       RosterVerifier
}

// NewHandler creates a Handler.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		files:        svc.Files,
		syncer:       svc.Syncer,
		runs:         svc.Runs,
		deliverables: svc.Deliverables,
		eval:         svc.Eval,
		roster:       svc.Roster,
		logger:       logger.With("component", "api"),
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) unavailable(w http.ResponseWriter, r *http.Request, what string) {
	writeMessage(w, r, http.StatusServiceUnavailable, what+" is not configured")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}

// limitParam reads ?limit=, clamped to [1, maxListLimit].
func limitParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.ErrValidation("limit must be a positive integer")
	}
	return min(n, maxListLimit), nil
}

func requestID(r *http.Request) string {
	return middleware.RequestIDFromContext(r.Context())
}
