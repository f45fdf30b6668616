package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"docs-evaluator/internal/domain"
)

// ListFiles handles GET /api/drive/files/{id}.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		h.unavailable(w, r, "drive")
		return
	}
	files, err := h.files.ListFiles(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if files == nil {
		files = []domain.ObjectMeta{}
	}
	writeJSON(w, http.StatusOK, files)
}

// SyncSubmissions handles GET /api/drive/sync-submissions.
func (h *Handler) SyncSubmissions(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		h.unavailable(w, r, "submission sync")
		return
	}
	routed, err := h.syncer.Sync(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if routed == nil {
		routed = []domain.RoutedFile{}
	}
	writeJSON(w, http.StatusOK, routed)
}

// DeleteFile handles DELETE /api/drive/files/{id}.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		h.unavailable(w, r, "drive")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.files.DeleteFile(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "trashed"})
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

// CreateFolder handles POST /api/drive/folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		h.unavailable(w, r, "drive")
		return
	}
	var req createFolderRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	folder, err := h.files.CreateFolder(r.Context(), req.Name, req.ParentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// SearchFiles handles GET /api/drive/search?q=.
func (h *Handler) SearchFiles(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		h.unavailable(w, r, "drive")
		return
	}
	results, err := h.files.SearchFiles(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []domain.ObjectMeta{}
	}
	writeJSON(w, http.StatusOK, results)
}

// ListSyncRuns handles GET /api/sync/runs.
func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.unavailable(w, r, "sync history")
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []domain.SyncRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// ListDeliverables handles GET /api/deliverables, ordered by deadline.
func (h *Handler) ListDeliverables(w http.ResponseWriter, r *http.Request) {
	if h.deliverables == nil {
		h.unavailable(w, r, "deliverables")
		return
	}
	configs, err := h.deliverables.Load(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]domain.DeliverableConfig, 0, len(configs))
	for _, c := range configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return out[i].Tag < out[j].Tag
	})
	writeJSON(w, http.StatusOK, out)
}
