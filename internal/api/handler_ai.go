package api

import (
	"net/http"

	"docs-evaluator/internal/domain"
)

type analyzeRequest struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	Model    string `json:"model"`
}

type analyzeResponse struct {
	Analysis   string             `json:"analysis"`
	Evaluation *domain.Evaluation `json:"evaluation"`
}

// Analyze handles POST /api/ai/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.eval == nil {
		h.unavailable(w, r, "evaluation")
		return
	}
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.FileID == "" || req.FileName == "" || req.Model == "" {
		writeMessage(w, r, http.StatusBadRequest, "fileId, fileName and model are required")
		return
	}
	ev, err := h.eval.Analyze(r.Context(), req.FileID, req.FileName, req.Model)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Analysis: ev.Result, Evaluation: ev})
}

// History handles GET /api/ai/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.eval == nil {
		h.unavailable(w, r, "evaluation")
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	history, err := h.eval.History(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if history == nil {
		history = []domain.Evaluation{}
	}
	writeJSON(w, http.StatusOK, history)
}

// Providers handles GET /api/ai/providers.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	if h.eval == nil {
		h.unavailable(w, r, "evaluation")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"providers": h.eval.Providers()})
}
