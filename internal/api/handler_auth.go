package api

import (
	"net/http"
	"strings"

	"docs-evaluator/internal/domain"
)

type verifyRequest struct {
	IDToken     string `json:"idToken"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// VerifyLogin handles POST /api/auth/verify. A signed Google ID token takes
// precedence over the self-reported name and email.
func (h *Handler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	if h.roster == nil {
		h.unavailable(w, r, "roster")
		return
	}
	var req verifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var (
		rec *domain.RosterRecord
		err error
	)
	ctx := r.Context()
	if token := strings.TrimSpace(req.IDToken); token != "" {
		rec, err = h.roster.VerifyToken(ctx, token)
	} else {
		rec, err = h.roster.Verify(ctx, req.DisplayName, req.Email)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
