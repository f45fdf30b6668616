package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docs-evaluator/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var configUnavailable *domain.ConfigUnavailableError
	var sourceUnavailable *domain.SourceUnavailableError
	var remoteUnavailable *domain.RemoteUnavailableError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &configUnavailable), errors.As(err, &sourceUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &remoteUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Code:      status,
		Message:   msg,
		RequestID: requestID(r),
	})
}

// writeError maps err to a status. Server-side failures are logged and their
// details withheld from the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", requestID(r), "error", err)
		msg = http.StatusText(status)
	} else if status >= http.StatusBadGateway {
		h.logger.WarnContext(r.Context(), "upstream unavailable",
			"method", r.Method, "path", r.URL.Path, "request_id", requestID(r), "error", err)
	}
	writeMessage(w, r, status, msg)
}
