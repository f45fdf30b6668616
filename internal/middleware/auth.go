package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"docs-evaluator/internal/domain"
)

type userKey struct{}

// IdentityVerifier resolves a bearer token to a roster record.
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, rawToken string) (*domain.RosterRecord, error)
}

// WithUser stores the verified user in the context.
func WithUser(ctx context.Context, rec *domain.RosterRecord) context.Context {
	return context.WithValue(ctx, userKey{}, rec)
}

// UserFromContext extracts the verified user from the context.
func UserFromContext(ctx context.Context) (*domain.RosterRecord, bool) {
	rec, ok := ctx.Value(userKey{}).(*domain.RosterRecord)
	return rec, ok && rec != nil
}

// Authenticate requires a Google ID token in the Authorization header and
// stores the matching roster record in the request context.
func Authenticate(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized: provide a Google ID token as a Bearer token")
				return
			}

			rec, err := verifier.VerifyToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				writeAuthError(w, verifyFailureStatus(err), verifyFailureMessage(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), rec)))
		})
	}
}

// RequireRole rejects requests whose verified user lacks role. Requests that
// never passed through Authenticate are let through unchanged.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rec, ok := UserFromContext(r.Context()); ok && rec.Role != role {
				writeAuthError(w, http.StatusForbidden, "forbidden: requires role "+string(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// verifyFailureStatus maps a verifier error to a status. Roster or key
// outages are 503 so they are not mistaken for a bad credential.
func verifyFailureStatus(err error) int {
	var (
		denied    *domain.AccessDeniedError
		source    *domain.SourceUnavailableError
		remote    *domain.RemoteUnavailableError
		configErr *domain.ConfigUnavailableError
	)
	switch {
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.As(err, &source), errors.As(err, &remote), errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

func verifyFailureMessage(err error) string {
	switch verifyFailureStatus(err) {
	case http.StatusForbidden:
		return err.Error()
	case http.StatusServiceUnavailable:
		return "identity check unavailable: " + err.Error()
	default:
		return "unauthorized: " + err.Error()
	}
}

func writeAuthError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": msg,
	})
}
