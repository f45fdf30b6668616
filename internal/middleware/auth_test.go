package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docs-evaluator/internal/domain"
)

type stubVerifier struct {
	records map[string]*domain.RosterRecord
	err     error
	seen    string
}

func (v *stubVerifier) VerifyToken(_ context.Context, raw string) (*domain.RosterRecord, error) {
	v.seen = raw
	if v.err != nil {
		return nil, v.err
	}
	rec, ok := v.records[raw]
	if !ok {
		return nil, domain.ErrAccessDenied("%q is not on the class allowlist", raw)
	}
	return rec, nil
}

// nextHandler records the user found in the request context.
func nextHandler() (http.Handler, func() (*domain.RosterRecord, bool)) {
	var rec *domain.RosterRecord
	var found bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, found = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, func() (*domain.RosterRecord, bool) { return rec, found }
}

func newVerifier() *stubVerifier {
	return &stubVerifier{records: map[string]*domain.RosterRecord{
		"teacher-token": {StudentName: "Prof X", Section: "N/A", GroupCode: "N/A", Role: domain.RoleTeacher},
		"student-token": {StudentName: "DOE, JANE", Section: "A", GroupCode: "G1", Role: domain.RoleStudent},
	}}
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantRole   domain.Role
	}{
		{"teacher", "Bearer teacher-token", http.StatusOK, domain.RoleTeacher},
		{"student", "Bearer student-token", http.StatusOK, domain.RoleStudent},
		{"surrounding whitespace", "Bearer  student-token ", http.StatusOK, domain.RoleStudent},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"empty token", "Bearer   ", http.StatusUnauthorized, ""},
		{"not on roster", "Bearer stranger-token", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, got := nextHandler()
			handler := Authenticate(newVerifier())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/drive/files/root", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			user, found := got()
			if tt.wantStatus != http.StatusOK {
				assert.False(t, found)
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.InDelta(t, float64(tt.wantStatus), body["code"], 0.001)
				return
			}
			require.True(t, found)
			assert.Equal(t, tt.wantRole, user.Role)
		})
	}
}

func TestAuthenticate_VerifierFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantPrefix string
	}{
		{"bad token", errors.New("token verification failed: expired"), http.StatusUnauthorized, "unauthorized: "},
		{"roster sheet down", domain.ErrSourceUnavailable(errors.New("googleapi: Error 503"), "read roster"), http.StatusServiceUnavailable, "identity check unavailable: "},
		{"drive down", domain.ErrRemoteUnavailable(errors.New("dial tcp: timeout"), "lookup"), http.StatusServiceUnavailable, "identity check unavailable: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubVerifier{err: tt.err}
			next, got := nextHandler()
			handler := Authenticate(v)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "abc", v.seen)
			_, found := got()
			assert.False(t, found)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Contains(t, body["message"], tt.wantPrefix)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.RosterRecord
		wantStatus int
	}{
		{"teacher allowed", &domain.RosterRecord{Role: domain.RoleTeacher}, http.StatusOK},
		{"student rejected", &domain.RosterRecord{Role: domain.RoleStudent}, http.StatusForbidden},
		{"unauthenticated passes", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := nextHandler()
			handler := RequireRole(domain.RoleTeacher)(next)

			req := httptest.NewRequest(http.MethodDelete, "/api/drive/files/abc", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
