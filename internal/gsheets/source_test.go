package gsheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"docs-evaluator/internal/domain"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewService(context.Background(), "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewSource(svc, "sheet-123")
}

func TestSource_ReadRange(t *testing.T) {
	var gotPath string
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range": "Deliverables_Config!A2:B4",
			"values": [][]any{
				{"SRS", "3/21/2026 23:59:00"},
				{"SDD"},
				{"SPMP", 42},
			},
		})
	})

	rows, err := src.ReadRange(context.Background(), "Deliverables_Config!A2:B")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-123/values/"), gotPath)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"SRS", "3/21/2026 23:59:00"}, rows[0])
	assert.Equal(t, []string{"SDD"}, rows[1])
	assert.Equal(t, []string{"SPMP", "42"}, rows[2])
}

func TestSource_ReadRangeEmpty(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Sheet1!A2:C"}`))
	})

	rows, err := src.ReadRange(context.Background(), "Sheet1!A2:C")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSource_ReadRangeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"forbidden", http.StatusForbidden, func(t *testing.T, err error) {
			var target *domain.AccessDeniedError
			assert.ErrorAs(t, err, &target)
		}},
		{"not found", http.StatusNotFound, func(t *testing.T, err error) {
			var target *domain.NotFoundError
			assert.ErrorAs(t, err, &target)
		}},
		{"server error", http.StatusServiceUnavailable, func(t *testing.T, err error) {
			var target *domain.RemoteUnavailableError
			assert.ErrorAs(t, err, &target)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			})
			_, err := src.ReadRange(context.Background(), "A1:B2")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
