package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/testutil"
)

type stubProvider struct {
	name   string
	got    string
	result string
	err    error
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Model() string { return p.name + "-model" }
func (p *stubProvider) Analyze(_ context.Context, prompt string) (string, error) {
	p.got = prompt
	return p.result, p.err
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(&stubProvider{name: "openrouter"}, &stubProvider{name: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini", "openrouter"}, r.Names())

	p, err := r.Get(" Gemini ")
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	_, err = r.Get("openai")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "gemini, openrouter")

	err = r.Register(&stubProvider{name: "OPENROUTER"})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestBuildPrompt(t *testing.T) {
	short := BuildPrompt("1. Introduction")
	assert.True(t, strings.HasSuffix(short, "DOCUMENT CONTENT:\n1. Introduction"))
	assert.Contains(t, short, "IEEE 830")

	long := BuildPrompt(strings.Repeat("é", MaxPromptChars+5))
	assert.True(t, strings.HasSuffix(long, "é...[truncated]"))
	body := strings.TrimPrefix(long, reviewInstructions)
	assert.Equal(t, MaxPromptChars, len([]rune(strings.TrimSuffix(body, truncatedMarker))))
}

func TestService_Analyze(t *testing.T) {
	store := testutil.NewFakeStore()
	doc := store.AddFile("p", "SRS", "text/plain", "The system shall sync submissions.")
	repo := &testutil.MockEvaluationRepo{}
	provider := &stubProvider{name: "openrouter", result: "Strengths: clear scope."}
	reg, err := NewRegistry(provider)
	require.NoError(t, err)

	svc := NewService(store, repo, reg, testutil.DiscardLogger())
	got, err := svc.Analyze(context.Background(), doc, "SRS.docx", "openrouter")
	require.NoError(t, err)

	assert.Equal(t, "Strengths: clear scope.", got.Result)
	assert.Equal(t, "openrouter-model", got.ModelUsed)
	assert.Equal(t, "SRS.docx", got.FileName)
	assert.Contains(t, provider.got, "The system shall sync submissions.")
	require.Len(t, repo.Entries, 1)
	assert.Equal(t, got.ID, repo.Entries[0].ID)
}

func TestService_AnalyzeErrors(t *testing.T) {
	store := testutil.NewFakeStore()
	doc := store.AddFile("p", "SRS", "text/plain", "text")
	failing := &stubProvider{name: "gemini", err: domain.ErrRemoteUnavailable(errors.New("503"), "gemini")}
	reg, err := NewRegistry(failing)
	require.NoError(t, err)
	repo := &testutil.MockEvaluationRepo{}
	svc := NewService(store, repo, reg, testutil.DiscardLogger())

	_, err = svc.Analyze(context.Background(), doc, "SRS", "unknown")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = svc.Analyze(context.Background(), "missing", "SRS", "gemini")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.Analyze(context.Background(), doc, "SRS", "gemini")
	var unavailable *domain.RemoteUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Empty(t, repo.Entries, "failed evaluations are not recorded")
}

func TestService_History(t *testing.T) {
	var gotLimit int
	repo := &testutil.MockEvaluationRepo{
		ListRecentFn: func(_ context.Context, limit int) ([]domain.Evaluation, error) {
			gotLimit = limit
			return []domain.Evaluation{{ID: "b"}, {ID: "a"}}, nil
		},
	}
	reg, _ := NewRegistry()
	svc := NewService(testutil.NewFakeStore(), repo, reg, nil)

	got, err := svc.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, DefaultHistoryLimit, gotLimit)
}

func TestOpenRouterProvider_Analyze(t *testing.T) {
	var gotReq chatRequest
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Looks complete."}}]}`)
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider("sk-test", srv.URL, "", "http://localhost:8080")
	require.NoError(t, err)

	got, err := p.Analyze(context.Background(), "review this")
	require.NoError(t, err)
	assert.Equal(t, "Looks complete.", got)
	assert.Equal(t, DefaultOpenRouterModel, gotReq.Model)
	assert.Equal(t, 1000, gotReq.MaxTokens)
	assert.InDelta(t, 0.3, gotReq.Temperature, 1e-9)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "review this", gotReq.Messages[0].Content[0].Text)
	assert.Equal(t, "Bearer sk-test", gotHeaders.Get("Authorization"))
	assert.Equal(t, "IEEE Docs Evaluator", gotHeaders.Get("X-Title"))
	assert.Equal(t, "http://localhost:8080", gotHeaders.Get("HTTP-Referer"))
}

func TestOpenRouterProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, "rate limited"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"not json", http.StatusBadGateway, `upstream down`, "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			p, err := NewOpenRouterProvider("k", srv.URL, "m", "")
			require.NoError(t, err)
			_, err = p.Analyze(context.Background(), "x")
			var unavailable *domain.RemoteUnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpenRouterProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenRouterProvider("", "", "", "")
	assert.Error(t, err)
}

func TestGeminiProvider_Analyze(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Well structured."}]}}]}`)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), "key", "", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, p.Model())

	got, err := p.Analyze(context.Background(), "review this")
	require.NoError(t, err)
	assert.Equal(t, "Well structured.", got)
	assert.Contains(t, gotPath, DefaultGeminiModel+":generateContent")
	assert.Contains(t, gotBody, "contents")
}
