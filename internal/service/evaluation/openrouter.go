package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docs-evaluator/internal/domain"
)

// OpenRouter defaults.
const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	DefaultOpenRouterModel = "amazon/nova-lite-v1:free"
)

// OpenRouterProvider calls an OpenAI-compatible chat completions endpoint.
type OpenRouterProvider struct {
	apiKey  string
	url     string
	model   string
	referer string
	client  *http.Client
}

var _ Provider = (*OpenRouterProvider)(nil)

// NewOpenRouterProvider creates a provider. Empty url and model fall back to
// the OpenRouter defaults.
func NewOpenRouterProvider(apiKey, url, model, referer string) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	if url == "" {
		url = DefaultOpenRouterURL
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return &OpenRouterProvider{
		apiKey:  apiKey,
		url:     url,
		model:   model,
		referer: referer,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Name implements Provider.
func (p *OpenRouterProvider) Name() string { return "openrouter" }

// Model implements Provider.
func (p *OpenRouterProvider) Model() string { return p.model }

type chatContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Analyze implements Provider.
func (p *OpenRouterProvider) Analyze(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: []chatContent{{Type: "text", Text: prompt}},
		}},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("X-Title", "IEEE Docs Evaluator")
	if p.referer != "" {
		req.Header.Set("HTTP-Referer", p.referer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", domain.ErrRemoteUnavailable(err, "openrouter request")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", domain.ErrRemoteUnavailable(err, "read openrouter response")
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode == http.StatusOK {
		return "", domain.ErrRemoteUnavailable(err, "decode openrouter response")
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", domain.ErrRemoteUnavailable(fmt.Errorf("status %d: %s", resp.StatusCode, msg), "openrouter request")
	}
	if len(out.Choices) == 0 {
		return "", domain.ErrRemoteUnavailable(fmt.Errorf("no choices in response"), "openrouter request")
	}
	return out.Choices[0].Message.Content, nil
}
