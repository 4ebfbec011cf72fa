// Package service implements the concrete external collaborator for Mode B
// and Mode C evaluation: an HTTP call to the Anthropic Messages API using a
// caller- or platform-supplied key.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/allisson/secrets/internal/errors"
)

const (
	defaultAPIBaseURL = "https://api.anthropic.com"
	messagesPath      = "%s/v1/messages"
	anthropicVersion  = "2023-06-01"
	defaultModel      = "claude-3-5-haiku-latest"
)

// Config controls how Polisher reaches the external LLM.
type Config struct {
	APIBaseURL string // Overridable for tests; defaults to defaultAPIBaseURL.
	Model      string // Defaults to defaultModel.
	Timeout    time.Duration
}

// Polisher implements the invocation pipeline's LLMPolisher contract against
// Anthropic's Messages API.
type Polisher struct {
	cfg    Config
	client *http.Client
}

// New constructs a Polisher. A zero Timeout defaults to 30s.
func New(cfg Config) *Polisher {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Polisher{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type messagesRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []messagesTurn `json:"messages"`
}

type messagesTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Polish sends system as the system prompt and user as the sole user turn,
// returning the first text block of the reply. Any transport failure, non-2xx
// response, or empty reply surfaces as errors.ErrExternalUnavailable; the
// caller decides whether that degrades silently (Mode B) or is raised
// directly (Mode C).
func (p *Polisher) Polish(ctx context.Context, system, user string, maxTokens int, apiKey string) (string, error) {
	if apiKey == "" {
		return "", apperrors.ErrExternalUnavailable
	}

	payload, err := json.Marshal(messagesRequest{
		Model:     p.cfg.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []messagesTurn{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode llm request")
	}

	url := fmt.Sprintf(messagesPath, p.cfg.APIBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to build llm request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrExternalUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", apperrors.ErrExternalUnavailable, resp.StatusCode)
	}

	var decoded messagesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("%w: malformed response", apperrors.ErrExternalUnavailable)
	}
	for _, block := range decoded.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: empty reply", apperrors.ErrExternalUnavailable)
}
