package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// Default endpoints and models.
const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	PerplexityBaseURL = "https://api.perplexity.ai"
	DefaultReasoning  = "gpt-4o-mini"
	DefaultSearch     = "sonar-pro"
)

// Config configures a Client.
type Config struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is a chat-completion client for one provider. It does not retry.
type Client struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a client. An empty key is accepted; every call then fails with
// apperr.ErrProviderAuth.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		name:       cfg.Name,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return c.name }

// HasKey reports whether a credential is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends req to {baseURL}/chat/completions.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", c.name, apperr.ErrProviderAuth)
	}

	body := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if body.Model == "" {
		body.Model = c.model
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", c.name, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.name, apperr.ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read response: %v", c.name, apperr.ErrProvider, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w: status %d", c.name, apperr.ErrProviderAuth, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: %w: status %d: %s", c.name, apperr.ErrProvider, resp.StatusCode, truncate(string(raw), 300))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%s: %w: parse response: %v", c.name, apperr.ErrProvider, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%s: %w: %s", c.name, apperr.ErrProvider, parsed.Error.Message)
	}

	out := &Completion{Citations: parsed.Citations, Model: parsed.Model}
	if len(parsed.Choices) > 0 {
		out.Content = strings.TrimSpace(parsed.Choices[0].Message.Content)
	}
	if out.Citations == nil {
		out.Citations = []string{}
	}
	if out.Model == "" {
		out.Model = body.Model
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
