// Package llm sends single-turn prompts to OpenAI-compatible chat
// completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kalambet/jobfill/internal/model"
)

const (
	maxTokens    = 1000
	temperature  = 0.3
	maxReplySize = 8 << 20
)

var (
	ErrAPIKeyMissing   = errors.New("API key not configured")
	ErrUnknownProvider = errors.New("Unknown API provider")
)

// APIError is a non-2xx reply from a provider.
type APIError struct {
	Label      string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error: %s", e.Label, e.Message)
	}
	return e.Label + " API error"
}

// Provider describes one chat completion endpoint.
type Provider struct {
	Name    model.Provider
	Label   string
	BaseURL string
	Model   string
}

// DefaultProviders returns the built-in endpoints.
func DefaultProviders() map[model.Provider]Provider {
	return map[model.Provider]Provider{
		model.ProviderOpenAI: {
			Name:    model.ProviderOpenAI,
			Label:   "OpenAI",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		model.ProviderXAI: {
			Name:    model.ProviderXAI,
			Label:   "xAI",
			BaseURL: "https://api.x.ai/v1",
			Model:   "grok-beta",
		},
	}
}

// Gateway is stateless between calls. It never retries and imposes no
// deadline of its own; callers bound a call through ctx.
type Gateway struct {
	providers  map[model.Provider]Provider
	httpClient *http.Client
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// NewGateway creates a Gateway over the given providers. A nil map selects
// DefaultProviders.
func NewGateway(providers map[model.Provider]Provider, opts ...Option) *Gateway {
	if providers == nil {
		providers = DefaultProviders()
	}
	g := &Gateway{
		providers:  providers,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CallOption adjusts a single completion request.
type CallOption func(*chatRequest)

// JSONObject asks the provider to constrain the reply to a JSON object.
func JSONObject() CallOption {
	return func(r *chatRequest) {
		r.ResponseFormat = &responseFormat{Type: "json_object"}
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorPayload struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message and returns the text of the
// first choice. The key is checked before the provider so a missing key never
// reaches the network.
func (g *Gateway) Complete(ctx context.Context, prompt string, cfg model.ProviderConfig, opts ...CallOption) (string, error) {
	if cfg.APIKey == "" {
		return "", ErrAPIKeyMissing
	}
	name, ok := model.ParseProvider(string(cfg.Provider))
	if !ok {
		return "", ErrUnknownProvider
	}
	p, ok := g.providers[name]
	if !ok {
		return "", ErrUnknownProvider
	}

	req := chatRequest{
		Model:       p.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	for _, opt := range opts {
		opt(&req)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	setHeaders(httpReq, cfg.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s API request failed: %w", p.Label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return "", fmt.Errorf("reading %s API response: %w", p.Label, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Label: p.Label, StatusCode: resp.StatusCode}
		var payload errorPayload
		if json.Unmarshal(respBody, &payload) == nil {
			apiErr.Message = payload.Error.Message
		}
		return "", apiErr
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("decoding %s API response: %w", p.Label, err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message == nil || cr.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("No content received from %s API", p.Label)
	}
	return cr.Choices[0].Message.Content, nil
}

func setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
}
