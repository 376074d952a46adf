// Package llm is a chat client for OpenAI-style, Anthropic-style and local
// Ollama-style HTTP endpoints. The provider kind is inferred from the
// endpoint URL; each kind has one payload builder and one response
// extractor.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultAPIURL is the endpoint used when none is configured.
const DefaultAPIURL = "https://api.openai.com/v1/chat/completions"

// anthropicVersion is sent with every Anthropic-kind request.
const anthropicVersion = "2023-06-01"

// ErrEmptyResponse reports a transport success that yielded no extractable
// reply text.
var ErrEmptyResponse = errors.New("API返回的内容为空")

// ValidationError reports missing required input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Config holds the parameters of a chat endpoint. Construct a new Client
// whenever configuration changes; clients never share mutable state.
type Config struct {
	APIKey      string        `yaml:"api_key" env:"LLM_API_KEY"`
	APIURL      string        `yaml:"api_url" env:"LLM_API_URL"`
	Model       string        `yaml:"model" env:"LLM_MODEL"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`

	// MaxRetries above 1 retries transient transport failures with
	// exponential backoff. The default of 1 sends exactly once.
	MaxRetries int `yaml:"max_retries"`
}

// DefaultConfig returns the reference defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   2048,
		Timeout:     60 * time.Second,
		MaxRetries:  1,
	}
}

// Client talks to one configured endpoint. The kind is computed once at
// construction.
type Client struct {
	cfg    Config
	kind   Kind
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	kind := KindFromURL(cfg.APIURL)
	c := &Client{
		cfg:    cfg,
		kind:   kind,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
	}
	c.logger.Info("LLM client initialized", "kind", kind, "model", cfg.Model)
	return c
}

// Kind returns the inferred provider kind.
func (c *Client) Kind() Kind { return c.kind }

// HasAPIKey reports whether an API key is configured. Callers use this to
// decide between a live call and a labeled placeholder result.
func (c *Client) HasAPIKey() bool { return c.cfg.APIKey != "" }

// Chat sends a conversation and returns the reply text. Transport failures
// and empty replies are returned as errors.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	payload, err := buildPayload(c.kind, c.cfg, messages)
	if err != nil {
		return "", err
	}

	body, err := c.send(ctx, payload)
	if err != nil {
		return "", err
	}

	content, err := extractContent(c.kind, body)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// TestConnection sends a minimal probe request and reports whether the
// endpoint answered with a plausible response shape. It never propagates an
// error.
func (c *Client) TestConnection(ctx context.Context) bool {
	if c.cfg.APIKey == "" {
		return false
	}

	probeCfg := c.cfg
	probeCfg.MaxTokens = 5
	payload, err := buildProbePayload(c.kind, probeCfg)
	if err != nil {
		c.logger.Error("connection test failed", "error", err)
		return false
	}

	probe := &http.Client{Timeout: 10 * time.Second}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body, err := c.post(ctx, probe, payload)
	if err != nil {
		c.logger.Error("connection test failed", "error", err)
		return false
	}
	return probeLooksValid(c.kind, body)
}

// headers returns the per-kind request headers. Anthropic-kind endpoints
// use a dedicated key header and a pinned API version; everything else uses
// a bearer token.
func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if c.kind == KindAnthropic {
		h.Set("x-api-key", c.cfg.APIKey)
		h.Set("anthropic-version", anthropicVersion)
	} else {
		h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return h
}

func (c *Client) post(ctx context.Context, httpClient *http.Client, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = c.headers()

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
