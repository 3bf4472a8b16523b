// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat calls an OpenRouter-compatible chat-completions endpoint.
// Both the translator and the daily narrative generator go through it.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/papers-archive/internal/httputil"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// Defaults applied by New for unset configuration.
const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel    = "moonshotai/kimi-k2.5"
	DefaultAppName  = "hf-papers-archive"
	DefaultAppURL   = "https://github.com/your-org/hf-papers-archive"
	DefaultTimeout  = 30 * time.Second
)

var (
	// ErrNoChoices means the response carried no choices.
	ErrNoChoices = errors.New("response does not include choices")

	// ErrEmptyContent means the first choice had no text.
	ErrEmptyContent = errors.New("response content is empty")
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// contentPart is one element of a multi-part content body.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Client sends chat completions. A Client is safe for concurrent use;
// WithHTTPClient derives a copy bound to a different http.Client.
type Client struct {
	Endpoint    string
	APIKey      string
	Model       string
	AppName     string
	AppURL      string
	MaxAttempts int

	HTTP    *http.Client
	Limiter *rate.Limiter
	Logger  zerolog.Logger
}

// New builds a Client from cfg, filling defaults. httpClient may be nil,
// in which case a client with cfg.Timeout (default 30s) is created.
func New(cfg types.AIConfig, httpClient *http.Client, log zerolog.Logger) *Client {
	c := &Client{
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		AppName:     cfg.AppName,
		AppURL:      cfg.AppURL,
		MaxAttempts: cfg.MaxAttempts,
		HTTP:        httpClient,
		Logger:      log,
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.AppURL == "" {
		c.AppURL = DefaultAppURL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = httputil.DefaultMaxAttempts
	}
	if c.HTTP == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.HTTP = &http.Client{Timeout: timeout}
	}
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond))
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// WithHTTPClient returns a copy of c that sends through h. The rate
// limiter is shared with c.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	cp := *c
	cp.HTTP = h
	return &cp
}

// PoolSize is the idle-connection budget for n concurrent workers.
func PoolSize(workers int) int {
	return max(8, min(32, workers*2))
}

// NewTransport returns a transport whose connection pool is sized for the
// given worker count.
func NewTransport(workers int) *http.Transport {
	size := PoolSize(workers)
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = size
	t.MaxIdleConnsPerHost = size
	t.MaxConnsPerHost = size
	return t
}

// Complete sends messages and returns the first choice's text. HTTP 429 and
// 5xx responses, transport errors and undecodable or empty bodies are
// retried up to MaxAttempts. The rate limiter is consulted before every
// attempt.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("HTTP-Referer", c.AppURL)
	req.Header.Set("X-Title", c.AppName)

	var content string
	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, httputil.RetryOptions{
		MaxAttempts: c.MaxAttempts,
		Before:      c.wait,
		Accept: func(resp *http.Response) error {
			var err error
			content, err = decodeContent(resp.Body)
			return err
		},
		Logger: c.Logger,
	})
	if err != nil {
		return "", fmt.Errorf("calling chat API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("chat API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return content, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return nil
}

// decodeContent reads a completion body and returns its first choice's text.
func decodeContent(r io.Reader) (string, error) {
	var cr completionResponse
	if err := json.NewDecoder(r).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrNoChoices
	}
	content := ExtractContent(cr.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

// ExtractContent returns the trimmed text of a message content value, which
// is either a JSON string or a list of parts whose text fields are joined
// with newlines.
func ExtractContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}
