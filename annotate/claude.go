package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1000

	apiVersion = "2023-06-01"
)

// Claude calls the Anthropic messages endpoint. Calls run behind a circuit
// breaker that opens after consecutive transport failures.
type Claude struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
	breakerSt BreakerSettings
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

type ClaudeOption func(*Claude)

func WithBaseURL(url string) ClaudeOption {
	return func(c *Claude) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithModel(model string) ClaudeOption {
	return func(c *Claude) {
		if model != "" {
			c.model = model
		}
	}
}

func WithMaxTokens(n int) ClaudeOption {
	return func(c *Claude) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func WithTimeout(timeout time.Duration) ClaudeOption {
	return func(c *Claude) { c.client.Timeout = timeout }
}

func WithHTTPClient(hc *http.Client) ClaudeOption {
	return func(c *Claude) { c.client = hc }
}

func WithClaudeLogger(l *slog.Logger) ClaudeOption {
	return func(c *Claude) {
		if l != nil {
			c.logger = l
		}
	}
}

// BreakerSettings tunes the circuit breaker. Zero values pick defaults.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	OnStateChange       func(from, to gobreaker.State)
}

func WithBreaker(bs BreakerSettings) ClaudeOption {
	return func(c *Claude) { c.breakerSt = bs }
}

func NewClaude(apiKey string, opts ...ClaudeOption) *Claude {
	c := &Claude{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(c.breakerSt, c.logger)
	return c
}

func newBreaker(bs BreakerSettings, logger *slog.Logger) *gobreaker.CircuitBreaker {
	failures := bs.ConsecutiveFailures
	if failures == 0 {
		failures = 3
	}
	timeout := bs.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "annotator",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A superseded request is not an endpoint failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrAnnotationUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			if bs.OnStateChange != nil {
				bs.OnStateChange(from, to)
			}
		},
	})
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Annotate sends the prompt for req and returns the first text block.
func (c *Claude) Annotate(ctx context.Context, req Request) (string, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.send(ctx, Prompt(req))
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (c *Claude) send(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("anthropic-version", apiVersion)
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(b))
	}

	var mr messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("decode response: %v: %w", err, ErrAnnotationUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API status %d: %w", resp.StatusCode, ErrAnnotationUnavailable)
	}

	for _, blk := range mr.Content {
		if blk.Type == "text" && strings.TrimSpace(blk.Text) != "" {
			return blk.Text, nil
		}
	}
	return "", ErrAnnotationUnavailable
}
