package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shuttle/internal/config"
)

const (
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// completer is one model backend. Both backends take a system/user prompt
// pair and must return the model's raw JSON payload.
type completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Ping(ctx context.Context) error
}

// Client talks to the configured language model and exposes the two jobs
// the pipeline uses it for: filename parsing and name shortening.
type Client struct {
	backend completer

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client, *backendOptions)

type backendOptions struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(_ *Client, opts *backendOptions) {
		if client != nil {
			opts.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client, _ *backendOptions) {
		c.retryMaxAttempts = attempts
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client, _ *backendOptions) {
		c.sleeper = sleeper
	}
}

// New constructs a client for the configured provider.
func New(cfg config.LLM, opts ...Option) (*Client, error) {
	client := &Client{
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	backendOpts := &backendOptions{}
	for _, opt := range opts {
		opt(client, backendOpts)
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	httpClient := backendOpts.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "ollama":
		client.backend = newOllamaBackend(cfg, httpClient)
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("llm: openai provider requires an api key")
		}
		client.backend = newOpenAIBackend(cfg, httpClient)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	return client, nil
}

// HealthCheck verifies the model endpoint is reachable and responding.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

// completeWithRetry runs one JSON completion with bounded retries on
// transient failures.
func (c *Client) completeWithRetry(ctx context.Context, systemPrompt, userPrompt, op string) (string, error) {
	attempts := c.retryMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.backend.CompleteJSON(ctx, systemPrompt, userPrompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt == attempts || !retryable(ctx, err) {
			break
		}
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", op, lastErr)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusRequestTimeout ||
			statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.retryMaxDelay {
			return c.retryMaxDelay
		}
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}
