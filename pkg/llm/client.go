package llm

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAttempts is the number of provider calls made before giving up.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the initial backoff.
	DefaultBaseDelay = 2 * time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) (err error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
	}
	return err
}

// Client wraps a Provider with retry, backoff and JSON extraction.
type Client struct {
	provider    Provider
	maxAttempts int
	baseDelay   time.Duration
	sleep       Sleeper
	logger      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts overrides the attempt limit.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay overrides the initial backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithSleeper replaces the sleep function, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new generation client around provider.
func NewClient(provider Provider, opts ...Option) (client *Client) {
	client = &Client{
		provider:    provider,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       ContextSleep,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Generate sends req to the provider. Rate limits back off exponentially
// (base * 3^attempt), timeouts retry after base, and any other failure is
// returned immediately.
func (c *Client) Generate(ctx context.Context, req Request) (resp Response, err error) {
	preq := ProviderRequest{
		System:      req.System,
		Content:     req.Content,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		ForceJSON:   req.ForceJSON,
	}

	var lastErr error
	var lastKind Kind

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		var presp ProviderResponse
		presp, lastErr = c.provider.Complete(ctx, preq)
		if lastErr == nil {
			resp.Text = presp.Text
			resp.Usage = presp.Usage
			if resp.Usage.TotalTokens == 0 {
				resp.Usage.TotalTokens = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
			}
			if req.ForceJSON {
				resp.JSON = ParseJSON(presp.Text)
				if resp.JSON == nil {
					c.logger.Warn().Msg("response requested as JSON could not be parsed")
				}
			}
			return resp, err
		}

		lastKind = classify(lastErr)
		if lastKind == KindAPI {
			err = &GenerationError{Kind: KindAPI, Attempts: attempt + 1, Err: lastErr}
			return resp, err
		}

		if attempt == c.maxAttempts-1 {
			break
		}

		delay := c.baseDelay
		if lastKind == KindRateLimited {
			delay = c.baseDelay * time.Duration(math.Pow(3, float64(attempt)))
		}

		c.logger.Warn().
			Str("kind", string(lastKind)).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("generation attempt failed, retrying")

		resp.Retries = append(resp.Retries, delay)

		sleepErr := c.sleep(ctx, delay)
		if sleepErr != nil {
			err = &GenerationError{Kind: lastKind, Attempts: attempt + 1, Err: errors.Wrap(sleepErr, "retry aborted")}
			return resp, err
		}
	}

	err = &GenerationError{Kind: lastKind, Attempts: c.maxAttempts, Err: lastErr}
	return resp, err
}
