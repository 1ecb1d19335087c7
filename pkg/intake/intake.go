// Package intake turns uploaded documents, profile pages, pasted text and
// questionnaire answers into validated profiles.
package intake

import (
	"context"
	"net/http"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DocumentTokenBudget caps document text sent for extraction.
	DocumentTokenBudget = 2500
	// PageTokenBudget caps profile page text sent for extraction.
	PageTokenBudget = 3000
)

// Result is what every adapter produces.
type Result struct {
	Profile    profile.Profile
	Validation profile.Result
	RawText    string
	Confidence float64
}

type settings struct {
	logger      zerolog.Logger
	httpClient  *http.Client
	policy      StatusPolicy
	maxAttempts int
	backoff     time.Duration
	sleep       llm.Sleeper
}

func defaultSettings() settings {
	return settings{
		logger:      zerolog.Nop(),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		policy:      DefaultStatusPolicy(),
		maxAttempts: 3,
		backoff:     2 * time.Second,
		sleep:       llm.ContextSleep,
	}
}

// Option configures an adapter.
type Option func(*settings)

// WithLogger sets the adapter logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client used by the page fetcher.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithStatusPolicy replaces the fetcher's status classification table.
func WithStatusPolicy(policy StatusPolicy) Option {
	return func(s *settings) {
		s.policy = policy
	}
}

// WithRetry sets fetch attempts and the linear backoff step.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *settings) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
		s.backoff = backoff
	}
}

// WithSleeper replaces the sleep function, mainly for tests.
func WithSleeper(sleep llm.Sleeper) Option {
	return func(s *settings) {
		s.sleep = sleep
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// extractor is the shared text -> generation -> validation step.
type extractor struct {
	gen    llm.Generator
	logger zerolog.Logger
}

type extraction struct {
	system     string
	prefix     string
	text       string
	budget     int
	provenance profile.Provenance
	// stamp adjusts the raw document before validation.
	stamp func(raw []byte) []byte
}

func (x extractor) extract(ctx context.Context, job extraction) (result Result, err error) {
	text := llm.Truncate(job.text, job.budget)

	var resp llm.Response
	resp, err = x.gen.Generate(ctx, llm.Request{
		System:      job.system,
		Content:     job.prefix + text,
		Model:       llm.ModelFast,
		Temperature: 0.2,
		MaxTokens:   2048,
		ForceJSON:   true,
	})
	if err != nil {
		err = newError(KindExtractionFailed, "AI parsing failed", err)
		return result, err
	}

	raw, ok := llm.ExtractJSON(resp.Text)
	if !ok {
		err = newError(KindExtractionFailed, "AI parsing failed: response contained no usable JSON", errors.New("no JSON in response"))
		return result, err
	}

	if job.stamp != nil {
		raw = job.stamp(raw)
	}

	result = finish(profile.Validate(raw), job.text, job.provenance, x.logger)
	return result, err
}

// finish stamps metadata and recomputes confidence. Validation problems are
// logged, never fatal.
func finish(validation profile.Result, sourceText string, provenance profile.Provenance, logger zerolog.Logger) (result Result) {
	if validation.Err != nil {
		logger.Warn().
			Str("provenance", string(provenance)).
			Int("violations", len(validation.Err.Violations)).
			Err(validation.Err).
			Msg("profile validation failed, continuing with best-available data")
	}

	p := validation.Profile
	p.Metadata = profile.Metadata{
		SourceText: sourceText,
		Provenance: provenance,
		Confidence: profile.Estimate(p),
	}
	validation.Profile = p

	result = Result{
		Profile:    p,
		Validation: validation,
		RawText:    sourceText,
		Confidence: p.Metadata.Confidence,
	}
	return result
}
