package llm

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindTimeout     Kind = "timeout"
	KindAPI         Kind = "api_error"
)

// ProviderError is returned by providers so the client can decide whether to
// retry.
type ProviderError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Kind, e.Message)
}

// GenerationError is the typed failure returned by Client.Generate.
type GenerationError struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s after %d attempt(s)): %v", e.Kind, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UserMessage is a short explanation suitable for end users.
func (e *GenerationError) UserMessage() (msg string) {
	switch e.Kind {
	case KindRateLimited:
		msg = "Rate limit exceeded. Please wait a minute and try again."
	case KindTimeout:
		msg = "The AI service timed out. Please try again."
	default:
		msg = fmt.Sprintf("AI service error: %v", e.Err)
	}
	return msg
}

// statusKind maps an HTTP status code to a failure kind.
func statusKind(status int) (kind Kind) {
	switch status {
	case 429, 529:
		kind = KindRateLimited
	case 408, 504:
		kind = KindTimeout
	default:
		kind = KindAPI
	}
	return kind
}

// classify decides the kind of an error returned from a provider.
func classify(err error) (kind Kind) {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		kind = provErr.Kind
		return kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
		return kind
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
		return kind
	}

	kind = KindAPI
	return kind
}
