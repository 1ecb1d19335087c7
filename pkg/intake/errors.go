package intake

import (
	"fmt"
)

// Kind classifies an intake failure.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindFileTooLarge      Kind = "file_too_large"
	KindUnreadable        Kind = "unreadable_document"
	KindInvalidURL        Kind = "invalid_url"
	KindBlocked           Kind = "blocked"
	KindNotFound          Kind = "not_found"
	KindFetchFailed       Kind = "fetch_failed"
	KindTooShort          Kind = "too_short"
	KindExtractionFailed  Kind = "extraction_failed"
)

// IntakeError is the typed failure returned by every adapter.
type IntakeError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *IntakeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *IntakeError) Unwrap() error {
	return e.Err
}

// UserMessage is a short explanation suitable for end users.
func (e *IntakeError) UserMessage() string {
	return e.Message
}

func newError(kind Kind, message string, err error) *IntakeError {
	return &IntakeError{Kind: kind, Message: message, Err: err}
}
