package llms

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ProviderErrorCause categorizes a backend failure.
type ProviderErrorCause string

const (
	// CauseAuth is an authentication or authorization failure.
	CauseAuth ProviderErrorCause = "auth"
	// CauseRateLimit is a rate-limit rejection.
	CauseRateLimit ProviderErrorCause = "rate_limit"
	// CauseMalformedResponse is an unparseable or empty backend response.
	CauseMalformedResponse ProviderErrorCause = "malformed_response"
	// CauseNetwork is a connection or timeout failure.
	CauseNetwork ProviderErrorCause = "network"
)

// ProviderError is a categorized LLM backend failure. The gateway never
// retries internally; callers decide based on Cause.
type ProviderError struct {
	Provider ProviderType
	Cause    ProviderErrorCause
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Cause)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a categorized provider failure.
func NewProviderError(provider ProviderType, cause ProviderErrorCause, status int, err error) error {
	return errors.WithStack(&ProviderError{
		Provider: provider,
		Cause:    cause,
		Status:   status,
		Err:      err,
	})
}

// AsProviderError extracts a *ProviderError from err, if present.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}
