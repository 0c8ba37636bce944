package entity

import (
	"errors"
	"fmt"
)

type ProviderErrorKind string

const (
	ProviderErrorTimeout   ProviderErrorKind = "timeout"
	ProviderErrorAuth      ProviderErrorKind = "auth"
	ProviderErrorRateLimit ProviderErrorKind = "rate_limit"
	ProviderErrorOther     ProviderErrorKind = "other"
)

// ProviderError is a failure of an external embedding, search or generation provider.
// Details carries the provider response body as-is for the caller.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Details  any
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ProviderErrorTimeout || e.Kind == ProviderErrorRateLimit
}

// IsRetryable reports whether err wraps a transient ProviderError.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}
