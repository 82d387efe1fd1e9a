package repository

import (
	"errors"
	"fmt"
)

// ErrKind classifies provider failures. All kinds collapse to "no data" for
// orchestration, but they are logged and counted distinctly.
type ErrKind string

const (
	ErrKindAuth          ErrKind = "auth"           // 401/403, non-retryable
	ErrKindRateLimited   ErrKind = "rate_limited"   // 429, back off / fall back
	ErrKindUnavailable   ErrKind = "unavailable"    // 5xx or timeout
	ErrKindMalformed     ErrKind = "malformed"      // parse failure, missing fields
	ErrKindNotConfigured ErrKind = "not_configured" // no credential present
)

// ProviderError is the uniform failure signal every client maps provider
// errors into. Raw provider payloads never travel past this type.
type ProviderError struct {
	Provider   string
	Kind       ErrKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError builds a classified provider failure.
func NewProviderError(provider string, kind ErrKind, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, StatusCode: status, Err: err}
}

// ClassifyStatus maps an HTTP status code to an error kind.
func ClassifyStatus(status int) ErrKind {
	switch {
	case status == 401 || status == 403:
		return ErrKindAuth
	case status == 429:
		return ErrKindRateLimited
	case status >= 500:
		return ErrKindUnavailable
	default:
		return ErrKindMalformed
	}
}

// KindOf extracts the error kind, or ErrKindUnavailable for plain transport
// errors (timeouts, refused connections).
func KindOf(err error) ErrKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindUnavailable
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return KindOf(err) == ErrKindAuth }
