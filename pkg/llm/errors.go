package llm

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a generation call failed.
type FailureKind string

const (
	// FailureUnavailable: the backend could not be reached or returned a
	// server-side error. Safe to retry.
	FailureUnavailable FailureKind = "unavailable"
	// FailureRateLimited: the backend rejected the call due to quota.
	FailureRateLimited FailureKind = "rate_limited"
	// FailureAuth: invalid or missing credentials. Not retryable.
	FailureAuth FailureKind = "auth"
	// FailureMalformed: the backend answered but the payload could not be
	// decoded into a usable response.
	FailureMalformed FailureKind = "malformed"
)

// GenerationError wraps a provider failure with its classification so callers
// can branch on the kind without string matching.
type GenerationError struct {
	Kind     FailureKind
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same call may succeed if repeated.
func (e *GenerationError) Retryable() bool {
	return e.Kind == FailureUnavailable || e.Kind == FailureRateLimited
}

func newGenerationError(kind FailureKind, provider string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Provider: provider, Err: err}
}

func Unavailable(provider string, err error) error {
	return newGenerationError(FailureUnavailable, provider, err)
}

func RateLimited(provider string, err error) error {
	return newGenerationError(FailureRateLimited, provider, err)
}

func AuthFailed(provider string, err error) error {
	return newGenerationError(FailureAuth, provider, err)
}

func Malformed(provider string, err error) error {
	return newGenerationError(FailureMalformed, provider, err)
}

// KindOf extracts the failure kind, or "" if err is not a GenerationError.
func KindOf(err error) FailureKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// IsRetryable reports whether err is a generation failure worth retrying.
func IsRetryable(err error) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Retryable()
	}
	return false
}
