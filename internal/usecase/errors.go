package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrQuotaExceeded means the daily upstream budget is spent; no call was made.
	ErrQuotaExceeded = errors.New("daily api quota exceeded")
	// ErrUpstreamUnavailable means every credential failed for the call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedData marks provider payloads that could not be decoded at all.
	// Individual records with missing fields are defaulted instead.
	ErrMalformedData = errors.New("malformed upstream data")
)
