package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed or incomplete request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamUnavailable signals a failure of a feature provider or candidate store.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNotFound signals a missing catalog entry.
	ErrNotFound = errors.New("not found")
	// ErrMalformedCandidate signals a candidate that cannot be scored.
	ErrMalformedCandidate = errors.New("malformed candidate")
)
