package stylegenie

import "github.com/stylegenie/matcher/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput        = domain.ErrInvalidInput
	ErrNotFound            = domain.ErrNotFound
	ErrUpstreamUnavailable = domain.ErrUpstreamUnavailable
)
