package model

import "errors"

// Error taxonomy shared by the application services and mapped to HTTP
// status codes at the driving boundary.
var (
	// ErrInvalidRequest indicates a caller error (400).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized indicates a missing, invalid, or expired session (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a duplicate registration (409).
	ErrConflict = errors.New("conflict")

	// ErrRateLimited indicates the upstream provider signaled a quota or rate limit (429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates the upstream provider is mis-configured or
	// unreachable before streaming started (500).
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUpstreamFailure indicates the upstream stream failed after the response
	// was committed. It is reported in-band, never as a status code.
	ErrUpstreamFailure = errors.New("upstream failure")
)
