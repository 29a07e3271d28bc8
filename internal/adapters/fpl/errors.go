package fpl

import "errors"

// Sentinel kinds for FPL client errors.
var (
	// ErrUpstream marks a failed or non-200 response from the FPL API.
	ErrUpstream = errors.New("fpl upstream error")
	// ErrBreakerOpen marks a request rejected while the circuit breaker is open.
	ErrBreakerOpen = errors.New("fpl circuit breaker open")
)
