package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidRequest = errors.New("invalid squad request")
	ErrNoCatalog      = errors.New("no catalog configured")
	ErrNotStarted     = errors.New("service not started")
)
