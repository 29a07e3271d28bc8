package repository

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound        = errors.New("player not found")
	ErrInvalidLimit    = errors.New("invalid ranking limit")
	ErrInvalidPosition = errors.New("invalid position filter")
)
