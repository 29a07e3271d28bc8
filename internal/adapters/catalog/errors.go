package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNoBootstrap     = errors.New("no bootstrap data")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrAmbiguousPlayer = errors.New("ambiguous player name")
)
