package model

import "errors"

// Sentinel error kinds shared by the squad pipeline. These allow errors.Is from callers.
var (
	// ErrInvalidCandidate marks a candidate rejected at ingestion. Recoverable.
	ErrInvalidCandidate = errors.New("invalid candidate")
	// ErrSquadIncomplete marks an optimizer run that could not fill every quota. Recoverable.
	ErrSquadIncomplete = errors.New("squad incomplete")
	// ErrMalformedSquad marks a squad that does not match the quota shape. Not retried.
	ErrMalformedSquad = errors.New("malformed squad")
)
