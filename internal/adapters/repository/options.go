package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxLimit caps how many entries a single TopN call may return.
func WithMaxLimit(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithClock overrides the clock used to stamp replacements.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
