package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/okian/fplsquad/pkg/metrics"
)

// DefaultMaxLimit bounds TopN when no WithMaxLimit option is given.
const DefaultMaxLimit = 1000

// MemoryStore keeps the board as a slice sorted by model.RanksBefore.
// Readers share an RWMutex with the single writer; Replace swaps the
// slice wholesale so a reader never sees a half-built board.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   []Entry
	byID      map[int]int
	updatedAt time.Time

	maxLimit int
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:     map[int]int{},
		maxLimit: DefaultMaxLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace ranks players and swaps them in as the new board.
func (s *MemoryStore) Replace(ctx context.Context, players []model.ScoredCandidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := make([]model.ScoredCandidate, len(players))
	copy(sorted, players)
	model.SortByScore(sorted)

	entries := make([]Entry, len(sorted))
	byID := make(map[int]int, len(sorted))
	for i, p := range sorted {
		entries[i] = Entry{Player: p}
		byID[p.ID] = i
	}
	assignRanksWithTies(entries)

	s.mu.Lock()
	s.entries = entries
	s.byID = byID
	s.updatedAt = s.now()
	s.mu.Unlock()

	metrics.UpdateRankedPlayers(len(entries))
	return nil
}

// Rank returns the entry of a single player.
func (s *MemoryStore) Rank(ctx context.Context, playerID int) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return s.entries[i], nil
}

// TopN returns the best n entries, optionally restricted to one position.
func (s *MemoryStore) TopN(ctx context.Context, n int, pos model.Position) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 || n > s.maxLimit {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if pos != 0 && !pos.Valid() {
		metrics.RecordErrorByComponent("repository", "invalid_position")
		return nil, ErrInvalidPosition
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.entries)))
	for _, e := range s.entries {
		if len(out) == n {
			break
		}
		if pos != 0 && e.Player.Position != pos {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Count returns the total number of ranked players.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// UpdatedAt reports when the board was last replaced. Zero means never.
func (s *MemoryStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// assignRanksWithTies gives equal scores the same rank and keeps ranks
// consecutive (1, 1, 2). Position ranks follow the same rule per position.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	posRank := map[model.Position]int{}
	lastPos := map[model.Position]float64{}
	for i := range entries {
		score := entries[i].Player.Score
		if i == 0 || score != entries[i-1].Player.Score {
			rank++
		}
		entries[i].Rank = rank

		p := entries[i].Player.Position
		if last, seen := lastPos[p]; !seen || score != last {
			posRank[p]++
		}
		lastPos[p] = score
		entries[i].PositionRank = posRank[p]
	}
}
