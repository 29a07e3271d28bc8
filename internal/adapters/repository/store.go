// Package repository holds the ranked player board served by the read endpoints.
package repository

import (
	"context"

	"github.com/okian/fplsquad/internal/domain/model"
)

// Entry represents a ranked player.
type Entry struct {
	Rank         int                   `json:"rank"`
	PositionRank int                   `json:"position_rank"`
	Player       model.ScoredCandidate `json:"player"`
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Replace swaps the whole board for a freshly scored player pool.
	Replace(ctx context.Context, players []model.ScoredCandidate) error

	// Rank returns the current rank and score for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID int) (Entry, error)

	// TopN returns the top-N entries ordered by score desc. A zero position
	// means every position.
	TopN(ctx context.Context, n int, pos model.Position) ([]Entry, error)

	// Count returns the number of players on the board.
	Count(ctx context.Context) int
}
