package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// priceStep is the smallest price increment (0.1 units).
var priceStep = decimal.New(1, -1)

// Status describes whether a player can be picked.
type Status string

// Availability statuses.
const (
	StatusAvailable   Status = "available"
	StatusDoubtful    Status = "doubtful"
	StatusUnavailable Status = "unavailable"
)

// Availability is a player's fitness state. Chance is only meaningful for doubtful players.
type Availability struct {
	Status Status  `json:"status"`
	Chance float64 `json:"chance,omitempty"`
}

// Available returns a fully fit availability.
func Available() Availability { return Availability{Status: StatusAvailable} }

// Doubtful returns a doubtful availability with the given chance of playing.
func Doubtful(chance float64) Availability {
	return Availability{Status: StatusDoubtful, Chance: chance}
}

// Unavailable returns an unavailable availability.
func Unavailable() Availability { return Availability{Status: StatusUnavailable} }

// Candidate is a player eligible for squad selection.
type Candidate struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Club            string          `json:"club"`
	Position        Position        `json:"position"`
	Price           decimal.Decimal `json:"price"`
	Form            float64         `json:"form"`
	Ownership       float64         `json:"ownership"`
	Availability    Availability    `json:"availability"`
	PredictedPoints float64         `json:"predicted_points"`
	TransfersIn     int             `json:"transfers_in"`
	TransfersOut    int             `json:"transfers_out"`

	// PredictedByGameweek splits PredictedPoints over the projection window.
	PredictedByGameweek []GameweekPoints `json:"predicted_by_gameweek,omitempty"`
}

// GameweekPoints is the projection for one gameweek.
type GameweekPoints struct {
	Gameweek int     `json:"gameweek"`
	Points   float64 `json:"points"`
}

// Validate checks the ingestion invariants. Failures wrap ErrInvalidCandidate.
func (c Candidate) Validate() error {
	switch {
	case c.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidCandidate)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: id=%d missing name", ErrInvalidCandidate, c.ID)
	case strings.TrimSpace(c.Club) == "":
		return fmt.Errorf("%w: id=%d missing club", ErrInvalidCandidate, c.ID)
	case !c.Position.Valid():
		return fmt.Errorf("%w: id=%d unknown position %d", ErrInvalidCandidate, c.ID, int(c.Position))
	case !c.Price.IsPositive():
		return fmt.Errorf("%w: id=%d price must be positive", ErrInvalidCandidate, c.ID)
	case !c.Price.Mod(priceStep).IsZero():
		return fmt.Errorf("%w: id=%d price %s is not a multiple of 0.1", ErrInvalidCandidate, c.ID, c.Price)
	case c.Ownership < 0 || c.Ownership > 100:
		return fmt.Errorf("%w: id=%d ownership %.2f out of range", ErrInvalidCandidate, c.ID, c.Ownership)
	}
	switch c.Availability.Status {
	case StatusAvailable, StatusUnavailable:
	case StatusDoubtful:
		if c.Availability.Chance < 0 || c.Availability.Chance > 100 {
			return fmt.Errorf("%w: id=%d chance %.1f out of range", ErrInvalidCandidate, c.ID, c.Availability.Chance)
		}
	default:
		return fmt.Errorf("%w: id=%d unknown availability %q", ErrInvalidCandidate, c.ID, c.Availability.Status)
	}
	return nil
}

// NetTransfers returns transfers in minus transfers out.
func (c Candidate) NetTransfers() int {
	return c.TransfersIn - c.TransfersOut
}

// ScoredCandidate is a Candidate annotated with its desirability score.
type ScoredCandidate struct {
	Candidate
	Score             float64 `json:"score"`
	FixtureMultiplier float64 `json:"fixture_multiplier"`
}

