package lineup

import (
	"sort"

	"github.com/okian/fplsquad/internal/domain/model"
)

const (
	topPicks = 3
	// captainMultiplier doubles the captain's points.
	captainMultiplier = 2.0
)

// RiskThresholds map ownership percentages to risk labels.
type RiskThresholds struct {
	Safe     float64
	Balanced float64
}

// DefaultRiskThresholds returns ownership >= 30 safe, >= 15 balanced.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Safe: 30, Balanced: 15}
}

// Classify labels a player by ownership.
func (r RiskThresholds) Classify(ownership float64) model.Risk {
	switch {
	case ownership >= r.Safe:
		return model.RiskSafe
	case ownership >= r.Balanced:
		return model.RiskBalanced
	default:
		return model.RiskRisky
	}
}

// RankCaptaincy orders the starters by score (ties by name, then id) and returns the top
// three picks with their doubled score and risk label.
func RankCaptaincy(xi model.StartingXI, risk RiskThresholds) model.CaptaincyOrder {
	order := append([]model.ScoredCandidate(nil), xi.Starters...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	out := model.CaptaincyOrder{Order: order}
	for i := 0; i < len(order) && i < topPicks; i++ {
		p := order[i]
		out.Picks = append(out.Picks, model.CaptainPick{
			Player:  p,
			Score:   p.Score,
			Doubled: captainMultiplier * p.Score,
			Risk:    risk.Classify(p.Ownership),
		})
	}
	if len(order) > 0 {
		out.CaptainScore = captainMultiplier * order[0].Score
		out.AdjustedTotal = xi.TotalScore() + (captainMultiplier-1)*order[0].Score
	}
	return out
}
