package model

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// RanksBefore orders scored candidates: score DESC, then price ASC, name ASC, id ASC.
// The full key keeps every sort in the pipeline deterministic.
func RanksBefore(a, b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Price.Equal(b.Price) {
		return a.Price.LessThan(b.Price)
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// SortByScore sorts players in place using RanksBefore.
func SortByScore(players []ScoredCandidate) {
	sort.SliceStable(players, func(i, j int) bool {
		return RanksBefore(players[i], players[j])
	})
}

// Squad is the selected roster, bucketed by position.
type Squad struct {
	Buckets map[Position][]ScoredCandidate `json:"buckets"`
	Spent   decimal.Decimal                `json:"spent"`
	Budget  decimal.Decimal                `json:"budget"`
}

// NewSquad returns an empty squad for the given budget.
func NewSquad(budget decimal.Decimal) Squad {
	return Squad{
		Buckets: make(map[Position][]ScoredCandidate, len(Positions)),
		Spent:   decimal.Zero,
		Budget:  budget,
	}
}

// Players returns members ordered GK, DEF, MID, FWD and by score within a bucket.
func (s Squad) Players() []ScoredCandidate {
	out := make([]ScoredCandidate, 0, s.Size())
	for _, p := range Positions {
		bucket := append([]ScoredCandidate(nil), s.Buckets[p]...)
		SortByScore(bucket)
		out = append(out, bucket...)
	}
	return out
}

// Size returns the number of players across all buckets.
func (s Squad) Size() int {
	n := 0
	for _, b := range s.Buckets {
		n += len(b)
	}
	return n
}

// ClubCounts returns how many squad members each club contributes.
func (s Squad) ClubCounts() map[string]int {
	counts := make(map[string]int)
	for _, b := range s.Buckets {
		for _, p := range b {
			counts[p.Club]++
		}
	}
	return counts
}

// Remaining returns the unspent budget.
func (s Squad) Remaining() decimal.Decimal {
	return s.Budget.Sub(s.Spent)
}

// Contains reports whether the player id is in the squad.
func (s Squad) Contains(id int) bool {
	for _, b := range s.Buckets {
		for _, p := range b {
			if p.ID == id {
				return true
			}
		}
	}
	return false
}

// StartingXI splits a squad into eleven starters and four bench players.
type StartingXI struct {
	Starters []ScoredCandidate `json:"starters"`
	Bench    []ScoredCandidate `json:"bench"`
}

// Count returns how many starters play at position p.
func (xi StartingXI) Count(p Position) int {
	n := 0
	for _, s := range xi.Starters {
		if s.Position == p {
			n++
		}
	}
	return n
}

// Formation returns the outfield shape, e.g. "4-4-2".
func (xi StartingXI) Formation() string {
	return fmt.Sprintf("%d-%d-%d", xi.Count(Defender), xi.Count(Midfielder), xi.Count(Forward))
}

// TotalScore sums the starters' scores.
func (xi StartingXI) TotalScore() float64 {
	total := 0.0
	for _, s := range xi.Starters {
		total += s.Score
	}
	return total
}

// Risk is a qualitative captaincy label derived from ownership.
type Risk string

// Risk labels.
const (
	RiskSafe     Risk = "safe"
	RiskBalanced Risk = "balanced"
	RiskRisky    Risk = "risky"
)

// CaptainPick is one of the top captaincy recommendations.
type CaptainPick struct {
	Player  ScoredCandidate `json:"player"`
	Score   float64         `json:"score"`
	Doubled float64         `json:"doubled"`
	Risk    Risk            `json:"risk"`
}

// CaptaincyOrder ranks the starting eleven for the armband.
type CaptaincyOrder struct {
	Order         []ScoredCandidate `json:"order"`
	Picks         []CaptainPick     `json:"picks"`
	CaptainScore  float64           `json:"captain_score"`
	AdjustedTotal float64           `json:"adjusted_total"`
}

// Captain returns the first pick, if any.
func (c CaptaincyOrder) Captain() (CaptainPick, bool) {
	if len(c.Picks) == 0 {
		return CaptainPick{}, false
	}
	return c.Picks[0], true
}

// ViceCaptain returns the second pick, if any.
func (c CaptaincyOrder) ViceCaptain() (CaptainPick, bool) {
	if len(c.Picks) < 2 {
		return CaptainPick{}, false
	}
	return c.Picks[1], true
}
