// Package scoring turns a candidate's raw attributes into a single comparable score.
package scoring

import (
	"github.com/okian/fplsquad/internal/domain/fixtures"
	"github.com/okian/fplsquad/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultPredictedWeight    = 0.375
	defaultFormWeight         = 0.275
	defaultPriceWeight        = 0.125
	defaultDifferentialWeight = 0.125
	defaultMomentumWeight     = 0.10

	defaultDifferentialScale = 10.0
	defaultDifferentialFloor = 1.0
	defaultMomentumScale     = 100_000.0
)

// DefaultAvailabilityThreshold is the lowest chance of playing a doubtful player may have.
const DefaultAvailabilityThreshold = 75.0

// Weights are the linear coefficients of each score term.
type Weights struct {
	Predicted    float64 `json:"predicted"`
	Form         float64 `json:"form"`
	Price        float64 `json:"price"`
	Differential float64 `json:"differential"`
	Momentum     float64 `json:"momentum"`
}

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{
		Predicted:    defaultPredictedWeight,
		Form:         defaultFormWeight,
		Price:        defaultPriceWeight,
		Differential: defaultDifferentialWeight,
		Momentum:     defaultMomentumWeight,
	}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights replaces the term weights. Negative weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Predicted < 0 || w.Form < 0 || w.Price < 0 || w.Differential < 0 || w.Momentum < 0 {
			return
		}
		s.weights = w
	}
}

// WithAvailabilityThreshold sets the minimum chance of playing for doubtful players.
func WithAvailabilityThreshold(threshold float64) Option {
	return func(s *Scorer) {
		if threshold >= 0 && threshold <= 100 {
			s.threshold = threshold
		}
	}
}

// Scorer is a pure, deterministic scoring function. It holds configuration only.
type Scorer struct {
	weights   Weights
	threshold float64
}

// New creates a Scorer with default weights and threshold.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights:   DefaultWeights(),
		threshold: DefaultAvailabilityThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the configured weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Threshold returns the configured availability threshold.
func (s *Scorer) Threshold() float64 { return s.threshold }

// Eligible is the hard availability filter. Unavailable players never pass; doubtful
// players pass only when their chance of playing reaches the threshold.
func (s *Scorer) Eligible(c model.Candidate) bool {
	switch c.Availability.Status {
	case model.StatusAvailable:
		return true
	case model.StatusDoubtful:
		return c.Availability.Chance >= s.threshold
	default:
		return false
	}
}

// Score computes the composite score. table may be nil.
func (s *Scorer) Score(c model.Candidate, table *fixtures.Table) float64 {
	score, _ := s.score(c, table)
	return score
}

func (s *Scorer) score(c model.Candidate, table *fixtures.Table) (float64, float64) {
	multiplier := table.Multiplier(c.Club)
	w := s.weights

	predicted := c.PredictedPoints * multiplier
	premium := c.Price.InexactFloat64()
	differential := defaultDifferentialScale / (c.Ownership + defaultDifferentialFloor)
	momentum := float64(c.NetTransfers()) / defaultMomentumScale

	score := w.Predicted*predicted +
		w.Form*c.Form +
		w.Price*premium +
		w.Differential*differential +
		w.Momentum*momentum
	return score, multiplier
}

// ScoreAll filters out ineligible candidates and scores the rest, keeping input order.
func (s *Scorer) ScoreAll(cands []model.Candidate, table *fixtures.Table) []model.ScoredCandidate {
	out := make([]model.ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		if !s.Eligible(c) {
			continue
		}
		score, multiplier := s.score(c, table)
		out = append(out, model.ScoredCandidate{
			Candidate:         c,
			Score:             score,
			FixtureMultiplier: multiplier,
		})
	}
	return out
}
