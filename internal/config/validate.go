package config

import (
	"fmt"
	"math"

	"github.com/okian/fplsquad/internal/domain/model"
)

const (
	squadSize         = 15
	squadGoalkeepers  = 2
	subBudgetEpsilon  = 0.01
	maxPercent        = 100.0
	startingOutfields = 10
)

// Validate checks the loaded values. Failures wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return invalid("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.Budget <= 0 {
		return invalid("budget must be positive, got %v", c.Budget)
	}
	if c.ClubCap < 1 {
		return invalid("club_cap must be at least 1, got %d", c.ClubCap)
	}

	quotas, err := c.ModelQuotas()
	if err != nil {
		return err
	}
	if quotas.Total() != squadSize || quotas[model.Goalkeeper] != squadGoalkeepers {
		return invalid("quotas must total %d with %d goalkeepers, got %v", squadSize, squadGoalkeepers, c.Quotas)
	}

	mins, err := c.ModelStartingMins()
	if err != nil {
		return err
	}
	total := 0
	for p, n := range mins {
		if n < 0 || n > quotas[p] {
			return invalid("starting_mins %s=%d outside [0, %d]", p.Label(), n, quotas[p])
		}
		total += n
	}
	if total > startingOutfields {
		return invalid("starting_mins total %d exceeds %d outfield places", total, startingOutfields)
	}

	w := c.Scoring
	if w.Predicted < 0 || w.Form < 0 || w.Price < 0 || w.Differential < 0 || w.Momentum < 0 {
		return invalid("scoring weights must not be negative")
	}
	if c.AvailabilityThreshold < 0 || c.AvailabilityThreshold > maxPercent {
		return invalid("availability_threshold must be in [0, 100], got %v", c.AvailabilityThreshold)
	}
	for _, th := range c.RelaxThresholds {
		if th < 0 || th > maxPercent {
			return invalid("relax_thresholds must be in [0, 100], got %v", th)
		}
	}
	if c.FixtureLookahead < 1 {
		return invalid("fixture_lookahead must be at least 1, got %d", c.FixtureLookahead)
	}
	if c.FixturePivot <= 0 {
		return invalid("fixture_pivot must be positive, got %v", c.FixturePivot)
	}
	for _, gw := range c.GameweekWeights {
		if gw < 0 {
			return invalid("gameweek_weights must not be negative")
		}
	}
	if c.DoubtfulChance < 0 || c.DoubtfulChance > maxPercent {
		return invalid("doubtful_chance must be in [0, 100], got %v", c.DoubtfulChance)
	}
	if c.Risk.Safe < c.Risk.Balanced || c.Risk.Balanced < 0 || c.Risk.Safe > maxPercent {
		return invalid("risk bands must satisfy 0 <= balanced <= safe <= 100, got %v/%v", c.Risk.Balanced, c.Risk.Safe)
	}

	sub, err := c.ModelSubBudget()
	if err != nil {
		return err
	}
	sum := 0.0
	for _, f := range sub {
		if f < 0 {
			return invalid("sub_budget fractions must not be negative")
		}
		sum += f
	}
	if math.Abs(sum-1) > subBudgetEpsilon {
		return invalid("sub_budget fractions must sum to 1, got %.3f", sum)
	}

	if c.FPL.RateLimit <= 0 || c.FPL.Burst < 1 || c.FPL.TimeoutMS < 1 {
		return invalid("fpl rate_limit, burst and timeout_ms must be positive")
	}
	if c.CatalogTTLSeconds < 1 {
		return invalid("catalog_ttl_seconds must be positive, got %d", c.CatalogTTLSeconds)
	}
	if c.MaxPlayersLimit < 1 {
		return invalid("max_players_limit must be positive, got %d", c.MaxPlayersLimit)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// positionMap re-keys a label map by position. Two labels naming the same
// position are rejected.
func positionMap[V any](in map[string]V) (map[model.Position]V, error) {
	out := make(map[model.Position]V, len(in))
	for label, v := range in {
		p, err := model.ParsePosition(label)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if _, dup := out[p]; dup {
			return nil, invalid("position %s given twice", p.Label())
		}
		out[p] = v
	}
	return out, nil
}
