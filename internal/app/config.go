package service

import (
	"github.com/okian/fplsquad/internal/config"
)

// ConfigOptions translates a loaded config into service options.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	formation, err := cfg.Formation()
	if err != nil {
		return nil, err
	}
	sub, err := cfg.ModelSubBudget()
	if err != nil {
		return nil, err
	}
	return []Option{
		WithWeights(cfg.Weights()),
		WithAvailabilityThreshold(cfg.AvailabilityThreshold),
		WithBudget(cfg.BudgetDecimal()),
		WithQuotas(formation.Quotas),
		WithStartingMins(formation.Mins),
		WithClubCap(cfg.ClubCap),
		WithSubBudget(sub),
		WithRiskThresholds(cfg.RiskThresholds()),
		WithRelaxThresholds(cfg.RelaxThresholds),
		WithMaxPlayersLimit(cfg.MaxPlayersLimit),
	}, nil
}
