// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers a YAML file and env vars on top.
// - Position keyed maps use lowercase labels (gk, def, mid, fwd).
// - Accessors convert the flat koanf shape into domain values.
package config

import (
	"time"

	"github.com/okian/fplsquad/internal/adapters/catalog"
	"github.com/okian/fplsquad/internal/adapters/fpl"
	"github.com/okian/fplsquad/internal/domain/fixtures"
	"github.com/okian/fplsquad/internal/domain/lineup"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/okian/fplsquad/internal/domain/scoring"
	"github.com/shopspring/decimal"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// AllowedOrigins feeds the CORS wrapper.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Budget is the default squad budget in millions.
	Budget float64 `koanf:"budget"`

	// Quotas is the squad shape by position label.
	Quotas map[string]int `koanf:"quotas"`

	// ClubCap limits players from one club.
	ClubCap int `koanf:"club_cap"`

	// StartingMins is the minimum of each outfield position in the starting XI.
	StartingMins map[string]int `koanf:"starting_mins"`

	// Scoring holds the score weights.
	Scoring ScoringWeights `koanf:"scoring"`

	// AvailabilityThreshold is the lowest chance of playing a doubtful player may have.
	AvailabilityThreshold float64 `koanf:"availability_threshold"`

	// FixtureLookahead is the number of upcoming gameweeks rated.
	FixtureLookahead int `koanf:"fixture_lookahead"`

	// FixturePivot is the difficulty that maps to a neutral multiplier.
	FixturePivot float64 `koanf:"fixture_pivot"`

	// GameweekWeights scale points per game over the lookahead.
	GameweekWeights []float64 `koanf:"gameweek_weights"`

	// DoubtfulChance stands in for a doubtful player with no reported chance.
	DoubtfulChance float64 `koanf:"doubtful_chance"`

	// SubBudget is the soft budget share of each position.
	SubBudget map[string]float64 `koanf:"sub_budget"`

	// Risk holds the captaincy ownership bands.
	Risk RiskBands `koanf:"risk"`

	// RelaxThresholds is the availability ladder tried after an incomplete squad.
	RelaxThresholds []float64 `koanf:"relax_thresholds"`

	// FPL configures the upstream API client.
	FPL FPLClient `koanf:"fpl"`

	// CatalogTTLSeconds is how long a fetched snapshot is served.
	CatalogTTLSeconds int `koanf:"catalog_ttl_seconds"`

	// MaxPlayersLimit caps GET /players?limit.
	MaxPlayersLimit int `koanf:"max_players_limit"`
}

// ScoringWeights mirrors scoring.Weights.
type ScoringWeights struct {
	Predicted    float64 `koanf:"predicted"`
	Form         float64 `koanf:"form"`
	Price        float64 `koanf:"price"`
	Differential float64 `koanf:"differential"`
	Momentum     float64 `koanf:"momentum"`
}

// RiskBands are ownership percentages.
type RiskBands struct {
	Safe     float64 `koanf:"safe"`
	Balanced float64 `koanf:"balanced"`
}

// FPLClient configures the FPL API client.
type FPLClient struct {
	BaseURL   string  `koanf:"base_url"`
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`
	TimeoutMS int     `koanf:"timeout_ms"`
	UserAgent string  `koanf:"user_agent"`
}

// New creates a Config populated with defaults.
func New() *Config {
	w := scoring.DefaultWeights()
	r := lineup.DefaultRiskThresholds()
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		AllowedOrigins: []string{"*"},
		Budget:         100.0,
		Quotas:         map[string]int{"gk": 2, "def": 5, "mid": 5, "fwd": 3},
		ClubCap:        3,
		StartingMins:   map[string]int{"def": 3, "mid": 2, "fwd": 1},
		Scoring: ScoringWeights{
			Predicted:    w.Predicted,
			Form:         w.Form,
			Price:        w.Price,
			Differential: w.Differential,
			Momentum:     w.Momentum,
		},
		AvailabilityThreshold: scoring.DefaultAvailabilityThreshold,
		FixtureLookahead:      fixtures.DefaultLookahead,
		FixturePivot:          fixtures.DefaultPivot,
		GameweekWeights:       catalog.DefaultGameweekWeights(),
		DoubtfulChance:        catalog.DefaultDoubtfulChance,
		SubBudget:             map[string]float64{"gk": 0.10, "def": 0.27, "mid": 0.38, "fwd": 0.25},
		Risk:                  RiskBands{Safe: r.Safe, Balanced: r.Balanced},
		RelaxThresholds:       []float64{50, 0},
		FPL: FPLClient{
			BaseURL:   fpl.DefaultBaseURL,
			RateLimit: 5,
			Burst:     2,
			TimeoutMS: 20_000,
			UserAgent: "fplsquad/1.0",
		},
		CatalogTTLSeconds: 600,
		MaxPlayersLimit:   100,
	}
}

// BudgetDecimal returns the budget rounded to one decimal place.
func (c *Config) BudgetDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Budget).Round(1)
}

// ModelQuotas converts Quotas to domain quotas.
func (c *Config) ModelQuotas() (model.Quotas, error) {
	return positionMap(c.Quotas)
}

// ModelStartingMins converts StartingMins to domain minimums.
func (c *Config) ModelStartingMins() (map[model.Position]int, error) {
	return positionMap(c.StartingMins)
}

// ModelSubBudget converts SubBudget to domain fractions.
func (c *Config) ModelSubBudget() (map[model.Position]float64, error) {
	return positionMap(c.SubBudget)
}

// Weights returns the scoring weights.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{
		Predicted:    c.Scoring.Predicted,
		Form:         c.Scoring.Form,
		Price:        c.Scoring.Price,
		Differential: c.Scoring.Differential,
		Momentum:     c.Scoring.Momentum,
	}
}

// RiskThresholds returns the captaincy risk bands.
func (c *Config) RiskThresholds() lineup.RiskThresholds {
	return lineup.RiskThresholds{Safe: c.Risk.Safe, Balanced: c.Risk.Balanced}
}

// NormalizeOptions returns the projection window for catalog ingestion.
func (c *Config) NormalizeOptions() catalog.NormalizeOptions {
	return catalog.NormalizeOptions{
		Lookahead:       c.FixtureLookahead,
		GameweekWeights: append([]float64(nil), c.GameweekWeights...),
		Pivot:           c.FixturePivot,
		DoubtfulChance:  c.DoubtfulChance,
	}
}

// Formation returns the squad shape with the starting minimums.
func (c *Config) Formation() (lineup.Formation, error) {
	q, err := c.ModelQuotas()
	if err != nil {
		return lineup.Formation{}, err
	}
	mins, err := c.ModelStartingMins()
	if err != nil {
		return lineup.Formation{}, err
	}
	return lineup.Formation{Quotas: q, Mins: mins}, nil
}

// CatalogTTL returns the snapshot TTL.
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSeconds) * time.Second
}

// FPLTimeout returns the upstream request timeout.
func (c *Config) FPLTimeout() time.Duration {
	return time.Duration(c.FPL.TimeoutMS) * time.Millisecond
}
