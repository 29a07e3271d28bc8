// Package service provides the core business service that implements
// the dependencies required by the HTTP API, the MCP tools and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fplsquad/internal/adapters/catalog"
	repository "github.com/okian/fplsquad/internal/adapters/repository"
	"github.com/okian/fplsquad/internal/domain/lineup"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/okian/fplsquad/internal/domain/optimizer"
	"github.com/okian/fplsquad/internal/domain/scoring"
	"github.com/okian/fplsquad/pkg/logger"
	"github.com/okian/fplsquad/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Result statuses.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
	StatusError      = "error"
)

// DefaultMaxPlayersLimit bounds TopPlayers.
const DefaultMaxPlayersLimit = 100

// DefaultRelaxThresholds is the availability ladder tried after an incomplete squad.
func DefaultRelaxThresholds() []float64 { return []float64{50, 0} }

// Catalog hands out normalised snapshots. *catalog.Provider satisfies it.
type Catalog interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
	Refresh(ctx context.Context) (catalog.Snapshot, error)
}

// Request describes one squad build. Nil fields fall back to the service defaults.
type Request struct {
	Budget                *decimal.Decimal `json:"budget,omitempty"`
	Locked                []int            `json:"locked,omitempty"`
	Excluded              []int            `json:"excluded,omitempty"`
	AvailabilityThreshold *float64         `json:"availability_threshold,omitempty"`
}

// Result is the outcome of BuildSquad. When Status is incomplete, Squad holds the
// partial squad, Unmet names the short positions and XI/Captaincy are nil.
type Result struct {
	ID          uuid.UUID             `json:"id"`
	Status      string                `json:"status"`
	Gameweek    int                   `json:"gameweek"`
	Threshold   float64               `json:"availability_threshold"`
	Relaxations []float64             `json:"relaxations,omitempty"`
	Eligible    int                   `json:"eligible"`
	Squad       model.Squad           `json:"squad"`
	XI          *model.StartingXI     `json:"xi,omitempty"`
	Captaincy   *model.CaptaincyOrder `json:"captaincy,omitempty"`
	Partial     bool                  `json:"partial"`
	Unmet       []model.Position      `json:"unmet,omitempty"`
}

// FixtureOutlook is the difficulty view of one club over the lookahead window.
type FixtureOutlook struct {
	Club       string            `json:"club"`
	Mean       float64           `json:"mean"`
	Multiplier float64           `json:"multiplier"`
	Ratings    map[int][]float64 `json:"ratings"`
}

// Fixtures is the outlook of every club.
type Fixtures struct {
	StartGameweek int              `json:"start_gameweek"`
	Lookahead     int              `json:"lookahead"`
	Clubs         []FixtureOutlook `json:"clubs"`
}

// RefreshSummary describes a freshly fetched snapshot.
type RefreshSummary struct {
	Gameweek  int       `json:"gameweek"`
	Players   int       `json:"players"`
	Rejected  int       `json:"rejected"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Service runs the squad pipeline against the catalog and keeps the ranking board current.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog Catalog
	board   repository.Store

	// Configuration
	weights   scoring.Weights
	threshold float64
	opts      optimizer.Options
	formation lineup.Formation
	risk      lineup.RiskThresholds
	relax     []float64
	maxLimit  int

	// State
	started    bool
	rankedAt   time.Time
	builds     int
	incomplete int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the snapshot source.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithStore sets the ranking store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.board = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWeights sets the scoring weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithAvailabilityThreshold sets the default doubtful-player threshold.
func WithAvailabilityThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= 100 {
			s.threshold = threshold
		}
	}
}

// WithBudget sets the default squad budget.
func WithBudget(budget decimal.Decimal) Option {
	return func(s *Service) {
		if budget.IsPositive() {
			s.opts.Budget = budget
		}
	}
}

// WithQuotas sets the squad quotas.
func WithQuotas(q model.Quotas) Option {
	return func(s *Service) {
		if len(q) > 0 {
			s.opts.Quotas = q
			s.formation.Quotas = q
		}
	}
}

// WithClubCap sets the per-club limit.
func WithClubCap(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.opts.ClubCap = limit
		}
	}
}

// WithSubBudget sets the per-position budget fractions.
func WithSubBudget(fractions map[model.Position]float64) Option {
	return func(s *Service) {
		if len(fractions) > 0 {
			s.opts.SubBudget = fractions
		}
	}
}

// WithStartingMins sets the per-position minimums of the starting XI.
func WithStartingMins(mins map[model.Position]int) Option {
	return func(s *Service) {
		if len(mins) > 0 {
			s.formation.Mins = mins
		}
	}
}

// WithRiskThresholds sets the captaincy risk bands.
func WithRiskThresholds(r lineup.RiskThresholds) Option {
	return func(s *Service) {
		s.risk = r
	}
}

// WithRelaxThresholds sets the availability ladder. An empty ladder disables relaxation.
func WithRelaxThresholds(ladder []float64) Option {
	return func(s *Service) {
		s.relax = append([]float64(nil), ladder...)
	}
}

// WithMaxPlayersLimit caps TopPlayers.
func WithMaxPlayersLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights:   scoring.DefaultWeights(),
		threshold: scoring.DefaultAvailabilityThreshold,
		opts:      optimizer.DefaultOptions(),
		formation: lineup.DefaultFormation(),
		risk:      lineup.DefaultRiskThresholds(),
		relax:     DefaultRelaxThresholds(),
		maxLimit:  DefaultMaxPlayersLimit,
		logger:    nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.board == nil {
		s.board = repository.NewMemoryStore(repository.WithMaxLimit(s.maxLimit))
	}

	return s
}

// Start warms the catalog and the ranking board. An unreachable catalog is logged,
// not fatal: the next request retries the fetch.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.catalog == nil {
		s.mu.Unlock()
		return ErrNoCatalog
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting squad service...")

	if _, err := s.rankedSnapshot(ctx); err != nil {
		s.logger.Warn(ctx, "initial catalog load failed", logger.Error(err))
	}

	s.logger.Info(ctx, "squad service started",
		logger.String("budget", s.opts.Budget.String()),
		logger.Float64("availabilityThreshold", s.threshold),
		logger.Int("rankedPlayers", s.board.Count(ctx)),
	)
	return nil
}

// Stop marks the service as stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "squad service stopped")
}

// BuildSquad runs scoring, optimization, XI selection and captaincy. When the optimizer
// cannot fill every slot it retries each lower threshold of the relax ladder. If the
// ladder is exhausted the partial squad is returned together with the incomplete error.
func (s *Service) BuildSquad(ctx context.Context, req Request) (Result, error) {
	const op = "service.BuildSquad"
	start := time.Now()
	res := Result{ID: uuid.New(), Status: StatusError}

	defer func() {
		metrics.RecordOptimization(res.Status)
		metrics.RecordOptimizationDuration(float64(time.Since(start).Milliseconds()))
	}()

	if err := s.ready(); err != nil {
		return res, err
	}

	opts, threshold, err := s.requestOptions(req)
	if err != nil {
		return res, err
	}

	snap, err := s.rankedSnapshot(ctx)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res.Gameweek = snap.Gameweek

	var squad model.Squad
	for _, th := range s.ladder(threshold) {
		if th != threshold {
			metrics.RecordRelaxation()
			res.Relaxations = append(res.Relaxations, th)
			s.log().Info(ctx, "relaxing availability threshold",
				logger.String("requestId", res.ID.String()),
				logger.Float64("threshold", th),
			)
		}
		res.Threshold = th

		scorer := scoring.New(scoring.WithWeights(s.weights), scoring.WithAvailabilityThreshold(th))
		scored := scorer.ScoreAll(snap.Candidates, snap.Table)
		res.Eligible = len(scored)
		metrics.UpdateEligibleCandidates(len(scored))

		squad, err = optimizer.Optimize(scored, opts)
		if err == nil {
			break
		}
		var incomplete *optimizer.IncompleteError
		if !errors.As(err, &incomplete) {
			return res, err
		}
		res.Squad = incomplete.Squad
		res.Unmet = incomplete.Unmet
	}
	if err != nil {
		res.Status = StatusIncomplete
		res.Partial = true
		s.count(false)
		s.log().Warn(ctx, "squad incomplete",
			logger.String("requestId", res.ID.String()),
			logger.Int("size", res.Squad.Size()),
			logger.Any("unmet", res.Unmet),
		)
		return res, err
	}

	xi, err := lineup.SelectXI(squad, s.formation)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	captaincy := lineup.RankCaptaincy(xi, s.risk)

	res.Status = StatusComplete
	res.Squad = squad
	res.Unmet = nil
	res.XI = &xi
	res.Captaincy = &captaincy
	s.count(true)

	spend, _ := squad.Spent.Float64()
	metrics.UpdateSquadSpend(spend)
	s.log().Info(ctx, "squad built",
		logger.String("requestId", res.ID.String()),
		logger.String("spent", squad.Spent.String()),
		logger.String("formation", xi.Formation()),
		logger.Int("relaxations", len(res.Relaxations)),
		logger.Duration("took", time.Since(start)),
	)
	return res, nil
}

// TopPlayers returns the best n ranked players, optionally for one position.
func (s *Service) TopPlayers(ctx context.Context, n int, pos model.Position) ([]repository.Entry, error) {
	if n > s.maxLimit {
		metrics.RecordErrorByComponent("service", "invalid_limit")
		return nil, repository.ErrInvalidLimit
	}
	if _, err := s.rankedSnapshot(ctx); err != nil {
		return nil, err
	}
	return s.board.TopN(ctx, n, pos)
}

// Rank returns the ranking entry of a single player.
func (s *Service) Rank(ctx context.Context, playerID int) (repository.Entry, error) {
	if _, err := s.rankedSnapshot(ctx); err != nil {
		return repository.Entry{}, err
	}
	return s.board.Rank(ctx, playerID)
}

// Fixtures returns the difficulty outlook of every club in the current window.
func (s *Service) Fixtures(ctx context.Context) (Fixtures, error) {
	snap, err := s.rankedSnapshot(ctx)
	if err != nil {
		return Fixtures{}, err
	}

	out := Fixtures{
		StartGameweek: snap.Table.StartGameweek(),
		Lookahead:     snap.Table.Lookahead(),
	}
	for _, club := range snap.Table.Clubs() {
		mean, _ := snap.Table.Mean(club)
		out.Clubs = append(out.Clubs, FixtureOutlook{
			Club:       club,
			Mean:       mean,
			Multiplier: snap.Table.Multiplier(club),
			Ratings:    snap.Table.Ratings(club),
		})
	}
	return out, nil
}

// Refresh forces a catalog fetch and re-ranks the board.
func (s *Service) Refresh(ctx context.Context) (RefreshSummary, error) {
	if s.catalog == nil {
		return RefreshSummary{}, ErrNoCatalog
	}
	snap, err := s.catalog.Refresh(ctx)
	if err != nil {
		return RefreshSummary{}, err
	}
	if err := s.rank(ctx, snap); err != nil {
		return RefreshSummary{}, err
	}
	return RefreshSummary{
		Gameweek:  snap.Gameweek,
		Players:   len(snap.Candidates),
		Rejected:  len(snap.Rejected),
		FetchedAt: snap.FetchedAt,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":               s.started,
		"budget":                s.opts.Budget.String(),
		"availabilityThreshold": s.threshold,
		"relaxThresholds":       s.relax,
		"builds":                s.builds,
		"incomplete":            s.incomplete,
	}

	if s.started {
		ranked := s.board.Count(context.Background())
		stats["rankedPlayers"] = ranked
		if !s.rankedAt.IsZero() {
			stats["catalogFetchedAt"] = s.rankedAt.UTC().Format(time.RFC3339)
		}
		metrics.UpdateRankedPlayers(ranked)
	}

	return stats
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return ErrNoCatalog
	}
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.NewNop()
	}
	return s.logger
}

func (s *Service) count(complete bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds++
	if !complete {
		s.incomplete++
	}
}

// requestOptions merges a request into the optimizer defaults.
func (s *Service) requestOptions(req Request) (optimizer.Options, float64, error) {
	opts := s.opts
	if req.Budget != nil {
		// Prices move in steps of 0.1.
		budget := req.Budget.Round(1)
		if !budget.IsPositive() {
			return opts, 0, fmt.Errorf("%w: budget must be positive, got %s", ErrInvalidRequest, req.Budget)
		}
		opts.Budget = budget
	}
	threshold := s.threshold
	if req.AvailabilityThreshold != nil {
		th := *req.AvailabilityThreshold
		if th < 0 || th > 100 {
			return opts, 0, fmt.Errorf("%w: availability threshold %.1f out of [0, 100]", ErrInvalidRequest, th)
		}
		threshold = th
	}
	opts.Locked = req.Locked
	opts.Excluded = req.Excluded
	return opts, threshold, nil
}

// ladder returns the requested threshold followed by every lower relax step.
func (s *Service) ladder(threshold float64) []float64 {
	out := []float64{threshold}
	for _, th := range s.relax {
		if th < out[len(out)-1] {
			out = append(out, th)
		}
	}
	return out
}

// rankedSnapshot returns the current snapshot, re-ranking the board when it is newer
// than the one last ranked.
func (s *Service) rankedSnapshot(ctx context.Context) (catalog.Snapshot, error) {
	if s.catalog == nil {
		return catalog.Snapshot{}, ErrNoCatalog
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "catalog")
		return catalog.Snapshot{}, fmt.Errorf("load catalog: %w", err)
	}

	s.mu.RLock()
	stale := !snap.FetchedAt.Equal(s.rankedAt)
	s.mu.RUnlock()
	if stale {
		if err := s.rank(ctx, snap); err != nil {
			return catalog.Snapshot{}, err
		}
	}
	return snap, nil
}

func (s *Service) rank(ctx context.Context, snap catalog.Snapshot) error {
	scorer := scoring.New(scoring.WithWeights(s.weights), scoring.WithAvailabilityThreshold(s.threshold))
	if err := s.board.Replace(ctx, scorer.ScoreAll(snap.Candidates, snap.Table)); err != nil {
		return fmt.Errorf("rank players: %w", err)
	}

	s.mu.Lock()
	s.rankedAt = snap.FetchedAt
	s.mu.Unlock()

	s.log().Debug(ctx, "ranking board replaced",
		logger.Int("gameweek", snap.Gameweek),
		logger.Int("players", s.board.Count(ctx)),
	)
	return nil
}
