// Package catalog turns raw FPL payloads into validated candidates and a fixture table,
// and keeps the latest snapshot for a bounded time.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/fplsquad/internal/adapters/fpl"
	"github.com/okian/fplsquad/internal/domain/fixtures"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Default normalisation parameters.
const (
	DefaultDoubtfulChance = 50.0

	statusAvailable = "a"
	statusDoubtful  = "d"
)

// DefaultGameweekWeights weight the next gameweeks when projecting points.
func DefaultGameweekWeights() []float64 {
	return []float64{0.95, 1.05, 1.0, 1.1}
}

// NormalizeOptions controls the projection window.
type NormalizeOptions struct {
	Lookahead       int
	GameweekWeights []float64
	Pivot           float64
	DoubtfulChance  float64
}

// DefaultNormalizeOptions returns a four week window with the default weights.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		Lookahead:       fixtures.DefaultLookahead,
		GameweekWeights: DefaultGameweekWeights(),
		Pivot:           fixtures.DefaultPivot,
		DoubtfulChance:  DefaultDoubtfulChance,
	}
}

// Rejection records a player dropped at ingestion.
type Rejection struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Snapshot is one normalised view of the game.
type Snapshot struct {
	Gameweek   int               `json:"gameweek"`
	Candidates []model.Candidate `json:"candidates"`
	Table      *fixtures.Table   `json:"-"`
	Rejected   []Rejection       `json:"rejected"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// Normalize converts a bootstrap payload and the fixture list into a snapshot. Players
// failing validation are listed in Rejected and never become candidates.
func Normalize(b *fpl.Bootstrap, fx []fpl.Fixture, opts NormalizeOptions) (Snapshot, error) {
	if b == nil {
		return Snapshot{}, ErrNoBootstrap
	}
	if opts.Lookahead < 1 {
		opts.Lookahead = fixtures.DefaultLookahead
	}
	if opts.GameweekWeights == nil {
		opts.GameweekWeights = DefaultGameweekWeights()
	}
	if opts.DoubtfulChance <= 0 {
		opts.DoubtfulChance = DefaultDoubtfulChance
	}

	teams := b.TeamNames()
	current := b.CurrentGameweek()
	horizon := weightSum(opts.GameweekWeights, opts.Lookahead)

	snap := Snapshot{
		Gameweek:   current,
		Candidates: make([]model.Candidate, 0, len(b.Elements)),
	}
	for _, e := range b.Elements {
		c := candidate(e, teams, horizon, opts.DoubtfulChance)
		c.PredictedByGameweek = breakdown(e.PointsPerGame.Float64(), current+1, opts)
		if err := c.Validate(); err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{ID: e.ID, Name: c.Name, Reason: err.Error()})
			continue
		}
		snap.Candidates = append(snap.Candidates, c)
	}

	rows := make([]fixtures.Fixture, 0, len(fx))
	for _, f := range fx {
		if f.Gameweek() == 0 {
			continue
		}
		rows = append(rows, fixtures.Fixture{
			Gameweek:       f.Gameweek(),
			Home:           teams[f.TeamH],
			Away:           teams[f.TeamA],
			HomeDifficulty: float64(f.TeamHDifficulty),
			AwayDifficulty: float64(f.TeamADifficulty),
		})
	}
	var tableOpts []fixtures.Option
	if opts.Pivot > 0 {
		tableOpts = append(tableOpts, fixtures.WithPivot(opts.Pivot))
	}
	snap.Table = fixtures.NewTable(current+1, opts.Lookahead, rows, tableOpts...)

	return snap, nil
}

func candidate(e fpl.Element, teams map[int]string, horizon, doubtfulChance float64) model.Candidate {
	return model.Candidate{
		ID:              e.ID,
		Name:            strings.TrimSpace(e.FirstName + " " + e.SecondName),
		Club:            teams[e.Team],
		Position:        model.Position(e.ElementType),
		Price:           decimal.New(int64(e.NowCost), -1),
		Form:            e.Form.Float64(),
		Ownership:       e.SelectedByPercent.Float64(),
		Availability:    availability(e, doubtfulChance),
		PredictedPoints: e.PointsPerGame.Float64() * horizon,
		TransfersIn:     e.TransfersInEvent,
		TransfersOut:    e.TransfersOutEvent,
	}
}

func availability(e fpl.Element, doubtfulChance float64) model.Availability {
	switch e.Status {
	case statusAvailable:
		return model.Available()
	case statusDoubtful:
		if e.ChanceOfPlayingNextRound != nil {
			return model.Doubtful(float64(*e.ChanceOfPlayingNextRound))
		}
		return model.Doubtful(doubtfulChance)
	default:
		return model.Unavailable()
	}
}

// weightSum adds the first n weights.
func weightSum(weights []float64, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += weightAt(weights, i)
	}
	return sum
}

// weightAt returns the weight of the i-th gameweek in the window; gameweeks past the list
// weigh 1.0.
func weightAt(weights []float64, i int) float64 {
	if i < len(weights) {
		return weights[i]
	}
	return 1
}

// breakdown projects points per gameweek from the first window gameweek on.
func breakdown(ppg float64, start int, opts NormalizeOptions) []model.GameweekPoints {
	out := make([]model.GameweekPoints, 0, opts.Lookahead)
	for i := 0; i < opts.Lookahead; i++ {
		out = append(out, model.GameweekPoints{Gameweek: start + i, Points: ppg * weightAt(opts.GameweekWeights, i)})
	}
	return out
}

// String summarises the snapshot for logs.
func (s Snapshot) String() string {
	return fmt.Sprintf("gw=%d candidates=%d rejected=%d", s.Gameweek, len(s.Candidates), len(s.Rejected))
}
