// Package fixtures holds per-club fixture difficulty ratings over a gameweek window.
package fixtures

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Default table parameters.
const (
	DefaultLookahead = 4
	// DefaultPivot is the neutral FDR; a club averaging the pivot keeps a 1.0 multiplier.
	DefaultPivot = 3.0
	neutral      = 1.0
)

// Fixture is one scheduled match with the difficulty each side faces.
type Fixture struct {
	Gameweek       int
	Home           string
	Away           string
	HomeDifficulty float64
	AwayDifficulty float64
}

// Table maps club -> gameweek -> difficulty ratings (several in a double gameweek).
// A nil *Table is valid and neutral.
type Table struct {
	start     int
	lookahead int
	pivot     float64
	ratings   map[string]map[int][]float64
}

// Option configures a Table.
type Option func(*Table)

// WithPivot sets the neutral difficulty used by Multiplier.
func WithPivot(pivot float64) Option {
	return func(t *Table) {
		if pivot > 0 {
			t.pivot = pivot
		}
	}
}

// NewTable keeps the fixtures falling in [startGW, startGW+lookahead-1].
func NewTable(startGW, lookahead int, rows []Fixture, opts ...Option) *Table {
	if lookahead < 1 {
		lookahead = DefaultLookahead
	}
	t := &Table{
		start:     startGW,
		lookahead: lookahead,
		pivot:     DefaultPivot,
		ratings:   make(map[string]map[int][]float64),
	}
	for _, opt := range opts {
		opt(t)
	}
	end := startGW + lookahead - 1
	for _, f := range rows {
		if f.Gameweek < startGW || f.Gameweek > end {
			continue
		}
		t.add(f.Home, f.Gameweek, f.HomeDifficulty)
		t.add(f.Away, f.Gameweek, f.AwayDifficulty)
	}
	return t
}

// add drops unrated fixtures; FPL sends 0 when a difficulty is not set.
func (t *Table) add(club string, gw int, difficulty float64) {
	if club == "" || !(difficulty > 0) {
		return
	}
	byGW, ok := t.ratings[club]
	if !ok {
		byGW = make(map[int][]float64)
		t.ratings[club] = byGW
	}
	byGW[gw] = append(byGW[gw], difficulty)
}

// StartGameweek returns the first gameweek in the window.
func (t *Table) StartGameweek() int {
	if t == nil {
		return 0
	}
	return t.start
}

// Lookahead returns the window length in gameweeks.
func (t *Table) Lookahead() int {
	if t == nil {
		return 0
	}
	return t.lookahead
}

// Mean returns the mean difficulty a club faces in the window. ok is false when the
// club has no rated fixtures.
func (t *Table) Mean(club string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	byGW, found := t.ratings[club]
	if !found {
		return 0, false
	}
	values := make([]float64, 0, t.lookahead)
	for _, gw := range sortedKeys(byGW) {
		values = append(values, byGW[gw]...)
	}
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

// Multiplier returns pivot / mean difficulty. Missing data, a zero mean or a non-finite
// result yields the neutral 1.0.
func (t *Table) Multiplier(club string) float64 {
	mean, ok := t.Mean(club)
	if !ok || mean == 0 {
		return neutral
	}
	m := t.pivot / mean
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return neutral
	}
	return m
}

// Clubs returns every club with at least one rated fixture, sorted.
func (t *Table) Clubs() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.ratings))
	for club := range t.ratings {
		out = append(out, club)
	}
	sort.Strings(out)
	return out
}

// Ratings returns the club's difficulties per gameweek. The map is a copy.
func (t *Table) Ratings(club string) map[int][]float64 {
	if t == nil {
		return nil
	}
	byGW := t.ratings[club]
	out := make(map[int][]float64, len(byGW))
	for gw, r := range byGW {
		out[gw] = append([]float64(nil), r...)
	}
	return out
}

func sortedKeys(m map[int][]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
