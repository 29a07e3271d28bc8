// Package optimizer selects a fifteen-player squad under a budget, position quotas and a
// per-club cap. It is a greedy, position-sequential heuristic with a hard budget reserve.
package optimizer

import (
	"fmt"
	"sort"

	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Default optimizer settings.
const (
	DefaultClubCap = 3
)

// DefaultBudget is the standard squad budget in millions.
var DefaultBudget = decimal.NewFromInt(100)

// DefaultSubBudget returns the soft spending fraction per position.
func DefaultSubBudget() map[model.Position]float64 {
	return map[model.Position]float64{
		model.Goalkeeper: 0.10,
		model.Defender:   0.27,
		model.Midfielder: 0.38,
		model.Forward:    0.25,
	}
}

// Options configures a single optimization run.
type Options struct {
	Budget    decimal.Decimal
	Quotas    model.Quotas
	ClubCap   int
	SubBudget map[model.Position]float64
	Locked    []int
	Excluded  []int
}

// DefaultOptions returns the standard game rules.
func DefaultOptions() Options {
	return Options{
		Budget:    DefaultBudget,
		Quotas:    model.DefaultQuotas(),
		ClubCap:   DefaultClubCap,
		SubBudget: DefaultSubBudget(),
	}
}

func (o Options) withDefaults() Options {
	if o.Quotas == nil {
		o.Quotas = model.DefaultQuotas()
	}
	if o.ClubCap < 1 {
		o.ClubCap = DefaultClubCap
	}
	if o.SubBudget == nil {
		o.SubBudget = DefaultSubBudget()
	}
	return o
}

// run holds the mutable state of one Optimize call.
type run struct {
	opts     Options
	squad    model.Squad
	pool     map[model.Position][]model.ScoredCandidate
	byPrice  map[model.Position][]model.ScoredCandidate
	admitted map[int]bool
	clubs    map[string]int
}

// Optimize builds a squad from scored candidates. Candidates are visited per position
// (GK, DEF, MID, FWD) in score order. A first pass respects the cumulative sub-budget
// allowance; a second pass ignores it. Every admission must leave enough budget to buy
// the cheapest remaining players for all unfilled slots.
//
// On failure the partial squad is returned together with an *IncompleteError.
func Optimize(cands []model.ScoredCandidate, opts Options) (model.Squad, error) {
	opts = opts.withDefaults()
	if !opts.Budget.IsPositive() {
		return model.Squad{}, fmt.Errorf("%w: budget must be positive", ErrInvalidOptions)
	}

	r := newRun(cands, opts)
	if err := r.admitLocked(); err != nil {
		return r.squad, err
	}

	var (
		unmet     []model.Position
		allowance float64
	)
	for _, p := range model.Positions {
		quota := opts.Quotas[p]
		if quota <= 0 {
			continue
		}
		allowance += opts.SubBudget[p]
		limit := opts.Budget.Mul(decimal.NewFromFloat(allowance)).Round(4)

		r.fill(p, func(c model.ScoredCandidate) bool {
			return r.squad.Spent.Add(c.Price).LessThanOrEqual(limit)
		})
		if r.open(p) > 0 {
			r.fill(p, nil)
		}
		if r.open(p) > 0 {
			unmet = append(unmet, p)
		}
	}

	if len(unmet) > 0 {
		return r.squad, &IncompleteError{Squad: r.squad, Unmet: unmet}
	}
	return r.squad, nil
}

func newRun(cands []model.ScoredCandidate, opts Options) *run {
	excluded := make(map[int]bool, len(opts.Excluded))
	for _, id := range opts.Excluded {
		excluded[id] = true
	}

	r := &run{
		opts:     opts,
		squad:    model.NewSquad(opts.Budget),
		pool:     make(map[model.Position][]model.ScoredCandidate, len(model.Positions)),
		byPrice:  make(map[model.Position][]model.ScoredCandidate, len(model.Positions)),
		admitted: make(map[int]bool),
		clubs:    make(map[string]int),
	}

	seen := make(map[int]bool, len(cands))
	for _, c := range cands {
		if excluded[c.ID] || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		r.pool[c.Position] = append(r.pool[c.Position], c)
	}

	for p, list := range r.pool {
		model.SortByScore(list)
		cheap := append([]model.ScoredCandidate(nil), list...)
		sort.SliceStable(cheap, func(i, j int) bool {
			return cheap[i].Price.LessThan(cheap[j].Price)
		})
		r.byPrice[p] = cheap
	}
	return r
}

func (r *run) admitLocked() error {
	for _, id := range r.opts.Locked {
		if r.admitted[id] {
			continue
		}
		c, ok := r.find(id)
		if !ok {
			return fmt.Errorf("%w: player %d is not in the candidate pool", ErrInvalidLock, id)
		}
		if r.open(c.Position) <= 0 {
			return fmt.Errorf("%w: player %d exceeds the %s quota", ErrInvalidLock, id, c.Position.Label())
		}
		if r.clubs[c.Club] >= r.opts.ClubCap {
			return fmt.Errorf("%w: player %d exceeds the club cap for %s", ErrInvalidLock, id, c.Club)
		}
		if r.squad.Spent.Add(c.Price).GreaterThan(r.opts.Budget) {
			return fmt.Errorf("%w: player %d exceeds the budget", ErrInvalidLock, id)
		}
		r.admit(c)
	}
	return nil
}

func (r *run) find(id int) (model.ScoredCandidate, bool) {
	for _, list := range r.pool {
		for _, c := range list {
			if c.ID == id {
				return c, true
			}
		}
	}
	return model.ScoredCandidate{}, false
}

// fill walks the sorted partition of p and admits every candidate that passes the
// club cap, the optional soft check and the hard reserve.
func (r *run) fill(p model.Position, soft func(model.ScoredCandidate) bool) {
	for _, c := range r.pool[p] {
		if r.open(p) <= 0 {
			return
		}
		if r.admitted[c.ID] || r.clubs[c.Club] >= r.opts.ClubCap {
			continue
		}
		if soft != nil && !soft(c) {
			continue
		}
		if !r.reserveHolds(c) {
			continue
		}
		r.admit(c)
	}
}

// reserveHolds checks spent + price + the cheapest legal completion of every open slot
// <= budget.
func (r *run) reserveHolds(c model.ScoredCandidate) bool {
	slots := map[model.Position]int{c.Position: r.open(c.Position) - 1}
	for _, q := range r.later(c.Position) {
		slots[q] = r.open(q)
	}
	total := r.squad.Spent.Add(c.Price).Add(r.completionCost(c, slots))
	return total.LessThanOrEqual(r.opts.Budget)
}

func (r *run) later(p model.Position) []model.Position {
	var out []model.Position
	for _, q := range model.Positions {
		if q > p && r.opts.Quotas[q] > 0 {
			out = append(out, q)
		}
	}
	return out
}

func (r *run) open(p model.Position) int {
	return r.opts.Quotas[p] - len(r.squad.Buckets[p])
}

func (r *run) admit(c model.ScoredCandidate) {
	r.squad.Buckets[c.Position] = append(r.squad.Buckets[c.Position], c)
	r.squad.Spent = r.squad.Spent.Add(c.Price)
	r.admitted[c.ID] = true
	r.clubs[c.Club]++
}
