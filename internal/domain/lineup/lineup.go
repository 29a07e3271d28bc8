// Package lineup derives a starting eleven and a captaincy order from a squad.
package lineup

import (
	"fmt"

	"github.com/okian/fplsquad/internal/domain/model"
)

const starters = 11

// Formation holds the squad shape and the minimum starters per outfield position.
type Formation struct {
	Quotas model.Quotas
	Mins   map[model.Position]int
}

// DefaultFormation returns the standard quotas with DEF 3, MID 2, FWD 1 minimums.
func DefaultFormation() Formation {
	return Formation{
		Quotas: model.DefaultQuotas(),
		Mins:   model.DefaultStartingMins(),
	}
}

// SelectXI picks the best goalkeeper and the ten best outfield players, then repairs the
// formation so every minimum is met. A squad that does not match the quotas fails with
// model.ErrMalformedSquad.
func SelectXI(squad model.Squad, f Formation) (model.StartingXI, error) {
	if f.Quotas == nil {
		f.Quotas = model.DefaultQuotas()
	}
	if f.Mins == nil {
		f.Mins = model.DefaultStartingMins()
	}
	if err := checkShape(squad, f); err != nil {
		return model.StartingXI{}, err
	}

	keepers := append([]model.ScoredCandidate(nil), squad.Buckets[model.Goalkeeper]...)
	model.SortByScore(keepers)

	var outfield []model.ScoredCandidate
	for _, p := range model.Positions {
		if p != model.Goalkeeper {
			outfield = append(outfield, squad.Buckets[p]...)
		}
	}
	model.SortByScore(outfield)

	chosen := append([]model.ScoredCandidate(nil), outfield[:starters-1]...)
	bench := append([]model.ScoredCandidate(nil), outfield[starters-1:]...)

	chosen, bench, err := repair(chosen, bench, f.Mins)
	if err != nil {
		return model.StartingXI{}, err
	}

	model.SortByScore(chosen)
	bench = append(bench, keepers[1:]...)
	model.SortByScore(bench)

	return model.StartingXI{
		Starters: append([]model.ScoredCandidate{keepers[0]}, chosen...),
		Bench:    bench,
	}, nil
}

func checkShape(squad model.Squad, f Formation) error {
	for _, p := range model.Positions {
		if got, want := len(squad.Buckets[p]), f.Quotas[p]; got != want {
			return fmt.Errorf("%w: %s has %d players, want %d", model.ErrMalformedSquad, p.Label(), got, want)
		}
	}
	if len(squad.Buckets[model.Goalkeeper]) < 1 {
		return fmt.Errorf("%w: no goalkeeper", model.ErrMalformedSquad)
	}
	outfield := squad.Size() - len(squad.Buckets[model.Goalkeeper])
	if outfield < starters-1 {
		return fmt.Errorf("%w: %d outfield players, want at least %d", model.ErrMalformedSquad, outfield, starters-1)
	}
	need := 0
	for p, floor := range f.Mins {
		if len(squad.Buckets[p]) < floor {
			return fmt.Errorf("%w: %s cannot meet a minimum of %d", model.ErrMalformedSquad, p.Label(), floor)
		}
		need += floor
	}
	if need > starters-1 {
		return fmt.Errorf("%w: minimums need %d outfield starters", model.ErrMalformedSquad, need)
	}
	return nil
}

// repair swaps the lowest-scoring starter of an over-represented position for the best
// bench player of each under-filled position.
func repair(chosen, bench []model.ScoredCandidate, mins map[model.Position]int) ([]model.ScoredCandidate, []model.ScoredCandidate, error) {
	for _, p := range model.Positions {
		for count(chosen, p) < mins[p] {
			in := best(bench, p)
			out := worstDonor(chosen, mins)
			if in < 0 || out < 0 {
				return nil, nil, fmt.Errorf("%w: cannot field %d %s", model.ErrMalformedSquad, mins[p], p.Label())
			}
			promoted, demoted := bench[in], chosen[out]
			chosen[out] = promoted
			bench[in] = demoted
		}
	}
	return chosen, bench, nil
}

func count(players []model.ScoredCandidate, p model.Position) int {
	n := 0
	for _, c := range players {
		if c.Position == p {
			n++
		}
	}
	return n
}

// best returns the index of the highest-ranked player at p, or -1.
func best(players []model.ScoredCandidate, p model.Position) int {
	idx := -1
	for i, c := range players {
		if c.Position != p {
			continue
		}
		if idx < 0 || model.RanksBefore(c, players[idx]) {
			idx = i
		}
	}
	return idx
}

// worstDonor returns the index of the lowest-ranked starter whose position is above its
// minimum, or -1.
func worstDonor(chosen []model.ScoredCandidate, mins map[model.Position]int) int {
	idx := -1
	for i, c := range chosen {
		if count(chosen, c.Position) <= mins[c.Position] {
			continue
		}
		if idx < 0 || model.RanksBefore(chosen[idx], c) {
			idx = i
		}
	}
	return idx
}
