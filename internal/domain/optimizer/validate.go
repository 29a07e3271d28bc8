package optimizer

import (
	"fmt"

	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Rules are the game rules a finished squad must satisfy.
type Rules struct {
	Quotas  model.Quotas
	ClubCap int
}

// DefaultRules returns the standard quotas and club cap.
func DefaultRules() Rules {
	return Rules{Quotas: model.DefaultQuotas(), ClubCap: DefaultClubCap}
}

// Validate checks a squad's shape, spend and club spread. Failures wrap
// model.ErrMalformedSquad.
func Validate(squad model.Squad, rules Rules) error {
	if rules.Quotas == nil {
		rules.Quotas = model.DefaultQuotas()
	}
	if rules.ClubCap < 1 {
		rules.ClubCap = DefaultClubCap
	}

	for _, p := range model.Positions {
		if got, want := len(squad.Buckets[p]), rules.Quotas[p]; got != want {
			return fmt.Errorf("%w: %s has %d players, want %d", model.ErrMalformedSquad, p.Label(), got, want)
		}
	}

	seen := make(map[int]bool, squad.Size())
	spent := decimal.Zero
	for p, bucket := range squad.Buckets {
		for _, c := range bucket {
			if c.Position != p {
				return fmt.Errorf("%w: player %d filed under %s", model.ErrMalformedSquad, c.ID, p.Label())
			}
			if seen[c.ID] {
				return fmt.Errorf("%w: player %d picked twice", model.ErrMalformedSquad, c.ID)
			}
			seen[c.ID] = true
			spent = spent.Add(c.Price)
		}
	}

	if !spent.Equal(squad.Spent) {
		return fmt.Errorf("%w: spent %s does not match prices %s", model.ErrMalformedSquad, squad.Spent, spent)
	}
	if spent.GreaterThan(squad.Budget) {
		return fmt.Errorf("%w: spent %s exceeds budget %s", model.ErrMalformedSquad, spent, squad.Budget)
	}
	for club, n := range squad.ClubCounts() {
		if n > rules.ClubCap {
			return fmt.Errorf("%w: %d players from %s", model.ErrMalformedSquad, n, club)
		}
	}
	return nil
}
