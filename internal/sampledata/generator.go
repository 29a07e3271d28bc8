// Package sampledata generates a synthetic, deterministic FPL league: a bootstrap-static
// payload and a round-robin fixture list. It backs offline runs and tests.
package sampledata

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/okian/fplsquad/internal/adapters/fpl"
)

// Default league shape.
const (
	DefaultClubs     = 20
	DefaultSeed      = 42
	DefaultGameweek  = 10
	defaultGameweeks = 38
)

// Players per club by FPL element type (GK, DEF, MID, FWD).
var rosterShape = [...]int{2, 5, 5, 3}

// Price bands in tenths by element type.
var priceBands = [...][2]int{
	{40, 55},
	{40, 65},
	{45, 125},
	{45, 120},
}

var clubNames = []string{
	"Arsenal", "Aston Villa", "Bournemouth", "Brentford", "Brighton",
	"Burnley", "Chelsea", "Crystal Palace", "Everton", "Fulham",
	"Leeds", "Liverpool", "Man City", "Man Utd", "Newcastle",
	"Nott'm Forest", "Spurs", "Sunderland", "West Ham", "Wolves",
}

var firstNames = []string{
	"Martin", "Bruno", "Mohamed", "Son", "Kevin", "Bukayo", "Ollie", "João",
	"Pedro", "Jarrod", "Dominik", "Rodrigo", "Moisés", "Luis", "Erling", "Eberechi",
}

var lastNames = []string{
	"Ødegaard", "Fernandes", "Salah", "Heung-min", "De Bruyne", "Saka", "Watkins", "Palhinha",
	"Neto", "Bowen", "Szoboszlai", "Muñiz", "Caicedo", "Díaz", "Haaland", "Eze",
}

// Config controls the generated league.
type Config struct {
	Clubs    int
	Seed     int64
	Gameweek int // current gameweek
}

// DefaultConfig returns a twenty club league at gameweek 10.
func DefaultConfig() Config {
	return Config{Clubs: DefaultClubs, Seed: DefaultSeed, Gameweek: DefaultGameweek}
}

// Generate builds a league. The same config always yields the same payloads.
func Generate(cfg Config) (*fpl.Bootstrap, []fpl.Fixture, error) {
	if cfg.Clubs < 2 || cfg.Clubs > len(clubNames) {
		return nil, nil, fmt.Errorf("clubs must be in [2, %d], got %d", len(clubNames), cfg.Clubs)
	}
	if cfg.Gameweek < 1 || cfg.Gameweek > defaultGameweeks {
		return nil, nil, fmt.Errorf("gameweek must be in [1, %d], got %d", defaultGameweeks, cfg.Gameweek)
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic test data

	b := &fpl.Bootstrap{}
	strength := make(map[int]int, cfg.Clubs)
	for i := 0; i < cfg.Clubs; i++ {
		id := i + 1
		b.Teams = append(b.Teams, fpl.Team{ID: id, Name: clubNames[i], ShortName: short(clubNames[i])})
		strength[id] = 1 + rng.Intn(5)
	}
	for gw := 1; gw <= defaultGameweeks; gw++ {
		b.Events = append(b.Events, fpl.Event{
			ID:        gw,
			Name:      fmt.Sprintf("Gameweek %d", gw),
			IsCurrent: gw == cfg.Gameweek,
			IsNext:    gw == cfg.Gameweek+1,
			Finished:  gw < cfg.Gameweek,
		})
	}

	id := 1
	for _, team := range b.Teams {
		for typ, n := range rosterShape {
			for k := 0; k < n; k++ {
				b.Elements = append(b.Elements, element(rng, id, team.ID, typ+1, strength[team.ID], cfg.Gameweek))
				id++
			}
		}
	}

	return b, fixtures(cfg.Clubs, strength), nil
}

func element(rng *rand.Rand, id, team, typ, strength, gameweek int) fpl.Element {
	band := priceBands[typ-1]
	cost := band[0] + rng.Intn((band[1]-band[0])/5+1)*5
	quality := float64(cost-band[0]) / float64(band[1]-band[0]+1)
	ppg := math.Round((2+quality*5+float64(strength)*0.3+rng.Float64())*10) / 10

	e := fpl.Element{
		ID:                id,
		FirstName:         firstNames[rng.Intn(len(firstNames))],
		SecondName:        lastNames[rng.Intn(len(lastNames))],
		Team:              team,
		ElementType:       typ,
		NowCost:           cost,
		Form:              fpl.Number(math.Round(ppg*(0.6+rng.Float64()*0.8)*10) / 10),
		PointsPerGame:     fpl.Number(ppg),
		SelectedByPercent: fpl.Number(math.Round(quality*quality*600) / 10),
		Status:            "a",
		TransfersInEvent:  rng.Intn(200_000),
		TransfersOutEvent: rng.Intn(200_000),
		TotalPoints:       int(ppg * float64(gameweek-1)),
	}
	e.WebName = e.SecondName

	switch roll := rng.Intn(100); {
	case roll < 8:
		chance := []int{25, 50, 75}[rng.Intn(3)]
		e.Status = "d"
		e.ChanceOfPlayingNextRound = &chance
	case roll < 13:
		e.Status = []string{"i", "s", "u"}[rng.Intn(3)]
		zero := 0
		e.ChanceOfPlayingNextRound = &zero
	}
	return e
}

// fixtures builds a double round robin with the circle method. Difficulty faced is the
// opponent's strength.
func fixtures(clubs int, strength map[int]int) []fpl.Fixture {
	teams := make([]int, 0, clubs+1)
	for i := 1; i <= clubs; i++ {
		teams = append(teams, i)
	}
	if len(teams)%2 == 1 {
		teams = append(teams, 0) // bye
	}
	n := len(teams)
	rounds := n - 1

	var out []fpl.Fixture
	id := 1
	for gw := 1; gw <= defaultGameweeks; gw++ {
		round := (gw - 1) % rounds
		secondHalf := (gw-1)/rounds%2 == 1
		for i := 0; i < n/2; i++ {
			home, away := rotation(teams, round, i), rotation(teams, round, n-1-i)
			if home == 0 || away == 0 {
				continue
			}
			if secondHalf {
				home, away = away, home
			}
			event := gw
			out = append(out, fpl.Fixture{
				ID:              id,
				Event:           &event,
				TeamH:           home,
				TeamA:           away,
				TeamHDifficulty: strength[away],
				TeamADifficulty: strength[home],
			})
			id++
		}
	}
	return out
}

// rotation returns the team at slot i in the given round; slot 0 stays fixed.
func rotation(teams []int, round, i int) int {
	if i == 0 {
		return teams[0]
	}
	n := len(teams) - 1
	return teams[1+(i-1+round)%n]
}

func short(name string) string {
	letters := make([]rune, 0, 3)
	for _, r := range name {
		if len(letters) == 3 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
			letters = append(letters, r)
		}
	}
	return strings.ToUpper(string(letters))
}
