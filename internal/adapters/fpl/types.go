package fpl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Number decodes FPL numeric fields that arrive either as JSON numbers or as strings
// ("5.5"). Empty strings and null decode to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("fpl number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float64 returns the value as float64.
func (n Number) Float64() float64 { return float64(n) }

// Bootstrap is the subset of bootstrap-static the service uses.
type Bootstrap struct {
	Events   []Event   `json:"events"`
	Teams    []Team    `json:"teams"`
	Elements []Element `json:"elements"`
}

// Event is a gameweek.
type Event struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
	IsNext    bool   `json:"is_next"`
	Finished  bool   `json:"finished"`
}

// Team is a Premier League club.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Element is a player as published by FPL. Prices are in tenths (now_cost 55 = 5.5).
type Element struct {
	ID                       int    `json:"id"`
	FirstName                string `json:"first_name"`
	SecondName               string `json:"second_name"`
	WebName                  string `json:"web_name"`
	Team                     int    `json:"team"`
	ElementType              int    `json:"element_type"`
	NowCost                  int    `json:"now_cost"`
	Form                     Number `json:"form"`
	PointsPerGame            Number `json:"points_per_game"`
	SelectedByPercent        Number `json:"selected_by_percent"`
	Status                   string `json:"status"`
	ChanceOfPlayingNextRound *int   `json:"chance_of_playing_next_round"`
	TransfersInEvent         int    `json:"transfers_in_event"`
	TransfersOutEvent        int    `json:"transfers_out_event"`
	TotalPoints              int    `json:"total_points"`
}

// Fixture is one scheduled match. Event is nil for unscheduled fixtures.
type Fixture struct {
	ID              int  `json:"id"`
	Event           *int `json:"event"`
	TeamH           int  `json:"team_h"`
	TeamA           int  `json:"team_a"`
	TeamHDifficulty int  `json:"team_h_difficulty"`
	TeamADifficulty int  `json:"team_a_difficulty"`
	Finished        bool `json:"finished"`
}

// Gameweek returns the fixture's gameweek or 0 when unscheduled.
func (f Fixture) Gameweek() int {
	if f.Event == nil {
		return 0
	}
	return *f.Event
}

// CurrentGameweek returns the id of the event flagged is_current, or 1 before the
// season starts.
func (b *Bootstrap) CurrentGameweek() int {
	if b == nil {
		return 1
	}
	for _, e := range b.Events {
		if e.IsCurrent {
			return e.ID
		}
	}
	return 1
}

// TeamNames maps team id to name.
func (b *Bootstrap) TeamNames() map[int]string {
	out := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		out[t.ID] = t.Name
	}
	return out
}
