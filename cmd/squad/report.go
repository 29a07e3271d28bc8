package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	app "github.com/okian/fplsquad/internal/app"
	"github.com/okian/fplsquad/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// Roles shown in the table.
const (
	roleCaptain = "C"
	roleVice    = "VC"
	roleBench   = "bench"
)

type reportPlayer struct {
	ID       int     `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Club     string  `json:"club" yaml:"club"`
	Position string  `json:"position" yaml:"position"`
	Price    string  `json:"price" yaml:"price"`
	Score    float64 `json:"score" yaml:"score"`
	Role     string  `json:"role,omitempty" yaml:"role,omitempty"`
}

type reportPick struct {
	ID      int     `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Doubled float64 `json:"doubled" yaml:"doubled"`
	Risk    string  `json:"risk" yaml:"risk"`
}

type report struct {
	Status        string         `json:"status" yaml:"status"`
	Gameweek      int            `json:"gameweek" yaml:"gameweek"`
	Budget        string         `json:"budget" yaml:"budget"`
	Spent         string         `json:"spent" yaml:"spent"`
	Threshold     float64        `json:"availability_threshold" yaml:"availability_threshold"`
	Relaxations   []float64      `json:"relaxations,omitempty" yaml:"relaxations,omitempty"`
	Unmet         []string       `json:"unmet,omitempty" yaml:"unmet,omitempty"`
	Formation     string         `json:"formation,omitempty" yaml:"formation,omitempty"`
	Players       []reportPlayer `json:"players" yaml:"players"`
	Captaincy     []reportPick   `json:"captaincy,omitempty" yaml:"captaincy,omitempty"`
	AdjustedTotal float64        `json:"adjusted_total,omitempty" yaml:"adjusted_total,omitempty"`
}

func newReport(res app.Result) report {
	r := report{
		Status:      res.Status,
		Gameweek:    res.Gameweek,
		Budget:      res.Squad.Budget.StringFixed(1),
		Spent:       res.Squad.Spent.StringFixed(1),
		Threshold:   res.Threshold,
		Relaxations: res.Relaxations,
	}
	for _, p := range res.Unmet {
		r.Unmet = append(r.Unmet, p.Label())
	}

	if res.XI == nil {
		for _, p := range res.Squad.Players() {
			r.Players = append(r.Players, player(p, ""))
		}
		return r
	}

	roles := make(map[int]string)
	if res.Captaincy != nil {
		if c, ok := res.Captaincy.Captain(); ok {
			roles[c.Player.ID] = roleCaptain
		}
		if vc, ok := res.Captaincy.ViceCaptain(); ok {
			roles[vc.Player.ID] = roleVice
		}
		for _, pick := range res.Captaincy.Picks {
			r.Captaincy = append(r.Captaincy, reportPick{
				ID:      pick.Player.ID,
				Name:    pick.Player.Name,
				Doubled: round2(pick.Doubled),
				Risk:    string(pick.Risk),
			})
		}
		r.AdjustedTotal = round2(res.Captaincy.AdjustedTotal)
	}
	r.Formation = res.XI.Formation()
	for _, p := range res.XI.Starters {
		r.Players = append(r.Players, player(p, roles[p.ID]))
	}
	for _, p := range res.XI.Bench {
		r.Players = append(r.Players, player(p, roleBench))
	}
	return r
}

func player(p model.ScoredCandidate, role string) reportPlayer {
	return reportPlayer{
		ID:       p.ID,
		Name:     p.Name,
		Club:     p.Club,
		Position: p.Position.Label(),
		Price:    p.Price.StringFixed(1),
		Score:    round2(p.Score),
		Role:     role,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func render(w io.Writer, format string, r report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderTable(w, r)
	}
}

func renderTable(w io.Writer, r report) error {
	fmt.Fprintf(w, "Gameweek %d  status %s  spent %s / %s  threshold %.0f\n",
		r.Gameweek, r.Status, r.Spent, r.Budget, r.Threshold)
	if len(r.Relaxations) > 0 {
		fmt.Fprintf(w, "relaxed to %v\n", r.Relaxations)
	}
	if len(r.Unmet) > 0 {
		fmt.Fprintf(w, "unmet: %s\n", strings.Join(r.Unmet, ", "))
	}
	if r.Formation != "" {
		fmt.Fprintf(w, "formation %s\n", r.Formation)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCLUB\tPOS\tPRICE\tSCORE\tROLE")
	for _, p := range r.Players {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Club, p.Position, p.Price, p.Score, p.Role)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Captaincy) > 0 {
		fmt.Fprintln(w)
		for i, c := range r.Captaincy {
			fmt.Fprintf(w, "%d. %s (%.2f doubled, %s)\n", i+1, c.Name, c.Doubled, c.Risk)
		}
		fmt.Fprintf(w, "adjusted total %.2f\n", r.AdjustedTotal)
	}
	return nil
}
