// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Position is a player's squad role.
type Position int

// Positions in the order the optimizer visits them.
const (
	Goalkeeper Position = iota + 1
	Defender
	Midfielder
	Forward
)

// Positions lists every valid position in visiting order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// Valid reports whether p is one of the four squad positions.
func (p Position) Valid() bool {
	return p >= Goalkeeper && p <= Forward
}

// Label returns the short label (GK, DEF, MID, FWD).
func (p Position) Label() string {
	switch p {
	case Goalkeeper:
		return "GK"
	case Defender:
		return "DEF"
	case Midfielder:
		return "MID"
	case Forward:
		return "FWD"
	default:
		return "UNK"
	}
}

// String returns the full position name.
func (p Position) String() string {
	switch p {
	case Goalkeeper:
		return "Goalkeeper"
	case Defender:
		return "Defender"
	case Midfielder:
		return "Midfielder"
	case Forward:
		return "Forward"
	default:
		return "Unknown"
	}
}

// ParsePosition accepts short labels, full names and FPL element types (1..4).
func ParsePosition(s string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GK", "GKP", "GOALKEEPER", "1":
		return Goalkeeper, nil
	case "DEF", "DEFENDER", "2":
		return Defender, nil
	case "MID", "MIDFIELDER", "3":
		return Midfielder, nil
	case "FWD", "FORWARD", "4":
		return Forward, nil
	}
	return 0, fmt.Errorf("%w: unknown position %q", ErrInvalidCandidate, s)
}

// MarshalJSON encodes the position as its short label.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Label())
}

// UnmarshalJSON accepts a label, a name or an element type number.
func (p *Position) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int
		if nErr := json.Unmarshal(b, &n); nErr != nil {
			return err
		}
		s = strconv.Itoa(n)
	}
	parsed, err := ParsePosition(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText lets positions be used as JSON map keys.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.Label()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (p *Position) UnmarshalText(b []byte) error {
	parsed, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Quotas maps a position to a fixed player count.
type Quotas map[Position]int

// DefaultQuotas is the 2/5/5/3 squad shape.
func DefaultQuotas() Quotas {
	return Quotas{Goalkeeper: 2, Defender: 5, Midfielder: 5, Forward: 3}
}

// DefaultStartingMins holds the minimum starters per outfield position.
func DefaultStartingMins() Quotas {
	return Quotas{Defender: 3, Midfielder: 2, Forward: 1}
}

// Total returns the sum of all counts.
func (q Quotas) Total() int {
	n := 0
	for _, v := range q {
		n += v
	}
	return n
}

// QuotasFromLabels converts a label keyed map (as found in config) into Quotas.
func QuotasFromLabels(m map[string]int) (Quotas, error) {
	q := make(Quotas, len(m))
	for k, v := range m {
		p, err := ParsePosition(k)
		if err != nil {
			return nil, err
		}
		q[p] = v
	}
	return q, nil
}
