package optimizer

import (
	"math"

	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/shopspring/decimal"
)

// completionCost prices the cheapest legal way to fill slots once c is admitted. Club
// headroom counts c as already in the squad. When the club cap never binds on the
// cheapest picks, those picks are the answer; otherwise the minimum is found as a
// min-cost flow from clubs to positions. A pool too short to fill every slot prices what
// it can; the shortfall is reported as unmet later.
func (r *run) completionCost(c model.ScoredCandidate, slots map[model.Position]int) decimal.Decimal {
	headroom := func(club string) int {
		n := r.opts.ClubCap - r.clubs[club]
		if club == c.Club {
			n--
		}
		return n
	}

	sum := decimal.Zero
	used := make(map[string]int)
	capped := false
	for _, p := range model.Positions {
		k := slots[p]
		for _, o := range r.byPrice[p] {
			if k <= 0 {
				break
			}
			if r.admitted[o.ID] || o.ID == c.ID {
				continue
			}
			sum = sum.Add(o.Price)
			used[o.Club]++
			if used[o.Club] > headroom(o.Club) {
				capped = true
			}
			k--
		}
	}
	if !capped {
		return sum
	}
	return r.flowCost(c.ID, slots, headroom)
}

// flowCost builds source -> club -> position -> sink. Each club edge is limited by its
// headroom, each position edge by its open slots, and every player is a unit edge priced
// in hundredths. Only the cheapest min(slots, headroom) players of a club at a position
// can appear in an optimum, so the rest are left out.
func (r *run) flowCost(skipID int, slots map[model.Position]int, headroom func(string) int) decimal.Decimal {
	const source, sink = 0, 1

	net := &network{adj: make([][]arc, 2)}
	clubNode := make(map[string]int)
	var players []model.ScoredCandidate

	for _, p := range model.Positions {
		k := slots[p]
		if k <= 0 {
			continue
		}
		posNode := net.node()
		net.add(posNode, sink, k, 0, -1)

		taken := make(map[string]int)
		for _, o := range r.byPrice[p] {
			if r.admitted[o.ID] || o.ID == skipID {
				continue
			}
			room := headroom(o.Club)
			if room <= 0 || taken[o.Club] >= min(k, room) {
				continue
			}
			taken[o.Club]++

			cn, ok := clubNode[o.Club]
			if !ok {
				cn = net.node()
				clubNode[o.Club] = cn
				net.add(source, cn, room, 0, -1)
			}
			net.add(cn, posNode, 1, o.Price.Shift(2).Round(0).IntPart(), len(players))
			players = append(players, o)
		}
	}

	for net.augment(source, sink) {
	}

	sum := decimal.Zero
	for _, cn := range clubNode {
		for _, a := range net.adj[cn] {
			if a.player >= 0 && a.cap == 0 {
				sum = sum.Add(players[a.player].Price)
			}
		}
	}
	return sum
}

type arc struct {
	to, rev, cap int
	cost         int64
	player       int
}

type network struct {
	adj [][]arc
}

func (n *network) node() int {
	n.adj = append(n.adj, nil)
	return len(n.adj) - 1
}

func (n *network) add(from, to, capacity int, cost int64, player int) {
	n.adj[from] = append(n.adj[from], arc{to: to, rev: len(n.adj[to]), cap: capacity, cost: cost, player: player})
	n.adj[to] = append(n.adj[to], arc{to: from, rev: len(n.adj[from]) - 1, cost: -cost, player: -1})
}

// augment pushes one unit along the cheapest residual path. Reverse arcs carry negative
// costs, so the path search is Bellman-Ford.
func (n *network) augment(s, t int) bool {
	dist := make([]int64, len(n.adj))
	prevNode := make([]int, len(n.adj))
	prevArc := make([]int, len(n.adj))
	for i := range dist {
		dist[i] = math.MaxInt64
		prevNode[i] = -1
	}
	dist[s] = 0

	for range n.adj {
		updated := false
		for u, arcs := range n.adj {
			if dist[u] == math.MaxInt64 {
				continue
			}
			for i, a := range arcs {
				if a.cap > 0 && dist[u]+a.cost < dist[a.to] {
					dist[a.to] = dist[u] + a.cost
					prevNode[a.to], prevArc[a.to] = u, i
					updated = true
				}
			}
		}
		if !updated {
			break
		}
	}
	if dist[t] == math.MaxInt64 {
		return false
	}

	for v := t; v != s; v = prevNode[v] {
		a := &n.adj[prevNode[v]][prevArc[v]]
		a.cap--
		n.adj[v][a.rev].cap++
	}
	return true
}
