// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	repository "github.com/okian/fplsquad/internal/adapters/repository"
	service "github.com/okian/fplsquad/internal/app"
)

// DefaultPlayersLimit is used when GET /players carries no limit.
const DefaultPlayersLimit = 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SquadDependencies
	PlayersDependencies
	RankDependencies
	FixturesDependencies
	RefreshDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	squadHandler    *SquadHandler
	playersHandler  *PlayersHandler
	rankHandler     *RankHandler
	fixturesHandler *FixturesHandler
	refreshHandler  *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		squadHandler:    NewSquadHandler(deps),
		playersHandler:  NewPlayersHandler(deps, maxLimit),
		rankHandler:     NewRankHandler(deps),
		fixturesHandler: NewFixturesHandler(deps),
		refreshHandler:  NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/squad", MetricsMiddleware(s.squadHandler.HandleSquad, "squad"))
	mux.HandleFunc("/players", MetricsMiddleware(s.playersHandler.HandleGetPlayers, "players"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/fixtures", MetricsMiddleware(s.fixturesHandler.HandleGetFixtures, "fixtures"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = repository.Entry

// compile-time check that the service satisfies the handler contracts.
var _ Dependencies = (*service.Service)(nil)
