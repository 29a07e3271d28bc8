package api

import (
	"context"
	"net/http"

	service "github.com/okian/fplsquad/internal/app"
)

// FixturesDependencies defines the interface for the fixture outlook.
type FixturesDependencies interface {
	Fixtures(ctx context.Context) (service.Fixtures, error)
}

// FixturesHandler handles fixture outlook requests.
type FixturesHandler struct {
	deps FixturesDependencies
}

// NewFixturesHandler creates a new fixtures handler.
func NewFixturesHandler(deps FixturesDependencies) *FixturesHandler {
	return &FixturesHandler{deps: deps}
}

// HandleGetFixtures handles GET /fixtures requests.
func (h *FixturesHandler) HandleGetFixtures(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_fixtures"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	fx, err := h.deps.Fixtures(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, fx)
}
