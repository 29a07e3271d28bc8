package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/fplsquad/internal/domain/model"
)

// PlayersDependencies defines the interface for ranking list operations.
type PlayersDependencies interface {
	TopPlayers(ctx context.Context, n int, pos model.Position) ([]Entry, error)
}

// PlayersHandler handles ranking list requests.
type PlayersHandler struct {
	deps     PlayersDependencies
	maxLimit int
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies, maxLimit int) *PlayersHandler {
	return &PlayersHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetPlayers handles GET /players?limit=N&position=MID requests.
func (h *PlayersHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := DefaultPlayersLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeBadRequest, NewKind(op, ErrBadRequest))
			return
		}
	}
	if h.maxLimit > 0 && n > h.maxLimit {
		writeError(w, http.StatusBadRequest, codeLimitExceeded, NewKind(op, ErrBadRequest))
		return
	}

	var pos model.Position
	if raw := r.URL.Query().Get("position"); raw != "" {
		p, err := model.ParsePosition(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
		pos = p
	}

	entries, err := h.deps.TopPlayers(r.Context(), n, pos)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
