package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	service "github.com/okian/fplsquad/internal/app"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/shopspring/decimal"
)

// SquadDependencies defines the interface for squad building.
type SquadDependencies interface {
	BuildSquad(ctx context.Context, req service.Request) (service.Result, error)
}

// SquadHandler handles squad requests.
type SquadHandler struct {
	deps SquadDependencies
}

// NewSquadHandler creates a new squad handler.
func NewSquadHandler(deps SquadDependencies) *SquadHandler {
	return &SquadHandler{deps: deps}
}

// incompleteResponse is the 409 body: the error plus the partial result.
type incompleteResponse struct {
	errorResponse
	Result service.Result `json:"result"`
}

// HandleSquad handles GET /squad?budget=&lock=&exclude=&threshold= and POST /squad.
func (h *SquadHandler) HandleSquad(w http.ResponseWriter, r *http.Request) {
	const op = "api.squad"

	var (
		req service.Request
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = squadRequestFromQuery(r)
	case http.MethodPost:
		err = decodeSquadRequest(r, &req)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.BuildSquad(r.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrSquadIncomplete) {
			writeJSON(w, http.StatusConflict, incompleteResponse{
				errorResponse: errorResponse{Code: "squad_incomplete", Message: err.Error()},
				Result:        res,
			})
			return
		}
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeSquadRequest(r *http.Request, req *service.Request) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func squadRequestFromQuery(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	var req service.Request

	if raw := q.Get("budget"); raw != "" {
		budget, err := decimal.NewFromString(raw)
		if err != nil {
			return req, err
		}
		req.Budget = &budget
	}
	if raw := q.Get("threshold"); raw != "" {
		th, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, err
		}
		req.AvailabilityThreshold = &th
	}

	var err error
	if req.Locked, err = parseIDs(q.Get("lock")); err != nil {
		return req, err
	}
	if req.Excluded, err = parseIDs(q.Get("exclude")); err != nil {
		return req, err
	}
	return req, nil
}
