package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/fplsquad/internal/adapters/fpl"
	repository "github.com/okian/fplsquad/internal/adapters/repository"
	service "github.com/okian/fplsquad/internal/app"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/okian/fplsquad/internal/domain/optimizer"
)

// Error codes carried in error bodies.
const (
	codeBadRequest      = "bad_request"
	codeLimitExceeded   = "limit_exceeded"
	codeNotFound        = "not_found"
	codeSquadIncomplete = "squad_incomplete"
	codeInvalidLock     = "invalid_lock"
	codeUpstream        = "upstream"
	codeUnavailable     = "unavailable"
	codeInternal        = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a service error to its status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, repository.ErrInvalidPosition):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, model.ErrSquadIncomplete):
		return http.StatusConflict, codeSquadIncomplete
	case errors.Is(err, optimizer.ErrInvalidLock):
		return http.StatusUnprocessableEntity, codeInvalidLock
	case errors.Is(err, fpl.ErrUpstream):
		return http.StatusBadGateway, codeUpstream
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrNoCatalog):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// parseIDs reads a comma separated id list. Blank items are skipped.
func parseIDs(raw string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id < 1 {
			return nil, ErrInvalidPath
		}
		out = append(out, id)
	}
	return out, nil
}
