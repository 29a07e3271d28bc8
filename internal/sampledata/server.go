package sampledata

import (
	"encoding/json"
	"net/http"

	"github.com/okian/fplsquad/internal/adapters/fpl"
)

// Handler serves a league on the FPL API paths under /api.
func Handler(b *fpl.Bootstrap, fx []fpl.Fixture) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bootstrap-static/", serveJSON(b))
	mux.HandleFunc("/api/fixtures/", serveJSON(fx))
	return mux
}

func serveJSON(v interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}
