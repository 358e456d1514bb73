package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"desayunos/internal/core"
	"desayunos/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain and store errors onto HTTP status codes:
// invalid entries and empty candidate sets are unprocessable, missing
// entries are 404, an unreachable store is 503, the rest is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrMissingPayer),
		errors.Is(err, core.ErrEmptyParticipants),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrNoCandidates):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
