package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"desayunos/internal/core"
)

type entryRequest struct {
	Date         string   `json:"date"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
}

type entryResponse struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
}

type tallyResponse struct {
	Payments       map[string]int `json:"payments"`
	Participations map[string]int `json:"participations"`
}

type recommendationResponse struct {
	Payer string `json:"payer"`
}

type rosterResponse struct {
	Roster []string `json:"roster"`
}

func entryToResponse(e core.Entry) entryResponse {
	// Legacy entries may carry a nil participant list; it still
	// marshals as [] rather than null.
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return entryResponse{
		ID:           e.ID,
		Date:         e.Date.LedgerFormat(),
		Payer:        e.Payer,
		Participants: participants,
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	history := s.ledger.History()

	out := make([]entryResponse, 0, len(history))
	for _, e := range history {
		out = append(out, entryToResponse(e))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecordEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// An omitted date means today, matching how the tracker is used at
	// the breakfast table.
	date := core.Today()
	if strings.TrimSpace(req.Date) != "" {
		var err error
		date, err = core.ParseLedgerDate(req.Date)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	entry, err := s.ledger.Record(r.Context(), date, req.Payer, req.Participants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to record entry",
			"error", err, "payer", req.Payer)
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Entry recorded",
		"entry_id", entry.ID,
		"payer", entry.Payer,
		"date", entry.Date.LedgerFormat())

	writeJSON(w, http.StatusCreated, entryToResponse(entry))
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	entry, err := s.ledger.Edit(r.Context(), id, req.Payer, req.Participants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to edit entry",
			"error", err, "entry_id", id)
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Entry edited",
		"entry_id", entry.ID, "payer", entry.Payer)

	writeJSON(w, http.StatusOK, entryToResponse(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete entry",
			"error", err, "entry_id", id)
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Entry deleted", "entry_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	tally := s.ledger.Tally()

	writeJSON(w, http.StatusOK, tallyResponse{
		Payments:       tally.Payments,
		Participations: tally.Participations,
	})
}

// handleRecommendation suggests who pays next. With no candidates
// parameter the whole roster is considered.
func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	candidates := s.ledger.Roster().Names()
	if raw, ok := r.URL.Query()["candidates"]; ok {
		candidates = candidates[:0]
		for _, part := range strings.Split(strings.Join(raw, ","), ",") {
			if name := strings.TrimSpace(part); name != "" {
				candidates = append(candidates, name)
			}
		}
	}

	payer, err := s.ledger.Recommend(candidates)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Payer recommended",
		"payer", payer, "candidates", candidates)

	writeJSON(w, http.StatusOK, recommendationResponse{Payer: payer})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rosterResponse{Roster: s.ledger.Roster().Names()})
}

// handleReset wipes the whole ledger. Destructive, so it requires an
// explicit confirmation parameter.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reset requires confirm=true"})
		return
	}

	if err := s.ledger.Reset(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to reset ledger", "error", err)
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Ledger reset")
	w.WriteHeader(http.StatusNoContent)
}
