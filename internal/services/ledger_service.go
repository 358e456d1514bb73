package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"desayunos/internal/core"
	"desayunos/internal/store"
)

// LedgerState is the controller-owned in-memory view of the ledger: the
// entry history sorted by date descending (insertion order breaks ties,
// newest first) and the tally kept in lockstep with it.
type LedgerState struct {
	History []core.Entry
	Tally   core.Tally
}

// LedgerService orchestrates record/edit/delete operations against the
// entry store, keeping the store and the in-memory state consistent:
// memory is only touched after the store call succeeded, so a failed
// mutation leaves no partial state behind.
type LedgerService struct {
	store    store.EntryStore
	roster   core.Roster
	strategy PayerStrategy

	mu    sync.Mutex
	state LedgerState
}

func NewLedgerService(entryStore store.EntryStore, roster core.Roster, strategy PayerStrategy) *LedgerService {
	if strategy == nil {
		strategy = RatioStrategy{}
	}
	return &LedgerService{
		store:    entryStore,
		roster:   roster,
		strategy: strategy,
		state:    LedgerState{Tally: core.NewTally()},
	}
}

// Reload replaces the in-memory state with the store's full history and
// recomputes the tally from scratch.
func (s *LedgerService) Reload(ctx context.Context) error {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	sortHistory(entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.History = entries
	s.state.Tally = core.ComputeTally(entries)

	slog.InfoContext(ctx, "Ledger reloaded", "entries", len(entries))
	return nil
}

// Record validates and persists a new entry, then folds it into the
// in-memory history and tally. Validation failures are rejected before
// any store call.
func (s *LedgerService) Record(ctx context.Context, date core.Date, payer string, participants []string) (core.Entry, error) {
	entry := core.Entry{
		Date:         date,
		Payer:        payer,
		Participants: append([]string(nil), participants...),
	}
	if err := entry.Validate(); err != nil {
		return core.Entry{}, err
	}

	id, err := s.store.Create(ctx, entry)
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	entry.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.History = append([]core.Entry{entry}, s.state.History...)
	sortHistory(s.state.History)
	s.state.Tally.Apply(entry)

	slog.InfoContext(ctx, "Payment recorded",
		"entry_id", id,
		"date", entry.Date.LedgerFormat(),
		"payer", payer,
		"participants", len(entry.Participants))
	return entry.Clone(), nil
}

// Delete removes an entry by id from the store and the in-memory state,
// decrementing the tally contributions of the removed entry.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	removed := s.state.History[idx].Clone()
	s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx = s.indexOf(id); idx >= 0 {
		s.state.History = append(s.state.History[:idx], s.state.History[idx+1:]...)
		s.state.Tally.Remove(removed)
	}

	slog.InfoContext(ctx, "Payment deleted", "entry_id", id, "payer", removed.Payer)
	return nil
}

// Edit replaces payer and participants of an existing entry. The date is
// immutable, so the history length and order are unchanged; the tally is
// adjusted as a remove-of-old plus apply-of-new.
func (s *LedgerService) Edit(ctx context.Context, id string, payer string, participants []string) (core.Entry, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.Entry{}, store.ErrNotFound
	}
	old := s.state.History[idx].Clone()
	s.mu.Unlock()

	updated := core.Entry{
		ID:           id,
		Date:         old.Date,
		Payer:        payer,
		Participants: append([]string(nil), participants...),
	}
	if err := updated.Validate(); err != nil {
		return core.Entry{}, err
	}

	if err := s.store.Update(ctx, id, updated.Payer, updated.Participants); err != nil {
		return core.Entry{}, fmt.Errorf("update entry %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx = s.indexOf(id); idx >= 0 {
		s.state.History[idx] = updated
		s.state.Tally.Remove(old)
		s.state.Tally.Apply(updated)
	}

	slog.InfoContext(ctx, "Payment edited",
		"entry_id", id,
		"old_payer", old.Payer,
		"new_payer", updated.Payer)
	return updated.Clone(), nil
}

// History returns a copy of the entries, most recent date first.
func (s *LedgerService) History() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, len(s.state.History))
	for i, e := range s.state.History {
		out[i] = e.Clone()
	}
	return out
}

// Tally returns a copy of the current counters.
func (s *LedgerService) Tally() core.Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Tally.Clone()
}

// Roster returns the configured roster.
func (s *LedgerService) Roster() core.Roster {
	return core.Roster(s.roster.Names())
}

// Recommend suggests the next payer among the given candidates. The
// candidate set is reordered to roster order first so ties always break
// toward the earlier roster position; candidates unknown to the roster
// keep their given order after the roster members. The recommendation is
// advisory: callers may record a different payer.
func (s *LedgerService) Recommend(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", core.ErrNoCandidates
	}
	ordered := s.rosterOrder(candidates)

	s.mu.Lock()
	tally := s.state.Tally.Clone()
	s.mu.Unlock()

	return RecommendPayer(ordered, tally, s.strategy)
}

// Reset deletes every entry through the store and clears the in-memory
// state. Entries deleted before a failure stay deleted; the error is
// surfaced to the caller.
func (s *LedgerService) Reset(ctx context.Context) error {
	for _, e := range s.History() {
		if err := s.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

// indexOf finds an entry position by id. Caller must hold s.mu.
func (s *LedgerService) indexOf(id string) int {
	for i, e := range s.state.History {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *LedgerService) rosterOrder(candidates []string) []string {
	want := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		want[c] = true
	}
	ordered := make([]string, 0, len(candidates))
	for _, n := range s.roster {
		if want[n] {
			ordered = append(ordered, n)
			want[n] = false
		}
	}
	for _, c := range candidates {
		if want[c] {
			ordered = append(ordered, c)
			want[c] = false
		}
	}
	return ordered
}

// sortHistory orders entries by date descending. The sort is stable so
// entries sharing a date keep their relative order (newest insertion
// first, matching the prepend-on-record behavior).
func sortHistory(entries []core.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}
