// Package memory provides an in-memory entry store, used as the default
// backend for local development and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"desayunos/internal/core"
	"desayunos/internal/store"
)

// Ensure interface conformance
var (
	_ store.EntryStore  = (*Store)(nil)
	_ store.EntryMirror = (*Store)(nil)
)

type Store struct {
	mu      sync.Mutex
	entries map[string]core.Entry
	order   []string // insertion order, oldest first
}

func New() *Store {
	return &Store{entries: make(map[string]core.Entry)}
}

// ListAll returns all entries, newest insertion first.
func (s *Store) ListAll(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.entries[s.order[i]].Clone())
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, e core.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	e.ID = id
	s.entries[id] = e.Clone()
	s.order = append(s.order, id)
	return id, nil
}

func (s *Store) Update(_ context.Context, id string, payer string, participants []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Payer = payer
	e.Participants = append([]string(nil), participants...)
	s.entries[id] = e
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Upsert implements store.EntryMirror so the store can stand in for the
// Firestore mirror in tests.
func (s *Store) Upsert(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.entries[e.ID] = e.Clone()
	return nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
