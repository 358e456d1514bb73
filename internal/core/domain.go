package core

import (
	"errors"
	"strings"
)

var (
	ErrMissingPayer      = errors.New("entry has no payer")
	ErrEmptyParticipants = errors.New("entry has no participants")
	ErrNoCandidates      = errors.New("empty candidate set")
)

type (
	// Entry is one recorded breakfast event: who paid, and who ate.
	// The payer does not have to be among the participants (someone can
	// pay without eating, or eat without paying).
	Entry struct {
		ID           string // assigned by the store; empty before persistence
		Date         Date
		Payer        string
		Participants []string
	}

	// Roster is the fixed, ordered list of people configured at startup.
	// Its order is the tie-break order for payer recommendations.
	Roster []string
)

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Payer) == "" {
		return ErrMissingPayer
	}
	if len(e.Participants) == 0 {
		return ErrEmptyParticipants
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// HasParticipant reports whether name appears in the participant set.
func (e Entry) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no state with the original.
func (e Entry) Clone() Entry {
	c := e
	if e.Participants != nil {
		c.Participants = append([]string(nil), e.Participants...)
	}
	return c
}

func (r Roster) Contains(name string) bool {
	for _, n := range r {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns a copy of the roster in configured order.
func (r Roster) Names() []string {
	return append([]string(nil), r...)
}

func (r Roster) Validate() error {
	if len(r) == 0 {
		return errors.New("roster cannot be empty")
	}
	seen := map[string]struct{}{}
	for _, n := range r {
		if strings.TrimSpace(n) == "" {
			return errors.New("roster contains an empty name")
		}
		if _, ok := seen[n]; ok {
			return errors.New("roster contains duplicate name: " + n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
