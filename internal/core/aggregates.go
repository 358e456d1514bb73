package core

// Tally holds the derived per-person counters: how many entries each
// person paid for, and how many entries they participated in. A Tally is
// never persisted; it is always recomputed from (or adjusted in lockstep
// with) the entry history.
type Tally struct {
	Payments       map[string]int
	Participations map[string]int
}

func NewTally() Tally {
	return Tally{
		Payments:       make(map[string]int),
		Participations: make(map[string]int),
	}
}

// ComputeTally derives the counters from an entry history in a single
// pass. Legacy entries with a missing participant list contribute only a
// payment; they never fail aggregation.
func ComputeTally(entries []Entry) Tally {
	t := NewTally()
	for _, e := range entries {
		t.Apply(e)
	}
	return t
}

// Apply adds one entry's contribution to the counters.
func (t Tally) Apply(e Entry) {
	if e.Payer != "" {
		t.Payments[e.Payer]++
	}
	for _, p := range e.Participants {
		t.Participations[p]++
	}
}

// Remove subtracts one entry's contribution, flooring at zero. The floor
// guards against drift from a previously inconsistent history; with
// consistent counters it is never hit. Counters that reach zero are
// dropped from the maps so an incremental remove and a full recompute
// produce the same Tally.
func (t Tally) Remove(e Entry) {
	if e.Payer != "" && t.Payments[e.Payer] > 0 {
		if t.Payments[e.Payer]--; t.Payments[e.Payer] == 0 {
			delete(t.Payments, e.Payer)
		}
	}
	for _, p := range e.Participants {
		if t.Participations[p] > 0 {
			if t.Participations[p]--; t.Participations[p] == 0 {
				delete(t.Participations, p)
			}
		}
	}
}

// PaymentsFor returns the payment count for name, zero if never recorded.
func (t Tally) PaymentsFor(name string) int {
	return t.Payments[name]
}

// ParticipationsFor returns the participation count for name, zero if
// never recorded.
func (t Tally) ParticipationsFor(name string) int {
	return t.Participations[name]
}

// Clone returns an independent copy of the counters.
func (t Tally) Clone() Tally {
	c := NewTally()
	for k, v := range t.Payments {
		c.Payments[k] = v
	}
	for k, v := range t.Participations {
		c.Participations[k] = v
	}
	return c
}
