package core

import (
	"errors"
	"testing"
)

func TestEntryValidate(t *testing.T) {
	good := Entry{
		Date:         NewDate(2025, 3, 14),
		Payer:        "Roman",
		Participants: []string{"Roman", "Arturo"},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		entry Entry
		want  error
	}{
		{
			name:  "missing payer",
			entry: Entry{Date: NewDate(2025, 3, 14), Participants: []string{"Luis"}},
			want:  ErrMissingPayer,
		},
		{
			name:  "blank payer",
			entry: Entry{Date: NewDate(2025, 3, 14), Payer: "  ", Participants: []string{"Luis"}},
			want:  ErrMissingPayer,
		},
		{
			name:  "no participants",
			entry: Entry{Date: NewDate(2025, 3, 14), Payer: "Luis"},
			want:  ErrEmptyParticipants,
		},
		{
			name:  "empty participant slice",
			entry: Entry{Date: NewDate(2025, 3, 14), Payer: "Luis", Participants: []string{}},
			want:  ErrEmptyParticipants,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.entry.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}

	zeroDate := Entry{Payer: "Luis", Participants: []string{"Luis"}}
	if err := zeroDate.Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestEntryHasParticipant(t *testing.T) {
	e := Entry{Payer: "Sergio", Participants: []string{"Roman", "Arturo"}}
	if !e.HasParticipant("Arturo") {
		t.Fatalf("expected Arturo to be a participant")
	}
	if e.HasParticipant("Sergio") {
		t.Fatalf("payer is not automatically a participant")
	}
}

func TestEntryClone(t *testing.T) {
	e := Entry{ID: "x", Payer: "Roman", Participants: []string{"Roman"}}
	c := e.Clone()
	c.Participants[0] = "Luis"
	if e.Participants[0] != "Roman" {
		t.Fatalf("clone shares participant slice with original")
	}
}

func TestRosterValidate(t *testing.T) {
	cases := []struct {
		name   string
		roster Roster
		ok     bool
	}{
		{"default roster", Roster{"Roman", "Arturo", "Luis", "Sergio"}, true},
		{"empty", Roster{}, false},
		{"blank name", Roster{"Roman", " "}, false},
		{"duplicate", Roster{"Roman", "Roman"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.roster.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRosterContains(t *testing.T) {
	r := Roster{"Roman", "Arturo"}
	if !r.Contains("Roman") || r.Contains("Luis") {
		t.Fatalf("Contains gave wrong membership")
	}
}
