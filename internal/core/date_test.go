package core

import (
	"testing"
	"time"
)

func TestParseLedgerDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"14/03/2025", NewDate(2025, 3, 14), true},
		{"01/12/1999", NewDate(1999, 12, 1), true},
		{"2025-03-14", Date{}, false}, // ISO order is not the boundary format
		{"14/3/2025", Date{}, false},  // must be zero-padded
		{"31/02/2025", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLedgerDate(tc.in)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseLedgerDate(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestLedgerFormatRoundTrip(t *testing.T) {
	d := NewDate(2025, 1, 9)
	if got := d.LedgerFormat(); got != "09/01/2025" {
		t.Fatalf("LedgerFormat() = %q, want 09/01/2025", got)
	}
	back, err := ParseLedgerDate(d.LedgerFormat())
	if err != nil {
		t.Fatalf("round trip parse: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip changed the date: %v != %v", back, d)
	}
}

func TestDateOrdering(t *testing.T) {
	early := NewDate(2025, 3, 1)
	late := NewDate(2025, 3, 2)
	if !late.After(early) {
		t.Fatalf("expected %v after %v", late, early)
	}
	if late.Equal(early) {
		t.Fatalf("distinct days reported equal")
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 3, 14).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}
