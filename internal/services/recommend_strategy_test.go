package services

import (
	"errors"
	"testing"

	"desayunos/internal/core"
)

func tallyFrom(entries ...core.Entry) core.Tally {
	return core.ComputeTally(entries)
}

func TestRatioStrategyScore(t *testing.T) {
	tally := tallyFrom(
		core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Roman", Participants: []string{"Roman", "Arturo"}},
		core.Entry{Date: core.NewDate(2025, 3, 11), Payer: "Roman", Participants: []string{"Roman", "Arturo"}},
	)

	tests := []struct {
		name string
		want float64
	}{
		{"Roman", 1.0},   // 2 payments / 2 participations
		{"Arturo", 0.0},  // 0 payments / 2 participations
		{"Sergio", 0.0},  // never recorded: 0 / max(1, 0)
	}
	strategy := RatioStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strategy.Score(tt.name, tally); got != tt.want {
				t.Errorf("Score(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRatioStrategyNeverParticipated(t *testing.T) {
	// Paid once without ever eating: ratio must use max(1, participations).
	tally := tallyFrom(core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Sergio", Participants: []string{"Roman"}})
	if got := (RatioStrategy{}).Score("Sergio", tally); got != 1.0 {
		t.Fatalf("Score(Sergio) = %v, want 1.0", got)
	}
}

func TestPaymentCountStrategyScore(t *testing.T) {
	tally := tallyFrom(
		core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Roman", Participants: []string{"Roman", "Arturo"}},
	)
	strategy := PaymentCountStrategy{}
	if got := strategy.Score("Roman", tally); got != 1.0 {
		t.Fatalf("Score(Roman) = %v, want 1.0", got)
	}
	if got := strategy.Score("Arturo", tally); got != 0.0 {
		t.Fatalf("Score(Arturo) = %v, want 0.0", got)
	}
}

func TestGetPayerStrategy(t *testing.T) {
	for _, name := range []string{"ratio", "payments"} {
		if _, err := GetPayerStrategy(name); err != nil {
			t.Fatalf("GetPayerStrategy(%s): %v", name, err)
		}
	}
	if _, err := GetPayerStrategy("coinflip"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestRegisterPayerStrategy(t *testing.T) {
	RegisterPayerStrategy("always-zero", PaymentCountStrategy{})
	defer delete(payerStrategies, "always-zero")
	if _, err := GetPayerStrategy("always-zero"); err != nil {
		t.Fatalf("registered strategy not found: %v", err)
	}
}

func TestRecommendPayer(t *testing.T) {
	tally := tallyFrom(
		core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Roman", Participants: []string{"Roman", "Arturo"}},
	)

	got, err := RecommendPayer([]string{"Roman", "Arturo"}, tally, RatioStrategy{})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	// Roman: 1/1 = 1, Arturo: 0/1 = 0.
	if got != "Arturo" {
		t.Fatalf("RecommendPayer = %s, want Arturo", got)
	}
}

func TestRecommendPayerEmptyCandidates(t *testing.T) {
	_, err := RecommendPayer(nil, core.NewTally(), RatioStrategy{})
	if !errors.Is(err, core.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestRecommendPayerTieBreakIsFirstCandidate(t *testing.T) {
	// Equal ratios: the first candidate in the given order must win,
	// deterministically across repeated calls.
	tally := tallyFrom(
		core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Roman", Participants: []string{"Roman", "Arturo"}},
		core.Entry{Date: core.NewDate(2025, 3, 11), Payer: "Arturo", Participants: []string{"Roman", "Arturo"}},
	)
	for i := 0; i < 10; i++ {
		got, err := RecommendPayer([]string{"Roman", "Arturo"}, tally, RatioStrategy{})
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if got != "Roman" {
			t.Fatalf("call %d: RecommendPayer = %s, want Roman", i, got)
		}
	}
}

func TestRecommendPayerStaysInCandidateSet(t *testing.T) {
	tally := tallyFrom(
		core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Luis", Participants: []string{"Luis", "Sergio"}},
	)
	// Sergio has the lowest ratio overall but is not a candidate.
	got, err := RecommendPayer([]string{"Luis"}, tally, RatioStrategy{})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if got != "Luis" {
		t.Fatalf("RecommendPayer = %s, want Luis", got)
	}
}
