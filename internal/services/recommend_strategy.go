// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for payer recommendation.
// The formula changed over the product's life (plain payment counts at
// first, payments relative to participations later); each formula is its
// own strategy and the ratio formula is the current default.

package services

import (
	"fmt"

	"desayunos/internal/core"
)

// PayerStrategy is the strategy interface for ranking recommendation
// candidates. Lower scores mean more "due" to pay.
type PayerStrategy interface {
	// Score rates one candidate against the current tally.
	Score(name string, tally core.Tally) float64
}

// RatioStrategy ranks by payments relative to participations: the person
// who has paid least relative to how often they have eaten is most due.
type RatioStrategy struct{}

// Score returns payments / max(1, participations). The max guard avoids
// dividing by zero for people who never participated, which also makes
// never-fed newcomers score 0 and surface first.
func (RatioStrategy) Score(name string, tally core.Tally) float64 {
	participations := tally.ParticipationsFor(name)
	if participations < 1 {
		participations = 1
	}
	return float64(tally.PaymentsFor(name)) / float64(participations)
}

// PaymentCountStrategy ranks by plain payment count. This was the
// original formula before participation tracking existed; it is kept
// registered for installations that still want it.
type PaymentCountStrategy struct{}

func (PaymentCountStrategy) Score(name string, tally core.Tally) float64 {
	return float64(tally.PaymentsFor(name))
}

// payerStrategies maps strategy names to their implementations.
var payerStrategies = map[string]PayerStrategy{
	"ratio":    RatioStrategy{},
	"payments": PaymentCountStrategy{},
}

// GetPayerStrategy returns the strategy registered under name.
func GetPayerStrategy(name string) (PayerStrategy, error) {
	s, ok := payerStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown recommendation strategy: %s", name)
	}
	return s, nil
}

// RegisterPayerStrategy registers a custom strategy under name.
func RegisterPayerStrategy(name string, s PayerStrategy) {
	payerStrategies[name] = s
}

// RecommendPayer selects the candidate with the lowest score. Candidates
// are evaluated in the order given; the first candidate achieving the
// minimum wins, so callers pass candidates in roster order to get the
// deterministic roster-order tie-break.
func RecommendPayer(candidates []string, tally core.Tally, strategy PayerStrategy) (string, error) {
	if len(candidates) == 0 {
		return "", core.ErrNoCandidates
	}
	best := candidates[0]
	bestScore := strategy.Score(best, tally)
	for _, c := range candidates[1:] {
		if score := strategy.Score(c, tally); score < bestScore {
			best, bestScore = c, score
		}
	}
	return best, nil
}
