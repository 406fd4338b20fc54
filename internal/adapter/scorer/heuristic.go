package scorer

import (
	"context"
	"fmt"

	"farm-loan-ledger/internal/domain/decision"
)

// Points range used to normalise into a probability. A total of 3 or more
// lands at or above 0.5.
const (
	minPoints = -4
	maxPoints = 9
)

// Heuristic scores applicants with the same point rules the risk model was
// trained to reproduce. It is stateless.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

var _ decision.RiskScorer = (*Heuristic)(nil)

func (Heuristic) Predict(ctx context.Context, f decision.Features) (float64, []string, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	if f.Amount <= 0 {
		return 0, nil, fmt.Errorf("scorer: amount must be positive, got %v", f.Amount)
	}

	points := 0
	var factors []string

	switch {
	case f.CreditScore > 700:
		points += 3
	case f.CreditScore > 600:
		points++
	default:
		points -= 2
	}
	if f.CreditScore < 600 {
		factors = append(factors, "credit score is too low")
	}

	if f.Balance > f.Amount*0.2 {
		points += 2
	} else {
		points--
	}
	if f.Balance < f.Amount*0.1 {
		factors = append(factors, "insufficient balance/collateral")
	}

	switch {
	case f.LandSize > 5:
		points += 2
	case f.LandSize < 1:
		points--
		factors = append(factors, "small landholding")
	}

	if f.AnnualIncome > 10000 {
		points += 2
	}

	p := float64(points-minPoints) / float64(maxPoints-minPoints)
	label := "good"
	if p < 0.5 {
		label = "too low"
	}
	factors = append(factors, fmt.Sprintf("risk assessment %d/100 (%s)", int(p*100), label))
	return p, factors, nil
}
