package decision

import "context"

// Features are the inputs the risk model was trained on.
type Features struct {
	CreditScore  int
	Balance      float64
	Amount       float64
	LandSize     float64
	AnnualIncome float64
}

// RiskScorer returns an approval probability in [0,1] and ordered explanatory factors.
// Implementations must be safe for concurrent use.
type RiskScorer interface {
	Predict(ctx context.Context, f Features) (probability float64, factors []string, err error)
}

// ScorerFunc adapts a function to RiskScorer.
type ScorerFunc func(ctx context.Context, f Features) (float64, []string, error)

func (fn ScorerFunc) Predict(ctx context.Context, f Features) (float64, []string, error) {
	return fn(ctx, f)
}
