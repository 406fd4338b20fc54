package decision

import (
	"context"
	"fmt"
	"strings"

	"farm-loan-ledger/internal/domain/applicant"
	"farm-loan-ledger/internal/domain/loan"
)

const (
	MicroLoanMaxAmount   = 50000.0
	MicroLoanMinLandSize = 1.0
	MaxLoanAmount        = 200000.0
	ApprovalThreshold    = 0.5

	GeoRiskPenalty = -0.15
	GeoSafeBonus   = 0.10
	InsuranceBoost = 0.10

	ReasonMicroLoan    = "auto-approved: micro-loan criteria"
	ReasonOverLimit    = "auto-rejected: exceeds maximum limit"
	ReasonManualReview = "requires manual review"
)

var (
	riskyLocations = []string{"flood", "drought", "high-risk"}
	safeLocations  = []string{"irrigated", "low-risk"}
)

type Decision struct {
	Status     loan.Status
	Reason     string
	Confidence float64
}

// Engine holds no mutable state; one instance serves all requests.
type Engine struct {
	scorer RiskScorer
}

func NewEngine(s RiskScorer) *Engine { return &Engine{scorer: s} }

// Decide never fails: a missing profile or a scorer error degrades to manual review.
func (e *Engine) Decide(ctx context.Context, app loan.Application, p *applicant.Profile) Decision {
	if app.Principal <= MicroLoanMaxAmount && app.LandSize >= MicroLoanMinLandSize {
		return Decision{Status: loan.StatusApproved, Reason: ReasonMicroLoan, Confidence: 1.0}
	}
	if app.Principal > MaxLoanAmount {
		return Decision{Status: loan.StatusRejected, Reason: ReasonOverLimit, Confidence: 1.0}
	}
	if p == nil || e.scorer == nil {
		return manualReview()
	}

	adj := GeoAdjustment(app.Location)
	if app.Insured {
		adj += InsuranceBoost
	}

	prob, factors, err := e.scorer.Predict(ctx, Features{
		CreditScore:  p.CreditScore,
		Balance:      p.Balance,
		Amount:       app.Principal,
		LandSize:     app.LandSize,
		AnnualIncome: app.AnnualIncome,
	})
	if err != nil {
		return manualReview()
	}

	adjusted := clamp(prob+adj, 0, 1)
	status := loan.StatusRejected
	if adjusted >= ApprovalThreshold {
		status = loan.StatusApproved
	}
	return Decision{Status: status, Reason: reason(factors, adjusted), Confidence: adjusted}
}

// GeoAdjustment applies the location keyword rules; both may apply.
func GeoAdjustment(location string) float64 {
	loc := strings.ToLower(location)
	adj := 0.0
	if containsAny(loc, riskyLocations) {
		adj += GeoRiskPenalty
	}
	if containsAny(loc, safeLocations) {
		adj += GeoSafeBonus
	}
	return adj
}

func manualReview() Decision {
	return Decision{Status: loan.StatusPending, Reason: ReasonManualReview, Confidence: 0.5}
}

func reason(factors []string, score float64) string {
	s := fmt.Sprintf("risk score %.2f", score)
	if len(factors) == 0 {
		return s
	}
	return strings.Join(factors, "; ") + "; " + s
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
