package loan

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"farm-loan-ledger/internal/domain/actor"
	"farm-loan-ledger/internal/domain/applicant"
	"farm-loan-ledger/internal/domain/decision"
	"farm-loan-ledger/internal/domain/history"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
	"farm-loan-ledger/internal/infrastructure/metrics"
	"farm-loan-ledger/pkg/id"
	"farm-loan-ledger/pkg/logger"
)

var ErrInvalidInput = errors.New("invalid loan application")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Usecase struct {
	repos   uow.Repos // pool-bound, for reads
	uow     uow.UnitOfWork
	engine  *decision.Engine
	calc    *decision.Calculator
	rate    float64
	metrics *metrics.Registry
	now     func() time.Time
}

// NewUsecase: rate is the annual government interest rate applied to every schedule.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, engine *decision.Engine, calc *decision.Calculator, rate float64, m *metrics.Registry) *Usecase {
	if calc == nil {
		calc = decision.NewCalculator()
	}
	return &Usecase{repos: repos, uow: tx, engine: engine, calc: calc, rate: rate, metrics: m, now: time.Now}
}

// Submit decides the application and persists the loan with its first history row.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*LoanDTO, error) {
	app := in.Application
	if in.FarmerID == "" || app.Principal <= 0 || math.IsNaN(app.Principal) || app.LandSize < 0 {
		return nil, ErrInvalidInput
	}

	sched, err := u.calc.Schedule(app.Principal, u.rate, app.Frequency)
	if err != nil {
		return nil, err
	}

	var profile *applicant.Profile
	p, err := u.repos.Applicants.GetByApplicantID(ctx, in.FarmerID)
	switch {
	case err == nil:
		profile = p
	case errors.Is(err, applicant.ErrNotFound):
		// decided as manual review
	default:
		return nil, err
	}

	d := u.engine.Decide(ctx, app, profile)
	now := u.now().UTC()

	l := &loan.Loan{
		LoanID:             id.NewID32(),
		FarmerID:           in.FarmerID,
		Principal:          app.Principal,
		Purpose:            app.Purpose,
		LandSize:           app.LandSize,
		CropType:           app.CropType,
		AnnualIncome:       app.AnnualIncome,
		Location:           app.Location,
		RepaymentFrequency: app.Frequency,
		MerchantRestricted: app.MerchantRestricted,
		Insured:            app.Insured,
		Status:             d.Status,
		DecisionReason:     d.Reason,
		ConfidenceScore:    d.Confidence,
		EMIAmount:          math.Round(sched.EMI*100) / 100,
		NextDueDate:        sched.NextDueDate,
		DisbursementState:  loan.DisbursementNone,
		StatusUpdatedAt:    now,
	}
	if app.MerchantRestricted && app.MerchantCategory != "" {
		l.MerchantCategory.SetValid(app.MerchantCategory)
	}
	if app.Insured && app.InsuranceProvider != "" {
		l.InsuranceProvider.SetValid(app.InsuranceProvider)
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.History.Append(ctx, &history.Entry{
			LoanID:    l.LoanID,
			Action:    history.ActionSubmitted,
			ToStatus:  string(l.Status),
			ActorID:   in.FarmerID,
			ActorRole: string(actor.RoleFarmer),
			Remarks:   d.Reason,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	u.metrics.ObserveDecision(string(d.Status))
	logger.Info(ctx, "loan decided",
		zap.String("loan_id", l.LoanID),
		zap.String("status", string(d.Status)),
		zap.Float64("confidence", d.Confidence),
		zap.Bool("profile_found", profile != nil),
	)
	return toDTO(l), nil
}

// Get returns loan.ErrNotFound when the loan does not exist.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repos.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) ListByFarmer(ctx context.Context, farmerID string, p Page) ([]LoanDTO, error) {
	p = normalize(p)
	rows, err := u.repos.Loans.ListByFarmer(ctx, farmerID, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

// List is the admin view; an empty status lists everything.
func (u *Usecase) List(ctx context.Context, status loan.Status, p Page) ([]LoanDTO, error) {
	if status != "" && !status.Valid() {
		return nil, loan.ErrInvalidStatus
	}
	p = normalize(p)
	rows, err := u.repos.Loans.List(ctx, status, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

func (u *Usecase) History(ctx context.Context, loanID string) ([]history.Entry, error) {
	if _, err := u.repos.Loans.GetByLoanID(ctx, loanID); err != nil {
		return nil, err
	}
	return u.repos.History.ListByLoan(ctx, loanID)
}

func (u *Usecase) Analytics(ctx context.Context) (*AnalyticsDTO, error) {
	counts, err := u.repos.Loans.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	disb, err := u.repos.Loans.CountByDisbursement(ctx)
	if err != nil {
		return nil, err
	}

	out := &AnalyticsDTO{
		ByStatus:      make(map[string]StatusStats, len(counts)),
		Disbursements: make(map[string]int64, len(disb)),
	}
	for _, c := range counts {
		out.ByStatus[string(c.Status)] = StatusStats{Count: c.Count, Principal: c.Amount}
		out.TotalLoans += c.Count
		out.TotalPrincipal += c.Amount
	}
	for state, n := range disb {
		out.Disbursements[string(state)] = n
	}
	return out, nil
}

func normalize(p Page) Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func toDTOs(rows []loan.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out
}
