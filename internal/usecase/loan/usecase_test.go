package loan

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"farm-loan-ledger/internal/domain/applicant"
	"farm-loan-ledger/internal/domain/decision"
	"farm-loan-ledger/internal/domain/history"
	domain "farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
	"farm-loan-ledger/internal/testutil/historymock"
	"farm-loan-ledger/internal/testutil/loanmock"
	"farm-loan-ledger/internal/testutil/uowmock"
)

// ----- test doubles -----

type applicantRepo struct {
	profiles map[string]*applicant.Profile
	err      error
}

func (m *applicantRepo) GetByApplicantID(_ context.Context, id string) (*applicant.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, applicant.ErrNotFound
}

const farmerID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newUsecase(loans *loanmock.Repo, hist *historymock.Recorder, apps *applicantRepo, scorer decision.RiskScorer) *Usecase {
	repos := uow.Repos{Loans: loans, History: hist, Applicants: apps}
	calc := &decision.Calculator{Now: func() time.Time { return fixedNow }}
	uc := NewUsecase(repos, uowmock.ForRepos(repos), decision.NewEngine(scorer), calc, 0.06, nil)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func approveAll() decision.RiskScorer {
	return decision.ScorerFunc(func(context.Context, decision.Features) (float64, []string, error) {
		return 0.8, []string{"risk assessment 80/100 (good)"}, nil
	})
}

func baseApp() domain.Application {
	return domain.Application{
		Principal:    120000,
		Purpose:      "tractor",
		LandSize:     4,
		CropType:     "maize",
		AnnualIncome: 60000,
		Location:     "Nakuru",
		Frequency:    domain.FrequencyMonthly,
	}
}

// ----- tests -----

func TestSubmit_PersistsDecisionAndSchedule(t *testing.T) {
	var created *domain.Loan
	loans := &loanmock.Repo{CreateFn: func(_ context.Context, l *domain.Loan) error { created = l; return nil }}
	hist := &historymock.Recorder{}
	apps := &applicantRepo{profiles: map[string]*applicant.Profile{farmerID: {ApplicantID: farmerID, CreditScore: 720}}}

	dto, err := newUsecase(loans, hist, apps, approveAll()).Submit(context.Background(), SubmitInput{FarmerID: farmerID, Application: baseApp()})
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if created == nil || len(created.LoanID) != 32 {
		t.Fatalf("created = %+v", created)
	}
	if dto.Status != string(domain.StatusApproved) || dto.DisbursementState != string(domain.DisbursementNone) {
		t.Fatalf("dto = %+v", dto)
	}
	if math.Abs(dto.EMIAmount-10327.97) > 0.005 {
		t.Fatalf("emi = %v, want 10327.97", dto.EMIAmount)
	}
	if !dto.NextDueDate.Equal(fixedNow.AddDate(0, 0, 30)) {
		t.Fatalf("next due = %v", dto.NextDueDate)
	}
	if len(hist.Entries) != 1 || hist.Entries[0].Action != history.ActionSubmitted || hist.Entries[0].ToStatus != "APPROVED" {
		t.Fatalf("history = %+v", hist.Entries)
	}
}

func TestSubmit_MissingProfileGoesToManualReview(t *testing.T) {
	loans := &loanmock.Repo{}
	uc := newUsecase(loans, &historymock.Recorder{}, &applicantRepo{}, approveAll())

	dto, err := uc.Submit(context.Background(), SubmitInput{FarmerID: farmerID, Application: baseApp()})
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if dto.Status != string(domain.StatusPending) || dto.DecisionReason != decision.ReasonManualReview || dto.ConfidenceScore != 0.5 {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestSubmit_Errors(t *testing.T) {
	dbErr := errors.New("db down")
	tests := []struct {
		name    string
		in      SubmitInput
		apps    *applicantRepo
		create  error
		wantErr error
	}{
		{name: "no farmer", in: SubmitInput{Application: baseApp()}, apps: &applicantRepo{}, wantErr: ErrInvalidInput},
		{
			name:    "zero principal",
			in:      SubmitInput{FarmerID: farmerID, Application: domain.Application{Frequency: domain.FrequencyMonthly}},
			apps:    &applicantRepo{},
			wantErr: ErrInvalidInput,
		},
		{
			name: "bad frequency",
			in: func() SubmitInput {
				a := baseApp()
				a.Frequency = "weekly"
				return SubmitInput{FarmerID: farmerID, Application: a}
			}(),
			apps:    &applicantRepo{},
			wantErr: decision.ErrInvalidFrequency,
		},
		{name: "profile lookup fails", in: SubmitInput{FarmerID: farmerID, Application: baseApp()}, apps: &applicantRepo{err: dbErr}, wantErr: dbErr},
		{name: "create fails", in: SubmitInput{FarmerID: farmerID, Application: baseApp()}, apps: &applicantRepo{}, create: dbErr, wantErr: dbErr},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loans := &loanmock.Repo{CreateFn: func(context.Context, *domain.Loan) error { return tc.create }}
			hist := &historymock.Recorder{}
			_, err := newUsecase(loans, hist, tc.apps, approveAll()).Submit(context.Background(), tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if len(hist.Entries) != 0 {
				t.Fatalf("history written on failure")
			}
		})
	}
}

func TestSubmit_MerchantAndInsuranceFields(t *testing.T) {
	var created *domain.Loan
	loans := &loanmock.Repo{CreateFn: func(_ context.Context, l *domain.Loan) error { created = l; return nil }}
	app := baseApp()
	app.Principal = 30000
	app.MerchantRestricted = true
	app.MerchantCategory = "seeds"
	app.Insured = true
	app.InsuranceProvider = "AgriCover"

	dto, err := newUsecase(loans, &historymock.Recorder{}, &applicantRepo{}, approveAll()).
		Submit(context.Background(), SubmitInput{FarmerID: farmerID, Application: app})
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if dto.Status != string(domain.StatusApproved) || dto.DecisionReason != decision.ReasonMicroLoan {
		t.Fatalf("dto = %+v", dto)
	}
	if created.Category() != "seeds" || created.InsuranceProvider.String != "AgriCover" {
		t.Fatalf("created = %+v", created)
	}
}

func TestGet_NotFound(t *testing.T) {
	uc := newUsecase(&loanmock.Repo{}, &historymock.Recorder{}, &applicantRepo{}, nil)
	if _, err := uc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestList_PagingAndStatusFilter(t *testing.T) {
	var gotLimit, gotOffset int
	var gotStatus domain.Status
	loans := &loanmock.Repo{
		ListFn: func(_ context.Context, s domain.Status, limit, offset int) ([]domain.Loan, error) {
			gotStatus, gotLimit, gotOffset = s, limit, offset
			return []domain.Loan{{LoanID: "a", Status: s}, {LoanID: "b", Status: s}}, nil
		},
	}
	uc := newUsecase(loans, &historymock.Recorder{}, &applicantRepo{}, nil)

	out, err := uc.List(context.Background(), domain.StatusPending, Page{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(out) != 2 || gotStatus != domain.StatusPending || gotLimit != MaxPageSize || gotOffset != 0 {
		t.Fatalf("out=%d status=%s limit=%d offset=%d", len(out), gotStatus, gotLimit, gotOffset)
	}

	if _, err := uc.List(context.Background(), "ARCHIVED", Page{}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestListByFarmer_DefaultPage(t *testing.T) {
	loans := &loanmock.Repo{
		ListByFarmerFn: func(_ context.Context, id string, limit, offset int) ([]domain.Loan, error) {
			if id != farmerID || limit != DefaultPageSize || offset != 0 {
				t.Fatalf("id=%s limit=%d offset=%d", id, limit, offset)
			}
			return nil, nil
		},
	}
	out, err := newUsecase(loans, &historymock.Recorder{}, &applicantRepo{}, nil).ListByFarmer(context.Background(), farmerID, Page{})
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("out=%v err=%v", out, err)
	}
}

func TestAnalytics_Aggregates(t *testing.T) {
	loans := &loanmock.Repo{
		CountByStatusFn: func(context.Context) ([]domain.StatusCount, error) {
			return []domain.StatusCount{
				{Status: domain.StatusApproved, Count: 3, Amount: 150000},
				{Status: domain.StatusPending, Count: 2, Amount: 90000},
			}, nil
		},
		CountByDisbursementFn: func(context.Context) (map[domain.DisbursementState]int64, error) {
			return map[domain.DisbursementState]int64{domain.DisbursementNone: 4, domain.DisbursementVoucherIssued: 1}, nil
		},
	}
	a, err := newUsecase(loans, &historymock.Recorder{}, &applicantRepo{}, nil).Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics err: %v", err)
	}
	if a.TotalLoans != 5 || a.TotalPrincipal != 240000 || a.ByStatus["APPROVED"].Count != 3 || a.Disbursements["VOUCHER_ISSUED"] != 1 {
		t.Fatalf("analytics = %+v", a)
	}
}

func TestHistory_UnknownLoan(t *testing.T) {
	uc := newUsecase(&loanmock.Repo{}, &historymock.Recorder{}, &applicantRepo{}, nil)
	if _, err := uc.History(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
