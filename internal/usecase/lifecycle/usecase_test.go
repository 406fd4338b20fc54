package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"farm-loan-ledger/internal/domain/actor"
	"farm-loan-ledger/internal/domain/history"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
	"farm-loan-ledger/internal/testutil/historymock"
	"farm-loan-ledger/internal/testutil/loanmock"
	"farm-loan-ledger/internal/testutil/uowmock"
)

var approver = actor.Actor{ID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Role: actor.RoleApprover}

func TestUsecase_SetStatus(t *testing.T) {
	now := time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		stored      *loan.Loan
		in          SetStatusInput
		saveErr     error
		wantErr     error
		wantStatus  loan.Status
		wantHistory int
	}{
		{
			name:        "pending -> approved",
			stored:      &loan.Loan{LoanID: "LN-1", Status: loan.StatusPending, DisbursementState: loan.DisbursementNone},
			in:          SetStatusInput{LoanID: "LN-1", Status: loan.StatusApproved, Remarks: "field visit ok", Actor: approver},
			wantStatus:  loan.StatusApproved,
			wantHistory: 1,
		},
		{
			name:        "admin override approved -> rejected before release",
			stored:      &loan.Loan{LoanID: "LN-2", Status: loan.StatusApproved, DisbursementState: loan.DisbursementNone},
			in:          SetStatusInput{LoanID: "LN-2", Status: loan.StatusRejected, Actor: actor.Actor{ID: "admin", Role: actor.RoleAdmin}},
			wantStatus:  loan.StatusRejected,
			wantHistory: 1,
		},
		{
			name:    "frozen after disbursement",
			stored:  &loan.Loan{LoanID: "LN-3", Status: loan.StatusApproved, DisbursementState: loan.DisbursementFundsReleased},
			in:      SetStatusInput{LoanID: "LN-3", Status: loan.StatusRejected, Actor: approver},
			wantErr: loan.ErrInvalidTransition,
		},
		{
			name:    "unknown status",
			stored:  &loan.Loan{LoanID: "LN-4", Status: loan.StatusPending},
			in:      SetStatusInput{LoanID: "LN-4", Status: "CANCELLED", Actor: approver},
			wantErr: loan.ErrInvalidStatus,
		},
		{
			name:    "loan not found",
			in:      SetStatusInput{LoanID: "missing", Status: loan.StatusApproved, Actor: approver},
			wantErr: loan.ErrNotFound,
		},
		{
			name:    "save fails",
			stored:  &loan.Loan{LoanID: "LN-5", Status: loan.StatusPending},
			in:      SetStatusInput{LoanID: "LN-5", Status: loan.StatusApproved, Actor: approver},
			saveErr: errors.New("db down"),
			wantErr: errors.New("db down"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var saved *loan.Loan
			loans := &loanmock.Repo{
				GetByLoanIDForUpdateFn: func(_ context.Context, id string) (*loan.Loan, error) {
					if tc.stored == nil || id != tc.stored.LoanID {
						return nil, loan.ErrNotFound
					}
					cp := *tc.stored
					return &cp, nil
				},
				SaveFn: func(_ context.Context, l *loan.Loan) error {
					if tc.saveErr != nil {
						return tc.saveErr
					}
					saved = l
					return nil
				},
			}
			hist := &historymock.Recorder{}
			uc := NewUsecase(uowmock.ForRepos(uow.Repos{Loans: loans, History: hist}), nil)
			uc.now = func() time.Time { return now }

			dto, err := uc.SetStatus(context.Background(), tc.in)
			if tc.wantErr != nil {
				if err == nil || (!errors.Is(err, tc.wantErr) && err.Error() != tc.wantErr.Error()) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if len(hist.Entries) != 0 {
					t.Fatalf("history written on failure: %+v", hist.Entries)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if saved == nil || saved.Status != tc.wantStatus {
				t.Fatalf("saved = %+v, want status %s", saved, tc.wantStatus)
			}
			if !saved.StatusUpdatedAt.Equal(now) {
				t.Fatalf("status_updated_at = %v, want %v", saved.StatusUpdatedAt, now)
			}
			if dto.Status != string(tc.wantStatus) || dto.PreviousStatus != string(tc.stored.Status) {
				t.Fatalf("dto = %+v", dto)
			}
			if len(hist.Entries) != tc.wantHistory {
				t.Fatalf("history entries = %d, want %d", len(hist.Entries), tc.wantHistory)
			}
			h := hist.Entries[0]
			if h.Action != history.ActionStatusChange || h.ActorRole != string(tc.in.Actor.Role) || h.ActorID != tc.in.Actor.ID {
				t.Fatalf("history = %+v", h)
			}
		})
	}
}

func TestUsecase_Approve_RecordsShortcutRemarks(t *testing.T) {
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
			return &loan.Loan{LoanID: "LN-9", Status: loan.StatusPending, DisbursementState: loan.DisbursementNone}, nil
		},
	}
	hist := &historymock.Recorder{}
	uc := NewUsecase(uowmock.ForRepos(uow.Repos{Loans: loans, History: hist}), nil)

	dto, err := uc.Approve(context.Background(), "LN-9", approver)
	if err != nil {
		t.Fatalf("Approve err: %v", err)
	}
	if dto.Status != string(loan.StatusApproved) || dto.Remarks != ApproveRemarks {
		t.Fatalf("dto = %+v", dto)
	}
	if len(hist.Entries) != 1 || hist.Entries[0].Remarks != ApproveRemarks {
		t.Fatalf("history = %+v", hist.Entries)
	}
}

func TestUsecase_SetStatus_TxError(t *testing.T) {
	boom := errors.New("tx begin failed")
	uc := NewUsecase(&uowmock.UoW{
		WithinLoanTxFn: func(context.Context, string, func(uow.Repos, *loan.Loan) error) error { return boom },
	}, nil)

	if _, err := uc.Approve(context.Background(), "LN-1", approver); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
