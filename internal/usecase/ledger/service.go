package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"farm-loan-ledger/internal/domain/actor"
	domain "farm-loan-ledger/internal/domain/ledger"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/infrastructure/metrics"
	"farm-loan-ledger/pkg/logger"
)

const defaultBatch = 500

// Service is the single writer of the ledger within this process. The halt flag lives in
// the ledger_state row so every process sharing the database honours it.
type Service struct {
	mu     sync.Mutex // serializes tip read + hash + insert
	halted atomic.Bool // last shared state seen
	// set when an append finds a tampered tip; its tx rolls back, so the shared
	// row only learns of it on the next Verify
	tipBroken atomic.Bool

	reader  domain.Repository
	batch   int
	metrics *metrics.Registry
	now     func() time.Time
}

type Option func(*Service)

func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batch = n
		}
	}
}

func WithMetrics(m *metrics.Registry) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService takes a repository bound to the pool, used for read-only verification.
func NewService(reader domain.Repository, opts ...Option) *Service {
	s := &Service{reader: reader, batch: defaultBatch, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Halted reports the shared halt flag, or a tampered tip this process has seen. If the
// store cannot be read it falls back to the last state this process saw.
func (s *Service) Halted(ctx context.Context) bool {
	st, err := s.reader.State(ctx)
	if err != nil {
		logger.Warn(ctx, "ledger state unavailable, using cached halt flag", zap.Error(err))
	} else {
		s.halted.Store(st.Halted)
	}
	return s.halted.Load() || s.tipBroken.Load()
}

// Append writes the next entry through repo, which must be bound to the caller's transaction.
func (s *Service) Append(ctx context.Context, repo domain.Repository, in domain.AppendInput) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	// checked under the lock and inside the tx so a halt from any process wins
	st, err := repo.LockState(ctx)
	if err != nil {
		return nil, err
	}
	s.halted.Store(st.Halted)
	s.metrics.SetHalted(st.Halted)
	if st.Halted {
		return nil, domain.ErrLedgerHalted
	}

	exists, err := repo.ExistsReference(ctx, in.ReferenceID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateReference
	}
	prior, err := repo.GetByLoanID(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return nil, loan.ErrAlreadyDisbursed
	}

	tip, err := repo.Tip(ctx)
	if err != nil {
		return nil, err
	}
	e := &domain.Entry{
		Sequence:    1,
		ReferenceID: in.ReferenceID,
		LoanID:      in.LoanID,
		Amount:      in.Amount.Round(2),
		Destination: in.Destination,
		Timestamp:   domain.CanonicalTime(in.Timestamp),
		CreatedBy:   in.ActorID,
	}
	if in.Timestamp.IsZero() {
		e.Timestamp = domain.CanonicalTime(s.now())
	}
	if tip != nil {
		if tip.Recompute() != tip.Hash {
			// the caller's tx rolls back, so only this process knows until Verify records it
			s.tipBroken.Store(true)
			s.markHalted(ctx, tip.Sequence)
			return nil, fmt.Errorf("%w: tip entry %d does not match its hash", domain.ErrChainIntegrityViolation, tip.Sequence)
		}
		e.Sequence = tip.Sequence + 1
		e.PrevHash.SetValid(tip.Hash)
	}
	e.Hash = e.Recompute()

	if err := repo.Insert(ctx, e); err != nil {
		if isDuplicate(err) {
			// another writer claimed this sequence or prev_hash
			return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return nil, err
	}

	s.metrics.ObserveAppend(time.Since(start))
	logger.Info(ctx, "ledger entry appended",
		zap.Uint64("sequence", e.Sequence),
		zap.String("reference_id", e.ReferenceID),
		zap.String("loan_id", e.LoanID),
		zap.String("hash", e.Hash),
	)
	return e, nil
}

// Verify replays the chain from genesis in batches. A mismatch halts appends and
// is returned wrapped in ErrChainIntegrityViolation alongside the report.
func (s *Service) Verify(ctx context.Context) (domain.VerifyReport, error) {
	chain := domain.NewChain()
	var after uint64
	for {
		batch, err := s.reader.Batch(ctx, after, s.batch)
		if err != nil {
			return domain.VerifyReport{}, err
		}
		if len(batch) == 0 {
			break
		}
		if !chain.Feed(batch) {
			break
		}
		after = batch[len(batch)-1].Sequence
		if len(batch) < s.batch {
			break
		}
	}

	report := chain.Report()
	if report.Valid {
		s.tipBroken.Store(false)
		logger.Info(ctx, "ledger verified", zap.Uint64("entries", report.Entries))
		return report, nil
	}
	s.metrics.ObserveVerifyFailure()
	s.halted.Store(true)
	s.markHalted(ctx, report.FirstInvalidSequence)
	violation := fmt.Errorf("%w: first invalid sequence %d", domain.ErrChainIntegrityViolation, report.FirstInvalidSequence)
	if err := s.reader.SaveState(ctx, domain.State{
		Halted:               true,
		FirstInvalidSequence: report.FirstInvalidSequence,
		UpdatedBy:            "verify",
	}); err != nil {
		logger.Error(ctx, "persist ledger halt failed", zap.Error(err))
		return report, errors.Join(violation, err)
	}
	return report, violation
}

// Resume re-enables appends after an operator has investigated a violation. The chain is
// verified first; a chain that is still broken stays halted.
func (s *Service) Resume(ctx context.Context, by actor.Actor) (domain.VerifyReport, error) {
	report, err := s.Verify(ctx)
	if err != nil {
		return report, err
	}
	if err := s.reader.SaveState(ctx, domain.State{UpdatedBy: by.ID}); err != nil {
		return report, err
	}
	if s.halted.Swap(false) {
		logger.Warn(ctx, "ledger appends resumed", zap.String("actor_id", by.ID), zap.String("role", string(by.Role)))
	}
	s.metrics.SetHalted(false)
	return report, nil
}

func (s *Service) markHalted(ctx context.Context, seq uint64) {
	s.metrics.SetHalted(true)
	logger.Error(ctx, "ledger chain integrity violation, appends halted", zap.Uint64("first_invalid_sequence", seq))
}
