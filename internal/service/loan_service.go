package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/funters/fund-engine/internal/config"
	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/internal/engine"
	"github.com/funters/fund-engine/internal/repository"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
	"github.com/funters/fund-engine/pkg/metrics"
)

// dashboardCacheKey is shared by every service that mutates figures the
// dashboard aggregates over.
const dashboardCacheKey = "fund:dashboard:stats"

type LoanService struct {
	loanRepo   repository.LoanRepository
	memberRepo repository.MemberRepository
	engine     *engine.Engine
	redis      *redis.Client
	config     *config.Config
	logger     *slog.Logger
	collector  *metrics.Collector
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	memberRepo repository.MemberRepository,
	eng *engine.Engine,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *slog.Logger,
	collector *metrics.Collector,
) *LoanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoanService{
		loanRepo:   loanRepo,
		memberRepo: memberRepo,
		engine:     eng,
		redis:      redisClient,
		config:     cfg,
		logger:     logger,
		collector:  collector,
	}
}

// IssueLoan resolves the borrowing member, runs the engine and persists the
// resulting aggregate. The manager-capability check happens upstream; this
// layer only verifies the member exists and is approved.
func (s *LoanService) IssueLoan(ctx context.Context, req *domain.IssueLoanRequest) (*domain.Loan, error) {
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		return nil, fundErrors.WrapInvalidMember(req.MemberID)
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fundErrors.WrapInvalidMember(req.MemberID)
		}
		return nil, fundErrors.WrapDatabaseError(err)
	}
	if !member.IsApproved() {
		return nil, fundErrors.WrapMemberNotApproved(member.ID)
	}

	if req.TermMonths < s.config.Business.MinTermMonths || req.TermMonths > s.config.Business.MaxTermMonths {
		return nil, fundErrors.WrapInvalidTerm(req.TermMonths)
	}

	issueDate, err := domain.ParseDate(req.IssueDate)
	if err != nil {
		return nil, fundErrors.WrapInvalidDate(req.IssueDate)
	}

	loan, err := s.engine.IssueLoan(engine.IssueLoanInput{
		MemberID:    member.ID,
		MemberName:  member.Name,
		TotalAmount: req.TotalAmount,
		TermMonths:  req.TermMonths,
		IssueDate:   issueDate,
	})
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	if s.collector != nil {
		s.collector.LoanIssued()
	}
	s.logger.Info("loan issued",
		"loanId", loan.ID,
		"memberId", loan.MemberID,
		"totalAmount", loan.TotalAmount,
		"termMonths", loan.TermMonths,
	)

	return loan, nil
}

// RecordPayment marks one installment paid and persists the updated
// aggregate. The repository re-checks the paid flag inside its transaction,
// so concurrent payments on the same installment settle it exactly once.
func (s *LoanService) RecordPayment(ctx context.Context, loanID, installmentID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fundErrors.WrapLoanNotFound(loanID)
		}
		return nil, fundErrors.WrapDatabaseError(err)
	}

	updated, err := s.engine.RecordPayment(loan, installmentID)
	if err != nil {
		return nil, err
	}

	paid := updated.FindInstallment(installmentID)
	if err := s.loanRepo.MarkInstallmentPaid(ctx, loanID, installmentID, *paid.PaymentDate, updated.Status); err != nil {
		var be *fundErrors.BusinessError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, fundErrors.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	if s.collector != nil {
		s.collector.PaymentRecorded()
		if updated.Status == domain.LoanStatusCompleted {
			s.collector.LoanCompleted()
		}
	}
	s.logger.Info("installment paid",
		"loanId", loanID,
		"installmentId", installmentID,
		"loanStatus", updated.Status,
	)

	return updated, nil
}

// GetLoan retrieves a single loan with its schedule.
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fundErrors.WrapLoanNotFound(loanID)
		}
		return nil, fundErrors.WrapDatabaseError(err)
	}
	return loan, nil
}

// ListLoans returns all loans, or a single member's when memberID is set.
func (s *LoanService) ListLoans(ctx context.Context, memberID *uuid.UUID) ([]*domain.Loan, error) {
	var (
		loans []*domain.Loan
		err   error
	)
	if memberID != nil {
		loans, err = s.loanRepo.ListByMember(ctx, *memberID)
	} else {
		loans, err = s.loanRepo.List(ctx)
	}
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}
	return loans, nil
}

func (s *LoanService) invalidateDashboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn("invalidating dashboard cache", "error", err)
	}
}
