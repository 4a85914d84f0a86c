package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/internal/repository"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
	"github.com/funters/fund-engine/pkg/metrics"
)

type DepositService struct {
	depositRepo repository.DepositRepository
	memberRepo  repository.MemberRepository
	redis       *redis.Client
	logger      *slog.Logger
	collector   *metrics.Collector
}

func NewDepositService(
	depositRepo repository.DepositRepository,
	memberRepo repository.MemberRepository,
	redisClient *redis.Client,
	logger *slog.Logger,
	collector *metrics.Collector,
) *DepositService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DepositService{
		depositRepo: depositRepo,
		memberRepo:  memberRepo,
		redis:       redisClient,
		logger:      logger,
		collector:   collector,
	}
}

// CreateDeposit records a member contribution in the fund ledger. The entry
// date is stamped by the server; the payment date is what the member
// declares on the receipt.
func (s *DepositService) CreateDeposit(ctx context.Context, req *domain.CreateDepositRequest) (*domain.Deposit, error) {
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

	if !req.Amount.IsPositive() {
		return nil, fundErrors.NewBusinessError(
			fundErrors.ErrCodeInvalidDepositAmount,
			"Deposit amount must be a positive number",
			fundErrors.ErrInvalidDepositAmount,
		)
	}

	paymentDate, err := domain.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, fundErrors.WrapInvalidDate(req.PaymentDate)
	}

	deposit := &domain.Deposit{
		ID:          uuid.New(),
		MemberID:    member.ID,
		MemberName:  member.Name,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		EntryDate:   domain.DateOf(time.Now()),
		Notes:       req.Notes,
	}

	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, dashboardCacheKey).Err(); err != nil {
			s.logger.Warn("invalidating dashboard cache", "error", err)
		}
	}
	if s.collector != nil {
		s.collector.DepositRecorded()
	}
	s.logger.Info("deposit recorded", "depositId", deposit.ID, "memberId", member.ID, "amount", deposit.Amount)

	return deposit, nil
}

// ListDeposits returns the ledger, or one member's entries when memberID is set.
func (s *DepositService) ListDeposits(ctx context.Context, memberID *uuid.UUID) ([]*domain.Deposit, error) {
	var (
		deposits []*domain.Deposit
		err      error
	)
	if memberID != nil {
		deposits, err = s.depositRepo.ListByMember(ctx, *memberID)
	} else {
		deposits, err = s.depositRepo.List(ctx)
	}
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}
	return deposits, nil
}
