package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/funters/fund-engine/internal/config"
	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/internal/repository"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
)

// DashboardService aggregates fund-wide figures for the dashboard. It is a
// read-only consumer of the loan and deposit collections; results are
// cached in Redis until a write invalidates them.
type DashboardService struct {
	loanRepo    repository.LoanRepository
	depositRepo repository.DepositRepository
	memberRepo  repository.MemberRepository
	redis       *redis.Client
	config      *config.Config
	logger      *slog.Logger
}

func NewDashboardService(
	loanRepo repository.LoanRepository,
	depositRepo repository.DepositRepository,
	memberRepo repository.MemberRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *slog.Logger,
) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loanRepo:    loanRepo,
		depositRepo: depositRepo,
		memberRepo:  memberRepo,
		redis:       redisClient,
		config:      cfg,
		logger:      logger,
	}
}

// GetStats computes the fund dashboard:
// currentBalance = deposits - loans issued + recoveries.
func (s *DashboardService) GetStats(ctx context.Context) (*domain.FundStats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	totalDeposits, err := s.depositRepo.Total(ctx)
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	loanTotals, err := s.loanRepo.Totals(ctx)
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	approvedMembers, err := s.memberRepo.CountByStatus(ctx, domain.MemberStatusApproved)
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	stats := &domain.FundStats{
		TotalDeposits:    totalDeposits,
		TotalLoansIssued: loanTotals.Issued,
		TotalRecoveries:  loanTotals.Recovered,
		TotalWaivers:     loanTotals.Waivers,
		CurrentBalance:   totalDeposits.Sub(loanTotals.Issued).Add(loanTotals.Recovered),
		TotalMembers:     approvedMembers,
	}

	s.toCache(ctx, stats)
	return stats, nil
}

func (s *DashboardService) fromCache(ctx context.Context) *domain.FundStats {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("reading dashboard cache", "error", err)
		}
		return nil
	}

	var stats domain.FundStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Warn("decoding dashboard cache", "error", err)
		return nil
	}
	return &stats
}

func (s *DashboardService) toCache(ctx context.Context, stats *domain.FundStats) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		s.logger.Warn("encoding dashboard cache", "error", err)
		return
	}
	if err := s.redis.Set(ctx, dashboardCacheKey, raw, s.config.Business.DashboardCacheTTL).Err(); err != nil {
		s.logger.Warn("writing dashboard cache", "error", err)
	}
}
