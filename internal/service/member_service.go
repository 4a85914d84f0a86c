package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/internal/repository"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
)

type MemberService struct {
	memberRepo repository.MemberRepository
	logger     *slog.Logger
}

func NewMemberService(memberRepo repository.MemberRepository, logger *slog.Logger) *MemberService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberService{memberRepo: memberRepo, logger: logger}
}

// Register creates a new member in PENDING state awaiting manager approval.
func (s *MemberService) Register(ctx context.Context, req *domain.RegisterMemberRequest) (*domain.Member, error) {
	member := &domain.Member{
		ID:     uuid.New(),
		Name:   req.Name,
		Email:  req.Email,
		Role:   domain.MemberRoleMember,
		Status: domain.MemberStatusPending,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	s.logger.Info("member registered", "memberId", member.ID, "email", member.Email)
	return member, nil
}

// Approve moves a member to APPROVED, making them eligible for loans.
func (s *MemberService) Approve(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return s.setStatus(ctx, id, domain.MemberStatusApproved)
}

// Reject moves a member to REJECTED.
func (s *MemberService) Reject(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return s.setStatus(ctx, id, domain.MemberStatusRejected)
}

func (s *MemberService) setStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fundErrors.WrapInvalidMember(id.String())
		}
		return nil, fundErrors.WrapDatabaseError(err)
	}

	if err := s.memberRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}
	member.Status = status

	s.logger.Info("member status updated", "memberId", id, "status", status)
	return member, nil
}

// List returns the full member directory.
func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}
	return members, nil
}
