package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/funters/fund-engine/internal/domain"
)

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, name, email, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Email,
		member.Role,
		member.Status,
	)

	return err
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, name, email, role, status, created_at, updated_at
		FROM members
		WHERE id = $1
	`

	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	query := `
		SELECT id, name, email, role, status, created_at, updated_at
		FROM members
		ORDER BY created_at DESC
	`

	var members []*domain.Member
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE members SET status = $2, updated_at = NOW() WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *memberRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	query := `
		SELECT COUNT(*) FROM members WHERE status = $1
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, err
	}

	return count, nil
}
