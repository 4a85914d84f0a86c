package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/funters/fund-engine/internal/domain"
)

type depositRepository struct {
	db *sqlx.DB
}

func NewDepositRepository(db *sqlx.DB) DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, deposit *domain.Deposit) error {
	query := `
		INSERT INTO deposits (id, member_id, member_name, amount, payment_date, entry_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		deposit.ID,
		deposit.MemberID,
		deposit.MemberName,
		deposit.Amount,
		deposit.PaymentDate,
		deposit.EntryDate,
		deposit.Notes,
	)

	return err
}

func (r *depositRepository) List(ctx context.Context) ([]*domain.Deposit, error) {
	query := `
		SELECT id, member_id, member_name, amount, payment_date, entry_date, notes, created_at
		FROM deposits
		ORDER BY entry_date DESC, created_at DESC
	`

	var deposits []*domain.Deposit
	if err := r.db.SelectContext(ctx, &deposits, query); err != nil {
		return nil, err
	}

	return deposits, nil
}

func (r *depositRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Deposit, error) {
	query := `
		SELECT id, member_id, member_name, amount, payment_date, entry_date, notes, created_at
		FROM deposits
		WHERE member_id = $1
		ORDER BY entry_date DESC, created_at DESC
	`

	var deposits []*domain.Deposit
	if err := r.db.SelectContext(ctx, &deposits, query, memberID); err != nil {
		return nil, err
	}

	return deposits, nil
}

func (r *depositRepository) Total(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM deposits
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
