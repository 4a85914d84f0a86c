package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/funters/fund-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create persists a loan together with its installment schedule.
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan and its installments.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves all loans, newest first.
	List(ctx context.Context) ([]*domain.Loan, error)

	// ListByMember retrieves a member's loans, newest first.
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error)

	// MarkInstallmentPaid persists one installment payment and the loan's
	// recomputed status atomically. It must fail if the installment is
	// already paid so a payment applies at most once.
	MarkInstallmentPaid(ctx context.Context, loanID, installmentID uuid.UUID, paidAt time.Time, loanStatus string) error

	// ListOverdue returns unpaid installments of active loans whose due
	// date is before asOf.
	ListOverdue(ctx context.Context, asOf domain.Date) ([]*domain.OverdueInstallment, error)

	// ListDueWithin returns unpaid installments of active loans due in
	// [asOf, asOf+days].
	ListDueWithin(ctx context.Context, asOf domain.Date, days int) ([]*domain.OverdueInstallment, error)

	// Totals aggregates issued, waived and recovered amounts across all loans.
	Totals(ctx context.Context) (*domain.LoanTotals, error)
}

// MemberRepository defines the interface for member directory operations
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	List(ctx context.Context) ([]*domain.Member, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountByStatus(ctx context.Context, status string) (int, error)
}

// DepositRepository defines the interface for the contribution ledger
type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.Deposit) error
	List(ctx context.Context) ([]*domain.Deposit, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Deposit, error)
	Total(ctx context.Context) (decimal.Decimal, error)
}
