package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/funters/fund-engine/internal/domain"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	loanQuery := `
		INSERT INTO loans (id, member_id, member_name, total_amount, recoverable_amount, waiver_amount, issue_date, term_months, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	installmentQuery := `
		INSERT INTO installments (id, loan_id, seq, due_date, amount, paid, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, loanQuery,
		loan.ID,
		loan.MemberID,
		loan.MemberName,
		loan.TotalAmount,
		loan.RecoverableAmount,
		loan.WaiverAmount,
		loan.IssueDate,
		loan.TermMonths,
		loan.Status,
	)
	if err != nil {
		return err
	}

	for _, ins := range loan.Installments {
		_, err = tx.ExecContext(ctx, installmentQuery,
			ins.ID,
			ins.LoanID,
			ins.Seq,
			ins.DueDate,
			ins.Amount,
			ins.Paid,
			ins.PaymentDate,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, member_id, member_name, total_amount, recoverable_amount, waiver_amount, issue_date, term_months, status, created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	installments, err := r.installmentsForLoans(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Installments = installments[id]
	if loan.Installments == nil {
		loan.Installments = []*domain.Installment{}
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	return r.list(ctx, `
		SELECT id, member_id, member_name, total_amount, recoverable_amount, waiver_amount, issue_date, term_months, status, created_at, updated_at
		FROM loans
		ORDER BY created_at DESC
	`)
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	return r.list(ctx, `
		SELECT id, member_id, member_name, total_amount, recoverable_amount, waiver_amount, issue_date, term_months, status, created_at, updated_at
		FROM loans
		WHERE member_id = $1
		ORDER BY created_at DESC
	`, memberID)
}

func (r *loanRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return []*domain.Loan{}, nil
	}

	ids := make([]uuid.UUID, len(loans))
	for i, loan := range loans {
		ids[i] = loan.ID
	}

	installments, err := r.installmentsForLoans(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, loan := range loans {
		loan.Installments = installments[loan.ID]
		if loan.Installments == nil {
			loan.Installments = []*domain.Installment{}
		}
	}

	return loans, nil
}

func (r *loanRepository) installmentsForLoans(ctx context.Context, loanIDs ...uuid.UUID) (map[uuid.UUID][]*domain.Installment, error) {
	query, args, err := sqlx.In(`
		SELECT id, loan_id, seq, due_date, amount, paid, payment_date
		FROM installments
		WHERE loan_id IN (?)
		ORDER BY loan_id, seq
	`, loanIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, args...); err != nil {
		return nil, err
	}

	byLoan := make(map[uuid.UUID][]*domain.Installment, len(loanIDs))
	for _, ins := range installments {
		byLoan[ins.LoanID] = append(byLoan[ins.LoanID], ins)
	}
	return byLoan, nil
}

func (r *loanRepository) MarkInstallmentPaid(ctx context.Context, loanID, installmentID uuid.UUID, paidAt time.Time, loanStatus string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Guarding on paid = FALSE makes the payment apply at most once even
	// when two managers race on the same installment.
	res, err := tx.ExecContext(ctx, `
		UPDATE installments
		SET paid = TRUE, payment_date = $3
		WHERE id = $2 AND loan_id = $1 AND paid = FALSE
	`, loanID, installmentID, paidAt)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM installments WHERE id = $2 AND loan_id = $1)`, loanID, installmentID); err != nil {
			return err
		}
		if !exists {
			return fundErrors.WrapInstallmentNotFound(installmentID)
		}
		return fundErrors.WrapAlreadyPaid(installmentID)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE loans SET status = $2, updated_at = NOW() WHERE id = $1
	`, loanID, loanStatus)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) ListOverdue(ctx context.Context, asOf domain.Date) ([]*domain.OverdueInstallment, error) {
	return r.listInstallmentViews(ctx, `
		SELECT l.id AS loan_id, l.member_id, l.member_name, i.seq, i.due_date, i.amount
		FROM installments i
		JOIN loans l ON l.id = i.loan_id
		WHERE i.paid = FALSE AND l.status = $1 AND i.due_date < $2
		ORDER BY i.due_date, l.id, i.seq
	`, domain.LoanStatusActive, asOf)
}

func (r *loanRepository) ListDueWithin(ctx context.Context, asOf domain.Date, days int) ([]*domain.OverdueInstallment, error) {
	until := domain.DateOf(asOf.AddDate(0, 0, days))
	return r.listInstallmentViews(ctx, `
		SELECT l.id AS loan_id, l.member_id, l.member_name, i.seq, i.due_date, i.amount
		FROM installments i
		JOIN loans l ON l.id = i.loan_id
		WHERE i.paid = FALSE AND l.status = $1 AND i.due_date >= $2 AND i.due_date <= $3
		ORDER BY i.due_date, l.id, i.seq
	`, domain.LoanStatusActive, asOf, until)
}

func (r *loanRepository) listInstallmentViews(ctx context.Context, query string, args ...interface{}) ([]*domain.OverdueInstallment, error) {
	var views []*domain.OverdueInstallment
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *loanRepository) Totals(ctx context.Context) (*domain.LoanTotals, error) {
	var totals domain.LoanTotals
	err := r.db.GetContext(ctx, &totals, `
		SELECT
			COALESCE(SUM(total_amount), 0)  AS issued,
			COALESCE(SUM(waiver_amount), 0) AS waivers,
			COALESCE((SELECT SUM(amount) FROM installments WHERE paid = TRUE), 0) AS recovered
		FROM loans
	`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &totals, nil
}
