// Package engine implements the fund's loan issuance and amortization
// rules: the 70/30 recoverable/waiver split, monthly installment schedule
// generation, and the installment payment state machine. It performs no
// I/O; persistence and authorization are the caller's responsibility.
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/funters/fund-engine/internal/domain"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
	"github.com/funters/fund-engine/pkg/utils"
)

// Engine computes loan aggregates. The clock is injectable so payment
// timestamps are deterministic under test.
type Engine struct {
	now func() time.Time
}

func New() *Engine {
	return &Engine{now: time.Now}
}

func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// IssueLoanInput carries a resolved loan request. The member reference is
// expected to point at an approved member; resolving and checking approval
// is the calling layer's job.
type IssueLoanInput struct {
	MemberID    uuid.UUID
	MemberName  string
	TotalAmount decimal.Decimal
	TermMonths  int
	IssueDate   domain.Date
}

// IssueLoan builds a fully populated loan aggregate: split amounts, a
// schedule of TermMonths uniform installments due on successive calendar
// months after the issue date, and status ACTIVE.
//
// The per-installment amount is the recoverable portion divided by the term,
// rounded half-up to the whole currency unit. The rounding residual is not
// redistributed: installmentAmount * termMonths may differ from the
// recoverable amount by up to termMonths-1 units.
func (e *Engine) IssueLoan(in IssueLoanInput) (*domain.Loan, error) {
	if in.MemberID == uuid.Nil {
		return nil, fundErrors.WrapInvalidMember(in.MemberID.String())
	}
	if !in.TotalAmount.IsPositive() {
		return nil, fundErrors.WrapInvalidAmount(in.TotalAmount.String())
	}
	if in.TermMonths < 1 {
		return nil, fundErrors.WrapInvalidTerm(in.TermMonths)
	}
	if in.IssueDate.IsZero() {
		return nil, fundErrors.WrapInvalidDate("")
	}

	recoverable, waiver := utils.SplitPrincipal(in.TotalAmount)
	installmentAmount := utils.CalculateInstallmentAmount(recoverable, in.TermMonths)

	loan := &domain.Loan{
		ID:                uuid.New(),
		MemberID:          in.MemberID,
		MemberName:        in.MemberName,
		TotalAmount:       in.TotalAmount,
		RecoverableAmount: recoverable,
		WaiverAmount:      waiver,
		IssueDate:         in.IssueDate,
		TermMonths:        in.TermMonths,
		Status:            domain.LoanStatusActive,
		Installments:      make([]*domain.Installment, 0, in.TermMonths),
	}

	for i := 1; i <= in.TermMonths; i++ {
		loan.Installments = append(loan.Installments, &domain.Installment{
			ID:      uuid.New(),
			LoanID:  loan.ID,
			Seq:     i,
			DueDate: in.IssueDate.AddMonths(i),
			Amount:  installmentAmount,
			Paid:    false,
		})
	}

	return loan, nil
}

// RecordPayment marks one installment of the loan as paid and recomputes
// the loan's derived status. The input aggregate is left untouched; the
// updated copy is returned.
//
// Paying an already-settled installment fails with ALREADY_PAID rather than
// silently resetting its payment date, so a payment applies at most once.
func (e *Engine) RecordPayment(loan *domain.Loan, installmentID uuid.UUID) (*domain.Loan, error) {
	updated := loan.Clone()

	ins := updated.FindInstallment(installmentID)
	if ins == nil {
		return nil, fundErrors.WrapInstallmentNotFound(installmentID)
	}
	if ins.Paid {
		return nil, fundErrors.WrapAlreadyPaid(installmentID)
	}

	paidAt := e.now()
	ins.Paid = true
	ins.PaymentDate = &paidAt

	if updated.AllPaid() {
		updated.Status = domain.LoanStatusCompleted
	} else {
		updated.Status = domain.LoanStatusActive
	}

	return updated, nil
}
