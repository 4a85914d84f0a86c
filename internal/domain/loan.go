package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "ACTIVE"
	LoanStatusCompleted = "COMPLETED"
)

// Loan is the aggregate root for one emergency loan: the 70/30 split of the
// requested principal plus the fixed monthly installment schedule that
// collects the recoverable portion back.
type Loan struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	MemberID          uuid.UUID       `json:"memberId" db:"member_id"`
	MemberName        string          `json:"memberName" db:"member_name"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	RecoverableAmount decimal.Decimal `json:"recoverableAmount" db:"recoverable_amount"`
	WaiverAmount      decimal.Decimal `json:"waiverAmount" db:"waiver_amount"`
	IssueDate         Date            `json:"issueDate" db:"issue_date"`
	TermMonths        int             `json:"termMonths" db:"term_months"`
	Status            string          `json:"status" db:"status"`
	Installments      []*Installment  `json:"installments" db:"-"`
	CreatedAt         time.Time       `json:"-" db:"created_at"`
	UpdatedAt         time.Time       `json:"-" db:"updated_at"`
}

// Installment is one scheduled partial repayment of the recoverable amount.
// It is owned by exactly one loan and mutates only its paid fields.
type Installment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      uuid.UUID       `json:"-" db:"loan_id"`
	Seq         int             `json:"-" db:"seq"`
	DueDate     Date            `json:"dueDate" db:"due_date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Paid        bool            `json:"paid" db:"paid"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty" db:"payment_date"`
}

// AllPaid reports whether every installment of the loan is settled.
func (l *Loan) AllPaid() bool {
	for _, ins := range l.Installments {
		if !ins.Paid {
			return false
		}
	}
	return true
}

// FindInstallment locates an installment by id, or nil.
func (l *Loan) FindInstallment(id uuid.UUID) *Installment {
	for _, ins := range l.Installments {
		if ins.ID == id {
			return ins
		}
	}
	return nil
}

// Clone deep-copies the loan and its installments.
func (l *Loan) Clone() *Loan {
	cp := *l
	cp.Installments = make([]*Installment, len(l.Installments))
	for i, ins := range l.Installments {
		insCopy := *ins
		if ins.PaymentDate != nil {
			t := *ins.PaymentDate
			insCopy.PaymentDate = &t
		}
		cp.Installments[i] = &insCopy
	}
	return &cp
}

// DTOs for requests and responses

type IssueLoanRequest struct {
	MemberID    string          `json:"memberId" validate:"required,uuid"`
	TotalAmount decimal.Decimal `json:"totalAmount" validate:"required,gt=0"`
	TermMonths  int             `json:"termMonths" validate:"required,gt=0"`
	IssueDate   string          `json:"issueDate" validate:"required"`
}

// OverdueInstallment is a reporting view used by the scheduler sweep.
type OverdueInstallment struct {
	LoanID     uuid.UUID       `json:"loanId" db:"loan_id"`
	MemberID   uuid.UUID       `json:"memberId" db:"member_id"`
	MemberName string          `json:"memberName" db:"member_name"`
	Seq        int             `json:"seq" db:"seq"`
	DueDate    Date            `json:"dueDate" db:"due_date"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
}

// LoanTotals aggregates issued loan figures for the dashboard.
type LoanTotals struct {
	Issued    decimal.Decimal `db:"issued"`
	Waivers   decimal.Decimal `db:"waivers"`
	Recovered decimal.Decimal `db:"recovered"`
}

// FundStats is the dashboard aggregate over the whole fund.
type FundStats struct {
	TotalDeposits    decimal.Decimal `json:"totalDeposits"`
	TotalLoansIssued decimal.Decimal `json:"totalLoansIssued"`
	TotalRecoveries  decimal.Decimal `json:"totalRecoveries"`
	TotalWaivers     decimal.Decimal `json:"totalWaivers"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	TotalMembers     int             `json:"totalMembers"`
}
