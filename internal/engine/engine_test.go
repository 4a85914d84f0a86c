package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funters/fund-engine/internal/domain"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func issueInput(total int64, termMonths int, issueDate domain.Date) IssueLoanInput {
	return IssueLoanInput{
		MemberID:    uuid.New(),
		MemberName:  "Asif Khan",
		TotalAmount: decimal.NewFromInt(total),
		TermMonths:  termMonths,
		IssueDate:   issueDate,
	}
}

func TestIssueLoan_SplitAndSchedule(t *testing.T) {
	e := New()

	loan, err := e.IssueLoan(issueInput(10000, 10, domain.NewDate(2024, time.January, 15)))
	require.NoError(t, err)

	assert.True(t, loan.RecoverableAmount.Equal(decimal.NewFromInt(7000)),
		"recoverable = %s", loan.RecoverableAmount)
	assert.True(t, loan.WaiverAmount.Equal(decimal.NewFromInt(3000)),
		"waiver = %s", loan.WaiverAmount)
	assert.True(t, loan.RecoverableAmount.Add(loan.WaiverAmount).Equal(loan.TotalAmount))
	assert.Equal(t, domain.LoanStatusActive, loan.Status)

	require.Len(t, loan.Installments, 10)
	for i, ins := range loan.Installments {
		assert.True(t, ins.Amount.Equal(decimal.NewFromInt(700)), "installment %d amount = %s", i+1, ins.Amount)
		assert.False(t, ins.Paid)
		assert.Nil(t, ins.PaymentDate)
		assert.Equal(t, i+1, ins.Seq)
		assert.Equal(t, loan.ID, ins.LoanID)

		wantDue := domain.NewDate(2024, time.Month(1+i+1), 15)
		assert.Equal(t, wantDue.String(), ins.DueDate.String(), "installment %d due date", i+1)
	}
	assert.Equal(t, "2024-11-15", loan.Installments[9].DueDate.String())
}

func TestIssueLoan_RoundingResidual(t *testing.T) {
	// 70 / 6 rounds half-up to 12, so the schedule collects 72 against a
	// recoverable 70. The 2-unit residual is not reconciled.
	e := New()

	loan, err := e.IssueLoan(issueInput(100, 6, domain.NewDate(2024, time.March, 1)))
	require.NoError(t, err)

	assert.True(t, loan.RecoverableAmount.Equal(decimal.NewFromInt(70)))

	scheduled := decimal.Zero
	for _, ins := range loan.Installments {
		assert.True(t, ins.Amount.Equal(decimal.NewFromInt(12)), "installment amount = %s", ins.Amount)
		scheduled = scheduled.Add(ins.Amount)
	}
	assert.True(t, scheduled.Equal(decimal.NewFromInt(72)), "scheduled total = %s", scheduled)
}

func TestIssueLoan_MonthEndClamping(t *testing.T) {
	e := New()

	tests := []struct {
		name      string
		issueDate domain.Date
		term      int
		wantDue   []string
	}{
		{
			name:      "leap year February",
			issueDate: domain.NewDate(2024, time.January, 31),
			term:      1,
			wantDue:   []string{"2024-02-29"},
		},
		{
			name:      "non-leap February",
			issueDate: domain.NewDate(2023, time.January, 31),
			term:      1,
			wantDue:   []string{"2023-02-28"},
		},
		{
			name:      "clamp then recover on longer months",
			issueDate: domain.NewDate(2024, time.January, 31),
			term:      3,
			wantDue:   []string{"2024-02-29", "2024-03-31", "2024-04-30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan, err := e.IssueLoan(issueInput(6000, tt.term, tt.issueDate))
			require.NoError(t, err)
			require.Len(t, loan.Installments, tt.term)
			for i, want := range tt.wantDue {
				assert.Equal(t, want, loan.Installments[i].DueDate.String())
			}
		})
	}
}

func TestIssueLoan_Validation(t *testing.T) {
	e := New()
	issueDate := domain.NewDate(2024, time.January, 15)

	tests := []struct {
		name    string
		input   IssueLoanInput
		wantErr error
	}{
		{
			name: "negative amount",
			input: IssueLoanInput{
				MemberID:    uuid.New(),
				TotalAmount: decimal.NewFromInt(-5),
				TermMonths:  6,
				IssueDate:   issueDate,
			},
			wantErr: fundErrors.ErrInvalidAmount,
		},
		{
			name: "zero amount",
			input: IssueLoanInput{
				MemberID:    uuid.New(),
				TotalAmount: decimal.Zero,
				TermMonths:  6,
				IssueDate:   issueDate,
			},
			wantErr: fundErrors.ErrInvalidAmount,
		},
		{
			name: "zero term",
			input: IssueLoanInput{
				MemberID:    uuid.New(),
				TotalAmount: decimal.NewFromInt(1000),
				TermMonths:  0,
				IssueDate:   issueDate,
			},
			wantErr: fundErrors.ErrInvalidTerm,
		},
		{
			name: "missing issue date",
			input: IssueLoanInput{
				MemberID:    uuid.New(),
				TotalAmount: decimal.NewFromInt(1000),
				TermMonths:  6,
			},
			wantErr: fundErrors.ErrInvalidDate,
		},
		{
			name: "nil member reference",
			input: IssueLoanInput{
				TotalAmount: decimal.NewFromInt(1000),
				TermMonths:  6,
				IssueDate:   issueDate,
			},
			wantErr: fundErrors.ErrInvalidMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan, err := e.IssueLoan(tt.input)
			assert.Nil(t, loan)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordPayment_CompletionTransition(t *testing.T) {
	paidAt := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	e := NewWithClock(fixedClock(paidAt))

	loan, err := e.IssueLoan(issueInput(100, 6, domain.NewDate(2024, time.March, 1)))
	require.NoError(t, err)

	// Pay all but the last: status must stay ACTIVE throughout.
	current := loan
	for i := 0; i < 5; i++ {
		current, err = e.RecordPayment(current, current.Installments[i].ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LoanStatusActive, current.Status, "after %d payments", i+1)
	}

	current, err = e.RecordPayment(current, current.Installments[5].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusCompleted, current.Status)

	for _, ins := range current.Installments {
		assert.True(t, ins.Paid)
		require.NotNil(t, ins.PaymentDate)
		assert.Equal(t, paidAt, *ins.PaymentDate)
	}
}

func TestRecordPayment_AlreadyPaid(t *testing.T) {
	e := New()

	loan, err := e.IssueLoan(issueInput(1200, 6, domain.NewDate(2024, time.May, 10)))
	require.NoError(t, err)

	target := loan.Installments[2].ID

	paid, err := e.RecordPayment(loan, target)
	require.NoError(t, err)

	again, err := e.RecordPayment(paid, target)
	assert.Nil(t, again)
	assert.ErrorIs(t, err, fundErrors.ErrInstallmentPaid)

	// The first payment's date must survive the rejected retry.
	assert.NotNil(t, paid.FindInstallment(target).PaymentDate)
}

func TestRecordPayment_InstallmentNotFound(t *testing.T) {
	e := New()

	loan, err := e.IssueLoan(issueInput(1200, 6, domain.NewDate(2024, time.May, 10)))
	require.NoError(t, err)

	updated, err := e.RecordPayment(loan, uuid.New())
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, fundErrors.ErrInstallmentNotFound)
}

func TestRecordPayment_DoesNotMutateInput(t *testing.T) {
	e := New()

	loan, err := e.IssueLoan(issueInput(1000, 6, domain.NewDate(2024, time.April, 1)))
	require.NoError(t, err)

	updated, err := e.RecordPayment(loan, loan.Installments[0].ID)
	require.NoError(t, err)

	assert.False(t, loan.Installments[0].Paid, "input aggregate must stay untouched")
	assert.Nil(t, loan.Installments[0].PaymentDate)
	assert.True(t, updated.Installments[0].Paid)
}

func TestCompletedLoanStaysCompleted(t *testing.T) {
	e := New()

	loan, err := e.IssueLoan(issueInput(500, 1, domain.NewDate(2024, time.July, 1)))
	require.NoError(t, err)

	completed, err := e.RecordPayment(loan, loan.Installments[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.LoanStatusCompleted, completed.Status)

	_, err = e.RecordPayment(completed, completed.Installments[0].ID)
	assert.ErrorIs(t, err, fundErrors.ErrInstallmentPaid)
	assert.Equal(t, domain.LoanStatusCompleted, completed.Status)
}
