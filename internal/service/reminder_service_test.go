package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/tests/mocks"
)

func TestFlagOverdueInstallments(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	asOf := domain.NewDate(2024, time.June, 1)

	overdue := []*domain.OverdueInstallment{
		{LoanID: uuid.New(), MemberID: uuid.New(), MemberName: "Asif Khan", Seq: 2, DueDate: domain.NewDate(2024, time.May, 15), Amount: decimal.NewFromInt(700)},
		{LoanID: uuid.New(), MemberID: uuid.New(), MemberName: "Sana Tariq", Seq: 1, DueDate: domain.NewDate(2024, time.May, 20), Amount: decimal.NewFromInt(500)},
	}
	mockLoanRepo.On("ListOverdue", mock.Anything, asOf).Return(overdue, nil)

	service := NewReminderService(mockLoanRepo, nil, nil)

	got, err := service.FlagOverdueInstallments(context.Background(), asOf)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	mockLoanRepo.AssertExpectations(t)
}

func TestSendPaymentReminders(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	asOf := domain.NewDate(2024, time.June, 1)

	upcoming := []*domain.OverdueInstallment{
		{LoanID: uuid.New(), MemberID: uuid.New(), MemberName: "Asif Khan", Seq: 3, DueDate: domain.NewDate(2024, time.June, 3), Amount: decimal.NewFromInt(700)},
	}
	mockLoanRepo.On("ListDueWithin", mock.Anything, asOf, 3).Return(upcoming, nil)

	service := NewReminderService(mockLoanRepo, nil, nil)

	got, err := service.SendPaymentReminders(context.Background(), asOf, 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	mockLoanRepo.AssertExpectations(t)
}
