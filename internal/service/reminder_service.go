package service

import (
	"context"
	"log/slog"

	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/internal/repository"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
	"github.com/funters/fund-engine/pkg/metrics"
)

// ReminderService backs the scheduler binary: it sweeps the installment
// schedules for entries that are overdue or coming due soon.
type ReminderService struct {
	loanRepo  repository.LoanRepository
	logger    *slog.Logger
	collector *metrics.Collector
}

func NewReminderService(loanRepo repository.LoanRepository, logger *slog.Logger, collector *metrics.Collector) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{loanRepo: loanRepo, logger: logger, collector: collector}
}

// FlagOverdueInstallments reports every unpaid installment of an active
// loan whose due date has passed as of the given date.
func (s *ReminderService) FlagOverdueInstallments(ctx context.Context, asOf domain.Date) ([]*domain.OverdueInstallment, error) {
	overdue, err := s.loanRepo.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	for _, ins := range overdue {
		s.logger.Warn("installment overdue",
			"loanId", ins.LoanID,
			"memberId", ins.MemberID,
			"memberName", ins.MemberName,
			"seq", ins.Seq,
			"dueDate", ins.DueDate.String(),
			"amount", ins.Amount,
		)
	}

	if s.collector != nil {
		s.collector.SetOverdueInstallments(len(overdue))
	}
	s.logger.Info("overdue sweep finished", "asOf", asOf.String(), "count", len(overdue))

	return overdue, nil
}

// SendPaymentReminders logs a reminder for installments due within the next
// given number of days. Delivery to members is handled by the surrounding
// operations tooling that tails these log entries.
func (s *ReminderService) SendPaymentReminders(ctx context.Context, asOf domain.Date, withinDays int) ([]*domain.OverdueInstallment, error) {
	upcoming, err := s.loanRepo.ListDueWithin(ctx, asOf, withinDays)
	if err != nil {
		return nil, fundErrors.WrapDatabaseError(err)
	}

	for _, ins := range upcoming {
		s.logger.Info("payment reminder",
			"loanId", ins.LoanID,
			"memberId", ins.MemberID,
			"memberName", ins.MemberName,
			"seq", ins.Seq,
			"dueDate", ins.DueDate.String(),
			"amount", ins.Amount,
		)
	}

	return upcoming, nil
}
