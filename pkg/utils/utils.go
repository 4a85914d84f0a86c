package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// The fund recovers 70% of every emergency loan through installments and
// permanently waives the remaining 30%.
var (
	RecoverableRate = decimal.NewFromFloat(0.7)
	WaiverRate      = decimal.NewFromFloat(0.3)
)

// SplitPrincipal splits a loan principal into its recoverable and waived
// portions.
func SplitPrincipal(total decimal.Decimal) (recoverable, waiver decimal.Decimal) {
	recoverable = total.Mul(RecoverableRate)
	waiver = total.Sub(recoverable)
	return recoverable, waiver
}

// CalculateInstallmentAmount calculates the uniform per-installment amount:
// recoverable / termMonths, rounded half-up to the whole currency unit.
// The rounded amount is not reconciled against the recoverable total, so
// amount * termMonths may differ from it by up to termMonths-1 units.
func CalculateInstallmentAmount(recoverable decimal.Decimal, termMonths int) decimal.Decimal {
	return recoverable.Div(decimal.NewFromInt(int64(termMonths))).Round(0)
}

// AddCalendarMonths adds n calendar months to a date, clamping the day of
// month to the target month's length (Jan 31 + 1 month is Feb 28/29, not
// Mar 3 as time.AddDate would normalize it).
func AddCalendarMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	month += time.Month(n)

	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// IsDateOverdue reports whether a due date has passed as of the given date.
func IsDateOverdue(dueDate, asOf time.Time) bool {
	return asOf.After(dueDate)
}
