package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrInvalidAmount        = errors.New("invalid loan amount")
	ErrInvalidTerm          = errors.New("invalid loan term")
	ErrInvalidDate          = errors.New("invalid issue date")
	ErrInvalidMember        = errors.New("invalid member reference")
	ErrMemberNotApproved    = errors.New("member is not approved")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrInstallmentNotFound  = errors.New("installment not found")
	ErrInstallmentPaid      = errors.New("installment already paid")
	ErrInvalidDepositAmount = errors.New("invalid deposit amount")
)

// BusinessError carries a machine-readable code alongside a human message.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidTerm          = "INVALID_TERM"
	ErrCodeInvalidDate          = "INVALID_DATE"
	ErrCodeInvalidMember        = "INVALID_MEMBER"
	ErrCodeMemberNotApproved    = "MEMBER_NOT_APPROVED"
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeInstallmentNotFound  = "INSTALLMENT_NOT_FOUND"
	ErrCodeAlreadyPaid          = "ALREADY_PAID"
	ErrCodeInvalidDepositAmount = "INVALID_DEPOSIT_AMOUNT"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Loan amount %s must be a positive number", amount),
		ErrInvalidAmount,
	)
}

func WrapInvalidTerm(termMonths int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTerm,
		fmt.Sprintf("Loan term of %d months must be at least 1", termMonths),
		ErrInvalidTerm,
	)
}

func WrapInvalidDate(raw string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDate,
		fmt.Sprintf("Issue date %q is not a valid calendar date", raw),
		ErrInvalidDate,
	)
}

func WrapInvalidMember(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidMember,
		fmt.Sprintf("Member %s cannot be resolved", memberID),
		ErrInvalidMember,
	)
}

func WrapMemberNotApproved(memberID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotApproved,
		fmt.Sprintf("Member %s is not approved to receive loans", memberID),
		ErrMemberNotApproved,
	)
}

func WrapLoanNotFound(loanID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInstallmentNotFound(installmentID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %s does not belong to this loan", installmentID),
		ErrInstallmentNotFound,
	)
}

func WrapAlreadyPaid(installmentID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyPaid,
		fmt.Sprintf("Installment %s is already settled", installmentID),
		ErrInstallmentPaid,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}

// CodeOf extracts the business error code, or empty string for plain errors.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
