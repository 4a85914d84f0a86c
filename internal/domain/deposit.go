package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deposit is one entry in the fund's contribution ledger.
type Deposit struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	MemberID    uuid.UUID       `json:"memberId" db:"member_id"`
	MemberName  string          `json:"memberName" db:"member_name"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate Date            `json:"paymentDate" db:"payment_date"`
	EntryDate   Date            `json:"entryDate" db:"entry_date"`
	Notes       string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"-" db:"created_at"`
}

type CreateDepositRequest struct {
	MemberID    string          `json:"memberId" validate:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentDate string          `json:"paymentDate" validate:"required"`
	Notes       string          `json:"notes"`
}
