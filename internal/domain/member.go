package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MemberRoleAdmin  = "ADMIN"
	MemberRoleMember = "MEMBER"
)

const (
	MemberStatusPending  = "PENDING"
	MemberStatusApproved = "APPROVED"
	MemberStatusRejected = "REJECTED"
)

// Member is a fund participant. Only APPROVED members are eligible to
// receive loans or record deposits.
type Member struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

func (m *Member) IsApproved() bool {
	return m.Status == MemberStatusApproved
}

type RegisterMemberRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}
