package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/pkg/response"
)

// LoanService is the slice of the loan service this handler consumes.
type LoanService interface {
	IssueLoan(ctx context.Context, req *domain.IssueLoanRequest) (*domain.Loan, error)
	RecordPayment(ctx context.Context, loanID, installmentID uuid.UUID) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	ListLoans(ctx context.Context, memberID *uuid.UUID) ([]*domain.Loan, error)
}

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: newValidator(),
	}
}

// IssueLoan handles POST /api/v1/loans
func (h *LoanHandler) IssueLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", "")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err.Error(), "")
		return
	}

	loan, err := h.service.IssueLoan(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, loan)
}

// ListLoans handles GET /api/v1/loans[?memberId=...]
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var memberID *uuid.UUID
	if raw := r.URL.Query().Get("memberId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "memberId must be a valid UUID", "")
			return
		}
		memberID = &id
	}

	loans, err := h.service.ListLoans(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "loanId must be a valid UUID", "")
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

// PayInstallment handles POST /api/v1/loans/{loanId}/installments/{installmentId}/pay
func (h *LoanHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	loanID, err := uuid.Parse(vars["loanId"])
	if err != nil {
		response.BadRequest(w, "loanId must be a valid UUID", "")
		return
	}
	installmentID, err := uuid.Parse(vars["installmentId"])
	if err != nil {
		response.BadRequest(w, "installmentId must be a valid UUID", "")
		return
	}

	loan, err := h.service.RecordPayment(r.Context(), loanID, installmentID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}
