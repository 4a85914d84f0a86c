package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/pkg/response"
)

type DepositService interface {
	CreateDeposit(ctx context.Context, req *domain.CreateDepositRequest) (*domain.Deposit, error)
	ListDeposits(ctx context.Context, memberID *uuid.UUID) ([]*domain.Deposit, error)
}

type DepositHandler struct {
	service   DepositService
	validator *validator.Validate
}

func NewDepositHandler(service DepositService) *DepositHandler {
	return &DepositHandler{
		service:   service,
		validator: newValidator(),
	}
}

// CreateDeposit handles POST /api/v1/deposits
func (h *DepositHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", "")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err.Error(), "")
		return
	}

	deposit, err := h.service.CreateDeposit(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, deposit)
}

// ListDeposits handles GET /api/v1/deposits[?memberId=...]
func (h *DepositHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	var memberID *uuid.UUID
	if raw := r.URL.Query().Get("memberId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "memberId must be a valid UUID", "")
			return
		}
		memberID = &id
	}

	deposits, err := h.service.ListDeposits(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, deposits)
}
