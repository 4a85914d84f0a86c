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

type MemberService interface {
	Register(ctx context.Context, req *domain.RegisterMemberRequest) (*domain.Member, error)
	Approve(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	Reject(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	List(ctx context.Context) ([]*domain.Member, error)
}

type MemberHandler struct {
	service   MemberService
	validator *validator.Validate
}

func NewMemberHandler(service MemberService) *MemberHandler {
	return &MemberHandler{
		service:   service,
		validator: newValidator(),
	}
}

// Register handles POST /api/v1/members
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", "")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err.Error(), "")
		return
	}

	member, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, member)
}

// List handles GET /api/v1/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, members)
}

// Approve handles POST /api/v1/members/{memberId}/approve
func (h *MemberHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Approve)
}

// Reject handles POST /api/v1/members/{memberId}/reject
func (h *MemberHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Reject)
}

func (h *MemberHandler) setStatus(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*domain.Member, error)) {
	memberID, err := uuid.Parse(mux.Vars(r)["memberId"])
	if err != nil {
		response.BadRequest(w, "memberId must be a valid UUID", "")
		return
	}

	member, err := fn(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, member)
}
