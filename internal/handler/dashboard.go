package handler

import (
	"context"
	"net/http"

	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/pkg/response"
)

type DashboardService interface {
	GetStats(ctx context.Context) (*domain.FundStats, error)
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetStats handles GET /api/v1/dashboard
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, stats)
}
