package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

// DashboardHandler home screen metrics.
type DashboardHandler struct {
	dashboardSvc service.DashboardService
	logger       *zap.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboardSvc service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, logger: logger}
}

// Metrics GET /api/v1/dashboard
func (h *DashboardHandler) Metrics(c *gin.Context) {
	m, err := h.dashboardSvc.Metrics(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, err)
		return
	}
	response.OK(c, m)
}
