// internal/handlers/dashboard.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /dashboard/ai-insights
func (h *DashboardHandler) Insights(c *gin.Context) {
	insights, err := h.dashboardService.GetInsights()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, insights)
}
