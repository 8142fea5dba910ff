package handlers

import (
	"net/http"

	"fleet-dashboard/internal/services"
	"fleet-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	reportService    *services.ReportService
}

func NewDashboardHandler(dashboardService *services.DashboardService, reportService *services.ReportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		reportService:    reportService,
	}
}

// GetDashboard returns the fleet counters and the most recently added
// vehicles
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard := h.dashboardService.GetDashboard(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

// RefreshStatistics recounts upcoming and overdue maintenance against today
func (h *DashboardHandler) RefreshStatistics(c *gin.Context) {
	stats := h.dashboardService.RefreshStatistics()
	utils.SuccessResponse(c, http.StatusOK, "Statistics refreshed successfully", stats)
}

func (h *DashboardHandler) GetReports(c *gin.Context) {
	report := h.reportService.GetReport(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Reports retrieved successfully", report)
}
