package handlers

import (
	"net/http"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/services"
	"fleet-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
	validator          *validator.Validate
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		validator:          newValidator(maintenanceService.Now),
	}
}

// GetMaintenanceRecords lists records filtered by search, type and vehicleId,
// most recent service first.
func (h *MaintenanceHandler) GetMaintenanceRecords(c *gin.Context) {
	filter := repository.MaintenanceFilter{
		Search:    c.Query("search"),
		Type:      models.MaintenanceType(c.Query("type")),
		VehicleID: c.Query("vehicleId"),
	}

	records := h.maintenanceService.ListRecords(filter)
	utils.SuccessResponse(c, http.StatusOK, "Maintenance records retrieved successfully", records)
}

func (h *MaintenanceHandler) GetMaintenanceRecord(c *gin.Context) {
	record, err := h.maintenanceService.GetRecord(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, serviceErrorStatus(err), "Maintenance record not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance record retrieved successfully", record)
}

// CreateMaintenanceRecord adds a service entry to an existing vehicle
func (h *MaintenanceHandler) CreateMaintenanceRecord(c *gin.Context) {
	var req services.CreateMaintenanceRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	record, err := h.maintenanceService.CreateRecord(&req)
	if err != nil {
		utils.ErrorResponse(c, serviceErrorStatus(err), "Failed to create maintenance record", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Maintenance record created successfully", record)
}

func (h *MaintenanceHandler) UpdateMaintenanceRecord(c *gin.Context) {
	var req services.UpdateMaintenanceRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	record, err := h.maintenanceService.UpdateRecord(c.Param("id"), &req)
	if err != nil {
		utils.ErrorResponse(c, serviceErrorStatus(err), "Failed to update maintenance record", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance record updated successfully", record)
}

// DeleteMaintenanceRecord is idempotent: an unknown id answers 200 with
// deleted set to false.
func (h *MaintenanceHandler) DeleteMaintenanceRecord(c *gin.Context) {
	deleted := h.maintenanceService.DeleteRecord(c.Param("id"))
	utils.SuccessResponse(c, http.StatusOK, "Maintenance record deleted successfully", gin.H{"deleted": deleted})
}
