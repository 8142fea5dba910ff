package handlers

import (
	"net/http"
	"strconv"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/services"
	"fleet-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type VehicleHandler struct {
	vehicleService *services.VehicleService
	validator      *validator.Validate
}

func NewVehicleHandler(vehicleService *services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		validator:      newValidator(vehicleService.Now),
	}
}

// GetVehicles lists vehicles matching the search, status, year and brand
// query parameters.
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	filter := repository.VehicleFilter{
		Search: c.Query("search"),
		Status: models.VehicleStatus(c.Query("status")),
		Brand:  c.Query("brand"),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid status filter", repository.ErrInvalidVehicleStatus)
		return
	}

	if year := c.Query("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid year filter", err)
			return
		}
		filter.Year = y
	}

	vehicles := h.vehicleService.ListVehicles(filter)
	utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
}

// GetVehicle returns a vehicle with its service history
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	details, err := h.vehicleService.GetVehicleDetails(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, serviceErrorStatus(err), "Vehicle not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", details)
}

// GetVehicleMaintenance lists the maintenance records of one vehicle
func (h *VehicleHandler) GetVehicleMaintenance(c *gin.Context) {
	records, err := h.vehicleService.GetVehicleMaintenance(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, serviceErrorStatus(err), "Vehicle not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance records retrieved successfully", records)
}

// GetOptions returns the brands and years used by the list filters
func (h *VehicleHandler) GetOptions(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Vehicle options retrieved successfully", h.vehicleService.GetOptions())
}

// CreateVehicle creates a new vehicle
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(&req)
	if err != nil {
		utils.ErrorResponse(c, serviceErrorStatus(err), "Failed to create vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Vehicle created successfully", vehicle)
}

// UpdateVehicle replaces the editable fields of an existing vehicle
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var req services.UpdateVehicleRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Param("id"), &req)
	if err != nil {
		utils.ErrorResponse(c, serviceErrorStatus(err), "Failed to update vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", vehicle)
}

// DeleteVehicle removes a vehicle and its maintenance history. Deleting an
// unknown id succeeds with deleted set to false.
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	deleted := h.vehicleService.DeleteVehicle(c.Param("id"))
	utils.SuccessResponse(c, http.StatusOK, "Vehicle deleted successfully", gin.H{"deleted": deleted})
}
