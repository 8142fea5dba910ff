package models

type MaintenanceType string

const (
	MaintenanceOilChange         MaintenanceType = "Oil Change"
	MaintenanceTireRotation      MaintenanceType = "Tire Rotation"
	MaintenanceBrakeService      MaintenanceType = "Brake Service"
	MaintenanceEngineService     MaintenanceType = "Engine Service"
	MaintenanceTransmission      MaintenanceType = "Transmission Service"
	MaintenanceGeneralInspection MaintenanceType = "General Inspection"
	MaintenanceOther             MaintenanceType = "Other"
)

// MaintenanceFields holds a service entry as supplied by a caller.
type MaintenanceFields struct {
	VehicleID     string          `json:"vehicleId" validate:"required"`
	Date          Date            `json:"date" validate:"required"`
	Type          MaintenanceType `json:"type" validate:"required,oneof='Oil Change' 'Tire Rotation' 'Brake Service' 'Engine Service' 'Transmission Service' 'General Inspection' 'Other'"`
	Description   string          `json:"description" validate:"required"`
	ServiceCenter string          `json:"serviceCenter" validate:"required"`
	Cost          float64         `json:"cost" validate:"min=0"`
	NextDueDate   Date            `json:"nextDueDate" validate:"required"`
}

type MaintenanceRecord struct {
	ID string `json:"id"`
	MaintenanceFields
}
