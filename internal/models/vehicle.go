package models

type VehicleStatus string

const (
	StatusAvailable        VehicleStatus = "Available"
	StatusUnderMaintenance VehicleStatus = "Under Maintenance"
	StatusSold             VehicleStatus = "Sold"
)

// VehicleStatuses lists every status in display order.
var VehicleStatuses = []VehicleStatus{StatusAvailable, StatusUnderMaintenance, StatusSold}

func (s VehicleStatus) Valid() bool {
	for _, status := range VehicleStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type FuelType string

const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelHybrid   FuelType = "Hybrid"
	FuelCNG      FuelType = "CNG"
)

type Transmission string

const (
	TransmissionManual    Transmission = "Manual"
	TransmissionAutomatic Transmission = "Automatic"
	TransmissionCVT       Transmission = "CVT"
	TransmissionDCT       Transmission = "DCT"
)

// VehicleFields holds everything about a vehicle that a caller supplies.
// The store assigns ID and AddedDate.
type VehicleFields struct {
	Brand          string        `json:"brand" validate:"required"`
	Model          string        `json:"model" validate:"required"`
	Year           int           `json:"year" validate:"required,vehicleyear"`
	EngineNo       string        `json:"engineNo" validate:"required"`
	RegistrationNo string        `json:"registrationNo" validate:"required"`
	FuelType       FuelType      `json:"fuelType" validate:"required,oneof=Petrol Diesel Electric Hybrid CNG"`
	Transmission   Transmission  `json:"transmission" validate:"required,oneof=Manual Automatic CVT DCT"`
	Seating        int           `json:"seating" validate:"required,min=1"`
	Status         VehicleStatus `json:"status" validate:"required,oneof='Available' 'Under Maintenance' 'Sold'"`
	Image          string        `json:"image,omitempty" validate:"omitempty,url"`
}

type Vehicle struct {
	ID string `json:"id"`
	VehicleFields
	AddedDate Date `json:"addedDate"`
}

// DisplayName is the "Brand Model" label used in notifications and reports.
func (v Vehicle) DisplayName() string {
	return v.Brand + " " + v.Model
}
