package models

import "time"

// DashboardStats is the derived summary shown on the dashboard.
type DashboardStats struct {
	TotalCars            int `json:"totalCars"`
	AvailableCars        int `json:"availableCars"`
	UnderMaintenanceCars int `json:"underMaintenanceCars"`
	SoldCars             int `json:"soldCars"`
	UpcomingMaintenances int `json:"upcomingMaintenances"`
	OverdueMaintenances  int `json:"overdueMaintenances"`
}

type Dashboard struct {
	Stats          DashboardStats `json:"stats"`
	RecentVehicles []Vehicle      `json:"recentVehicles"`
}

// VehicleDetails is a vehicle with its full service history.
type VehicleDetails struct {
	Vehicle              Vehicle                 `json:"vehicle"`
	Maintenance          []MaintenanceRecordView `json:"maintenance"`
	TotalMaintenanceCost float64                 `json:"totalMaintenanceCost"`
}

// MaintenanceRecordView decorates a record with its vehicle and due state.
type MaintenanceRecordView struct {
	MaintenanceRecord
	VehicleName string `json:"vehicleName,omitempty"`
	Overdue     bool   `json:"overdue"`
}

type VehicleOptions struct {
	Brands []string `json:"brands"`
	Years  []int    `json:"years"`
}

type DistributionEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type VehicleCost struct {
	VehicleID string  `json:"vehicleId"`
	Name      string  `json:"name"`
	Cost      float64 `json:"cost"`
}

type MonthlyMaintenance struct {
	Month string  `json:"month"`
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type MaintenanceTypeCost struct {
	Type  MaintenanceType `json:"type"`
	Count int             `json:"count"`
	Cost  float64         `json:"cost"`
}

// FleetReport aggregates the report charts over a store snapshot.
type FleetReport struct {
	StatusDistribution          []DistributionEntry   `json:"statusDistribution"`
	FuelTypeDistribution        []DistributionEntry   `json:"fuelTypeDistribution"`
	MaintenanceTypeDistribution []DistributionEntry   `json:"maintenanceTypeDistribution"`
	TopMaintenanceCostByVehicle []VehicleCost         `json:"topMaintenanceCostByVehicle"`
	MaintenanceByMonth          []MonthlyMaintenance  `json:"maintenanceByMonth"`
	VehiclesByYear              []YearCount           `json:"vehiclesByYear"`
	CostByMaintenanceType       []MaintenanceTypeCost `json:"costByMaintenanceType"`
	GeneratedAt                 time.Time             `json:"generatedAt"`
}
