package repository

import (
	"time"

	"fleet-dashboard/internal/models"
)

type ChangeKind string

const (
	VehicleAdded             ChangeKind = "vehicle_added"
	VehicleUpdated           ChangeKind = "vehicle_updated"
	VehicleDeleted           ChangeKind = "vehicle_deleted"
	MaintenanceRecordAdded   ChangeKind = "maintenance_added"
	MaintenanceRecordUpdated ChangeKind = "maintenance_updated"
	MaintenanceRecordDeleted ChangeKind = "maintenance_deleted"
	StatisticsRefreshed      ChangeKind = "statistics_refreshed"
)

// ChangeEvent is delivered to observers after a mutation has been applied
// and the statistics recomputed.
type ChangeEvent struct {
	Kind         ChangeKind            `json:"kind"`
	EntityID     string                `json:"entityId,omitempty"`
	Notification *models.Notification  `json:"notification,omitempty"`
	Stats        models.DashboardStats `json:"stats"`
	Timestamp    time.Time             `json:"timestamp"`
}

type Observer func(ChangeEvent)
