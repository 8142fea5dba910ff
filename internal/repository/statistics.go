package repository

import (
	"time"

	"fleet-dashboard/internal/models"
)

// UpcomingWindow is how far ahead a due date counts as upcoming.
const UpcomingWindow = 30 * 24 * time.Hour

// ComputeStatistics derives the dashboard counts from the collections.
// A record is upcoming when now < due <= now+UpcomingWindow and overdue when
// due < now. A due date exactly equal to now is neither.
func ComputeStatistics(vehicles []models.Vehicle, records []models.MaintenanceRecord, now time.Time) models.DashboardStats {
	stats := models.DashboardStats{
		TotalCars: len(vehicles),
	}

	for _, v := range vehicles {
		switch v.Status {
		case models.StatusAvailable:
			stats.AvailableCars++
		case models.StatusUnderMaintenance:
			stats.UnderMaintenanceCars++
		case models.StatusSold:
			stats.SoldCars++
		}
	}

	horizon := now.Add(UpcomingWindow)
	for _, r := range records {
		due := r.NextDueDate.Time
		switch {
		case due.After(now) && !due.After(horizon):
			stats.UpcomingMaintenances++
		case due.Before(now):
			stats.OverdueMaintenances++
		}
	}

	return stats
}

// IsOverdue reports whether a record's next due date has passed.
func IsOverdue(r models.MaintenanceRecord, now time.Time) bool {
	return r.NextDueDate.Before(now)
}
