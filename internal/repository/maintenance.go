package repository

import (
	"fleet-dashboard/internal/models"

	"github.com/sirupsen/logrus"
)

// AddMaintenanceRecord stores a new record under a fresh id. The owning
// vehicle is not checked here.
func (s *Store) AddMaintenanceRecord(fields models.MaintenanceFields) models.MaintenanceRecord {
	s.mu.Lock()
	record := models.MaintenanceRecord{
		ID:                s.recordSeq.next(),
		MaintenanceFields: fields,
	}
	s.records = append(s.records, record)
	stats := s.recompute()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"record_id": record.ID, "vehicle_id": record.VehicleID}).Debug("Maintenance record added")
	s.notify(ChangeEvent{
		Kind:     MaintenanceRecordAdded,
		EntityID: record.ID,
		Notification: &models.Notification{
			Title:       "Maintenance Record Added",
			Description: "Successfully added maintenance record",
		},
		Stats: stats,
	})

	return record
}

func (s *Store) UpdateMaintenanceRecord(record models.MaintenanceRecord) (models.MaintenanceRecord, error) {
	s.mu.Lock()
	idx := s.recordIndex(record.ID)
	if idx < 0 {
		s.mu.Unlock()
		return models.MaintenanceRecord{}, ErrMaintenanceRecordNotFound
	}
	s.records[idx] = record
	stats := s.recompute()
	s.mu.Unlock()

	s.log.WithField("record_id", record.ID).Debug("Maintenance record updated")
	s.notify(ChangeEvent{
		Kind:     MaintenanceRecordUpdated,
		EntityID: record.ID,
		Notification: &models.Notification{
			Title:       "Maintenance Record Updated",
			Description: "Successfully updated maintenance record",
		},
		Stats: stats,
	})

	return record, nil
}

// DeleteMaintenanceRecord removes the record if present and reports whether
// anything was removed.
func (s *Store) DeleteMaintenanceRecord(id string) bool {
	s.mu.Lock()
	idx := s.recordIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	stats := s.recompute()
	s.mu.Unlock()

	s.log.WithField("record_id", id).Debug("Maintenance record deleted")
	s.notify(ChangeEvent{
		Kind:     MaintenanceRecordDeleted,
		EntityID: id,
		Notification: &models.Notification{
			Title:       "Maintenance Record Deleted",
			Description: "Successfully deleted maintenance record",
		},
		Stats: stats,
	})

	return true
}

func (s *Store) GetMaintenanceRecordByID(id string) (models.MaintenanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.recordIndex(id); idx >= 0 {
		return s.records[idx], true
	}
	return models.MaintenanceRecord{}, false
}

// GetMaintenanceRecordsByVehicle returns the vehicle's records in insertion
// order. Unknown vehicles yield an empty slice.
func (s *Store) GetMaintenanceRecordsByVehicle(vehicleID string) []models.MaintenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []models.MaintenanceRecord{}
	for _, r := range s.records {
		if r.VehicleID == vehicleID {
			records = append(records, r)
		}
	}
	return records
}

func (s *Store) recordIndex(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
