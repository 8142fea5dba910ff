package repository

import (
	"fmt"

	"fleet-dashboard/internal/models"

	"github.com/sirupsen/logrus"
)

// AddVehicle stores a new vehicle with a fresh id and today's date.
// Registration numbers are not required to be unique.
func (s *Store) AddVehicle(fields models.VehicleFields) (models.Vehicle, error) {
	if !fields.Status.Valid() {
		return models.Vehicle{}, fmt.Errorf("%w: %q", ErrInvalidVehicleStatus, fields.Status)
	}

	s.mu.Lock()
	vehicle := models.Vehicle{
		ID:            s.vehicleSeq.next(),
		VehicleFields: fields,
		AddedDate:     models.DateOf(s.now()),
	}
	s.vehicles = append(s.vehicles, vehicle)
	stats := s.recompute()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"vehicle_id": vehicle.ID, "registration_no": vehicle.RegistrationNo}).Debug("Vehicle added")
	s.notify(ChangeEvent{
		Kind:     VehicleAdded,
		EntityID: vehicle.ID,
		Notification: &models.Notification{
			Title:       "Car Added",
			Description: "Successfully added " + vehicle.DisplayName(),
		},
		Stats: stats,
	})

	return vehicle, nil
}

// UpdateVehicle replaces the stored vehicle with the same id. The stored id
// and added date always win over the supplied ones.
func (s *Store) UpdateVehicle(vehicle models.Vehicle) (models.Vehicle, error) {
	if !vehicle.Status.Valid() {
		return models.Vehicle{}, fmt.Errorf("%w: %q", ErrInvalidVehicleStatus, vehicle.Status)
	}

	s.mu.Lock()
	idx := s.vehicleIndex(vehicle.ID)
	if idx < 0 {
		s.mu.Unlock()
		return models.Vehicle{}, ErrVehicleNotFound
	}
	vehicle.AddedDate = s.vehicles[idx].AddedDate
	s.vehicles[idx] = vehicle
	stats := s.recompute()
	s.mu.Unlock()

	s.log.WithField("vehicle_id", vehicle.ID).Debug("Vehicle updated")
	s.notify(ChangeEvent{
		Kind:     VehicleUpdated,
		EntityID: vehicle.ID,
		Notification: &models.Notification{
			Title:       "Car Updated",
			Description: "Successfully updated " + vehicle.DisplayName(),
		},
		Stats: stats,
	})

	return vehicle, nil
}

// DeleteVehicle removes the vehicle and all of its maintenance records in
// one step. Deleting an unknown id changes nothing and reports false.
func (s *Store) DeleteVehicle(id string) bool {
	s.mu.Lock()
	idx := s.vehicleIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	deleted := s.vehicles[idx]
	s.vehicles = append(s.vehicles[:idx:idx], s.vehicles[idx+1:]...)

	kept := make([]models.MaintenanceRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.VehicleID != id {
			kept = append(kept, r)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	stats := s.recompute()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"vehicle_id": id, "records_removed": removed}).Debug("Vehicle deleted")
	s.notify(ChangeEvent{
		Kind:     VehicleDeleted,
		EntityID: id,
		Notification: &models.Notification{
			Title:       "Car Deleted",
			Description: "Successfully deleted " + deleted.DisplayName(),
		},
		Stats: stats,
	})

	return true
}

func (s *Store) GetVehicleByID(id string) (models.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.vehicleIndex(id); idx >= 0 {
		return s.vehicles[idx], true
	}
	return models.Vehicle{}, false
}

func (s *Store) vehicleIndex(id string) int {
	for i, v := range s.vehicles {
		if v.ID == id {
			return i
		}
	}
	return -1
}
