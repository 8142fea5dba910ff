package services

import (
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"

	"github.com/sirupsen/logrus"
)

type VehicleService struct {
	store *repository.Store
	log   logrus.FieldLogger
}

func NewVehicleService(store *repository.Store, log logrus.FieldLogger) *VehicleService {
	return &VehicleService{
		store: store,
		log:   log.WithField("service", "vehicles"),
	}
}

// Now reads the store clock.
func (s *VehicleService) Now() time.Time {
	return s.store.Now()
}

type CreateVehicleRequest struct {
	models.VehicleFields
}

// UpdateVehicleRequest replaces every editable field. The id comes from the
// path and the added date is kept by the store.
type UpdateVehicleRequest struct {
	models.VehicleFields
}

func (s *VehicleService) ListVehicles(filter repository.VehicleFilter) []models.Vehicle {
	return s.store.ListVehicles(filter)
}

func (s *VehicleService) GetVehicle(id string) (models.Vehicle, error) {
	vehicle, ok := s.store.GetVehicleByID(id)
	if !ok {
		return models.Vehicle{}, repository.ErrVehicleNotFound
	}
	return vehicle, nil
}

// GetVehicleDetails returns the vehicle with its service history, most recent
// first, and the total spent on it.
func (s *VehicleService) GetVehicleDetails(id string) (models.VehicleDetails, error) {
	vehicle, err := s.GetVehicle(id)
	if err != nil {
		return models.VehicleDetails{}, err
	}

	records := s.store.GetMaintenanceRecordsByVehicle(id)
	repository.SortRecordsByDateDesc(records)

	now := s.store.Now()
	details := models.VehicleDetails{
		Vehicle:     vehicle,
		Maintenance: make([]models.MaintenanceRecordView, 0, len(records)),
	}
	for _, r := range records {
		details.Maintenance = append(details.Maintenance, models.MaintenanceRecordView{
			MaintenanceRecord: r,
			VehicleName:       vehicle.DisplayName(),
			Overdue:           repository.IsOverdue(r, now),
		})
		details.TotalMaintenanceCost += r.Cost
	}
	return details, nil
}

// GetVehicleMaintenance lists the vehicle's records in the order they were
// added.
func (s *VehicleService) GetVehicleMaintenance(id string) ([]models.MaintenanceRecord, error) {
	if _, err := s.GetVehicle(id); err != nil {
		return nil, err
	}
	return s.store.GetMaintenanceRecordsByVehicle(id), nil
}

func (s *VehicleService) CreateVehicle(req *CreateVehicleRequest) (models.Vehicle, error) {
	vehicle, err := s.store.AddVehicle(req.VehicleFields)
	if err != nil {
		return models.Vehicle{}, err
	}

	s.log.WithFields(logrus.Fields{"vehicle_id": vehicle.ID, "vehicle": vehicle.DisplayName()}).Info("Vehicle created")
	return vehicle, nil
}

func (s *VehicleService) UpdateVehicle(id string, req *UpdateVehicleRequest) (models.Vehicle, error) {
	vehicle, err := s.store.UpdateVehicle(models.Vehicle{
		ID:            id,
		VehicleFields: req.VehicleFields,
	})
	if err != nil {
		return models.Vehicle{}, err
	}

	s.log.WithField("vehicle_id", id).Info("Vehicle updated")
	return vehicle, nil
}

// DeleteVehicle removes the vehicle with its maintenance history and
// reports whether anything was removed.
func (s *VehicleService) DeleteVehicle(id string) bool {
	deleted := s.store.DeleteVehicle(id)
	if deleted {
		s.log.WithField("vehicle_id", id).Info("Vehicle deleted")
	}
	return deleted
}

// GetOptions lists the brands and model years present in the fleet.
func (s *VehicleService) GetOptions() models.VehicleOptions {
	return models.VehicleOptions{
		Brands: s.store.Brands(),
		Years:  s.store.Years(),
	}
}
