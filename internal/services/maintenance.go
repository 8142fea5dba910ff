package services

import (
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"

	"github.com/sirupsen/logrus"
)

type MaintenanceService struct {
	store *repository.Store
	log   logrus.FieldLogger
}

func NewMaintenanceService(store *repository.Store, log logrus.FieldLogger) *MaintenanceService {
	return &MaintenanceService{
		store: store,
		log:   log.WithField("service", "maintenance"),
	}
}

func (s *MaintenanceService) Now() time.Time {
	return s.store.Now()
}

type CreateMaintenanceRequest struct {
	models.MaintenanceFields
}

type UpdateMaintenanceRequest struct {
	models.MaintenanceFields
}

// ListRecords returns matching records, most recent service first, each with
// its vehicle name and overdue flag.
func (s *MaintenanceService) ListRecords(filter repository.MaintenanceFilter) []models.MaintenanceRecordView {
	records := s.store.ListMaintenanceRecords(filter)
	now := s.store.Now()

	views := make([]models.MaintenanceRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, s.view(r, now))
	}
	return views
}

func (s *MaintenanceService) GetRecord(id string) (models.MaintenanceRecordView, error) {
	record, ok := s.store.GetMaintenanceRecordByID(id)
	if !ok {
		return models.MaintenanceRecordView{}, repository.ErrMaintenanceRecordNotFound
	}
	return s.view(record, s.store.Now()), nil
}

// CreateRecord adds a record for an existing vehicle.
func (s *MaintenanceService) CreateRecord(req *CreateMaintenanceRequest) (models.MaintenanceRecord, error) {
	if _, ok := s.store.GetVehicleByID(req.VehicleID); !ok {
		return models.MaintenanceRecord{}, repository.ErrVehicleNotFound
	}

	record := s.store.AddMaintenanceRecord(req.MaintenanceFields)
	s.log.WithFields(logrus.Fields{"record_id": record.ID, "vehicle_id": record.VehicleID, "type": record.Type}).Info("Maintenance record created")
	return record, nil
}

func (s *MaintenanceService) UpdateRecord(id string, req *UpdateMaintenanceRequest) (models.MaintenanceRecord, error) {
	if _, ok := s.store.GetMaintenanceRecordByID(id); !ok {
		return models.MaintenanceRecord{}, repository.ErrMaintenanceRecordNotFound
	}
	if _, ok := s.store.GetVehicleByID(req.VehicleID); !ok {
		return models.MaintenanceRecord{}, repository.ErrVehicleNotFound
	}

	record, err := s.store.UpdateMaintenanceRecord(models.MaintenanceRecord{
		ID:                id,
		MaintenanceFields: req.MaintenanceFields,
	})
	if err != nil {
		return models.MaintenanceRecord{}, err
	}

	s.log.WithField("record_id", id).Info("Maintenance record updated")
	return record, nil
}

func (s *MaintenanceService) DeleteRecord(id string) bool {
	deleted := s.store.DeleteMaintenanceRecord(id)
	if deleted {
		s.log.WithField("record_id", id).Info("Maintenance record deleted")
	}
	return deleted
}

func (s *MaintenanceService) view(r models.MaintenanceRecord, now time.Time) models.MaintenanceRecordView {
	view := models.MaintenanceRecordView{
		MaintenanceRecord: r,
		Overdue:           repository.IsOverdue(r, now),
	}
	if vehicle, ok := s.store.GetVehicleByID(r.VehicleID); ok {
		view.VehicleName = vehicle.DisplayName()
	}
	return view
}
