package services

import (
	"io"
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/seed"

	"github.com/sirupsen/logrus"
)

var fixedNow = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seededStore() *repository.Store {
	return repository.NewStore(
		repository.WithClock(func() time.Time { return fixedNow }),
		repository.WithVehicles(seed.Vehicles()),
		repository.WithMaintenanceRecords(seed.MaintenanceRecords()),
		repository.WithLogger(quietLogger()),
	)
}

func newVehicleFields() models.VehicleFields {
	return models.VehicleFields{
		Brand:          "Mazda",
		Model:          "CX-5",
		Year:           2023,
		EngineNo:       "ENG-90001-MC",
		RegistrationNo: "VWX-3456",
		FuelType:       models.FuelPetrol,
		Transmission:   models.TransmissionAutomatic,
		Seating:        5,
		Status:         models.StatusAvailable,
	}
}
