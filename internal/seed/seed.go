// Package seed holds the demo fleet every dashboard starts with.
package seed

import (
	"fleet-dashboard/internal/models"
)

func Users() []models.User {
	return []models.User{
		{ID: "1", Username: "admin", Role: models.RoleAdmin},
		{ID: "2", Username: "staff", Role: models.RoleStaff},
	}
}

func placeholderImage(text string) string {
	return "https://via.placeholder.com/150?text=" + text
}

func vehicle(id, brand, model string, year int, engineNo, registrationNo string, fuel models.FuelType, transmission models.Transmission, status models.VehicleStatus, added, imageText string) models.Vehicle {
	return models.Vehicle{
		ID: id,
		VehicleFields: models.VehicleFields{
			Brand:          brand,
			Model:          model,
			Year:           year,
			EngineNo:       engineNo,
			RegistrationNo: registrationNo,
			FuelType:       fuel,
			Transmission:   transmission,
			Seating:        5,
			Status:         status,
			Image:          placeholderImage(imageText),
		},
		AddedDate: models.MustParseDate(added),
	}
}

func Vehicles() []models.Vehicle {
	return []models.Vehicle{
		vehicle("1", "Toyota", "Corolla", 2021, "ENG-10023-TC", "ABC-1234", models.FuelPetrol, models.TransmissionAutomatic, models.StatusAvailable, "2023-10-15", "Corolla"),
		vehicle("2", "Honda", "Civic", 2020, "ENG-20045-HC", "XYZ-5678", models.FuelPetrol, models.TransmissionCVT, models.StatusAvailable, "2023-09-20", "Civic"),
		vehicle("3", "Ford", "Escape", 2022, "ENG-30056-FE", "DEF-9012", models.FuelHybrid, models.TransmissionAutomatic, models.StatusUnderMaintenance, "2023-11-05", "Escape"),
		vehicle("4", "BMW", "X3", 2021, "ENG-40078-BX", "GHI-3456", models.FuelDiesel, models.TransmissionAutomatic, models.StatusAvailable, "2023-10-10", "X3"),
		vehicle("5", "Tesla", "Model 3", 2022, "ENG-50089-TM", "JKL-7890", models.FuelElectric, models.TransmissionAutomatic, models.StatusSold, "2023-08-15", "Model3"),
		vehicle("6", "Hyundai", "Tucson", 2020, "ENG-60023-HT", "MNO-1234", models.FuelPetrol, models.TransmissionDCT, models.StatusAvailable, "2023-09-25", "Tucson"),
		vehicle("7", "Nissan", "Rogue", 2021, "ENG-70045-NR", "PQR-5678", models.FuelPetrol, models.TransmissionCVT, models.StatusUnderMaintenance, "2023-11-10", "Rogue"),
		vehicle("8", "Kia", "Sportage", 2022, "ENG-80056-KS", "STU-9012", models.FuelHybrid, models.TransmissionAutomatic, models.StatusAvailable, "2023-10-30", "Sportage"),
	}
}

func record(id, vehicleID, date string, kind models.MaintenanceType, description, serviceCenter string, cost float64, nextDue string) models.MaintenanceRecord {
	return models.MaintenanceRecord{
		ID: id,
		MaintenanceFields: models.MaintenanceFields{
			VehicleID:     vehicleID,
			Date:          models.MustParseDate(date),
			Type:          kind,
			Description:   description,
			ServiceCenter: serviceCenter,
			Cost:          cost,
			NextDueDate:   models.MustParseDate(nextDue),
		},
	}
}

func MaintenanceRecords() []models.MaintenanceRecord {
	return []models.MaintenanceRecord{
		record("1", "1", "2023-11-15", models.MaintenanceOilChange, "Regular oil change and filter replacement", "Toyota Service Center", 150, "2024-02-15"),
		record("2", "1", "2023-08-10", models.MaintenanceTireRotation, "Standard tire rotation and pressure check", "QuickTire Service", 50, "2023-11-10"),
		record("3", "2", "2023-10-05", models.MaintenanceBrakeService, "Replaced front brake pads", "Honda Authorized Service", 220, "2024-04-05"),
		record("4", "3", "2023-11-20", models.MaintenanceEngineService, "Major engine tune-up and diagnostics", "Ford Service Plus", 350, "2024-05-20"),
		record("5", "3", "2023-09-12", models.MaintenanceGeneralInspection, "Annual vehicle inspection and safety check", "State Inspection Center", 75, "2024-09-12"),
		record("6", "7", "2023-11-18", models.MaintenanceTransmission, "CVT fluid change and diagnostics", "Nissan Prime Service", 280, "2024-11-18"),
		record("7", "4", "2023-10-22", models.MaintenanceOilChange, "Synthetic oil change with premium filter", "BMW Exclusive Service", 200, "2024-01-22"),
	}
}
