package repository

import (
	"sort"
	"strings"

	"fleet-dashboard/internal/models"
)

// VehicleFilter narrows ListVehicles. Zero values match everything.
type VehicleFilter struct {
	Search string
	Status models.VehicleStatus
	Year   int
	Brand  string
}

func (f VehicleFilter) matches(v models.Vehicle) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.Brand), q) &&
			!strings.Contains(strings.ToLower(v.Model), q) &&
			!strings.Contains(strings.ToLower(v.RegistrationNo), q) {
			return false
		}
	}
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Year != 0 && v.Year != f.Year {
		return false
	}
	if f.Brand != "" && v.Brand != f.Brand {
		return false
	}
	return true
}

// ListVehicles returns matching vehicles in insertion order.
func (s *Store) ListVehicles(filter VehicleFilter) []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicles := []models.Vehicle{}
	for _, v := range s.vehicles {
		if filter.matches(v) {
			vehicles = append(vehicles, v)
		}
	}
	return vehicles
}

// MaintenanceFilter narrows ListMaintenanceRecords. Search also matches the
// brand and model of the record's vehicle.
type MaintenanceFilter struct {
	Search    string
	Type      models.MaintenanceType
	VehicleID string
}

// ListMaintenanceRecords returns matching records, most recent service first.
func (s *Store) ListMaintenanceRecords(filter MaintenanceFilter) []models.MaintenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(filter.Search)
	records := []models.MaintenanceRecord{}
	for _, r := range s.records {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.VehicleID != "" && r.VehicleID != filter.VehicleID {
			continue
		}
		if q != "" && !s.recordMatches(r, q) {
			continue
		}
		records = append(records, r)
	}

	SortRecordsByDateDesc(records)
	return records
}

// recordMatches must be called with mu held.
func (s *Store) recordMatches(r models.MaintenanceRecord, q string) bool {
	if strings.Contains(strings.ToLower(r.ServiceCenter), q) ||
		strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	if idx := s.vehicleIndex(r.VehicleID); idx >= 0 {
		v := s.vehicles[idx]
		return strings.Contains(strings.ToLower(v.Brand), q) ||
			strings.Contains(strings.ToLower(v.Model), q)
	}
	return false
}

// RecentVehicles returns up to n vehicles, newest AddedDate first.
func (s *Store) RecentVehicles(n int) []models.Vehicle {
	vehicles := s.Vehicles()
	sort.SliceStable(vehicles, func(i, j int) bool {
		return vehicles[i].AddedDate.After(vehicles[j].AddedDate.Time)
	})
	if len(vehicles) > n {
		vehicles = vehicles[:n]
	}
	return vehicles
}

// Brands returns the distinct brands, sorted.
func (s *Store) Brands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	brands := []string{}
	for _, v := range s.vehicles {
		if !seen[v.Brand] {
			seen[v.Brand] = true
			brands = append(brands, v.Brand)
		}
	}
	sort.Strings(brands)
	return brands
}

// Years returns the distinct model years, newest first.
func (s *Store) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]bool)
	years := []int{}
	for _, v := range s.vehicles {
		if !seen[v.Year] {
			seen[v.Year] = true
			years = append(years, v.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func SortRecordsByDateDesc(records []models.MaintenanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date.Time)
	})
}
