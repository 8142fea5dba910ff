package services

import (
	"context"
	"sort"
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/pkg/cache"

	"github.com/sirupsen/logrus"
)

const (
	reportCacheKey = "reports:fleet"

	// TopVehicleCount limits the maintenance cost ranking.
	TopVehicleCount = 5
	// ReportMonths is how many of the latest service months the report keeps.
	ReportMonths = 6

	monthLayout = "Jan 2006"
)

type ReportService struct {
	store        *repository.Store
	cacheManager cache.CacheManager
	cacheConfig  cache.CacheConfig
	log          logrus.FieldLogger
}

func NewReportService(store *repository.Store, log logrus.FieldLogger) *ReportService {
	return &ReportService{
		store:       store,
		cacheConfig: cache.DefaultCacheConfig(),
		log:         log.WithField("service", "reports"),
	}
}

// SetCacheManager enables caching of computed reports.
func (s *ReportService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

func (s *ReportService) GetReport(ctx context.Context) models.FleetReport {
	ttl := s.cacheConfig.GetTTLForDataType(cache.DataTypeReport)
	return readThrough(ctx, s.cacheManager, reportCacheKey, ttl, s.log, s.store.Version, func() models.FleetReport {
		vehicles, records := s.store.Snapshot()
		return BuildReport(vehicles, records, s.store.Now())
	})
}

// BuildReport aggregates the fleet charts. Groupings without a natural order
// follow the order in which their first member appears.
func BuildReport(vehicles []models.Vehicle, records []models.MaintenanceRecord, now time.Time) models.FleetReport {
	return models.FleetReport{
		StatusDistribution:          statusDistribution(vehicles),
		FuelTypeDistribution:        fuelTypeDistribution(vehicles),
		MaintenanceTypeDistribution: maintenanceTypeDistribution(records),
		TopMaintenanceCostByVehicle: topMaintenanceCost(vehicles, records),
		MaintenanceByMonth:          maintenanceByMonth(records),
		VehiclesByYear:              vehiclesByYear(vehicles),
		CostByMaintenanceType:       costByMaintenanceType(records),
		GeneratedAt:                 now,
	}
}

func statusDistribution(vehicles []models.Vehicle) []models.DistributionEntry {
	counts := make(map[models.VehicleStatus]int)
	for _, v := range vehicles {
		counts[v.Status]++
	}

	entries := make([]models.DistributionEntry, 0, len(models.VehicleStatuses))
	for _, status := range models.VehicleStatuses {
		entries = append(entries, models.DistributionEntry{Name: string(status), Value: counts[status]})
	}
	return entries
}

// countInOrder counts keys, listing them in order of first appearance.
func countInOrder(keys []string) []models.DistributionEntry {
	index := make(map[string]int)
	entries := []models.DistributionEntry{}
	for _, k := range keys {
		i, ok := index[k]
		if !ok {
			i = len(entries)
			index[k] = i
			entries = append(entries, models.DistributionEntry{Name: k})
		}
		entries[i].Value++
	}
	return entries
}

func fuelTypeDistribution(vehicles []models.Vehicle) []models.DistributionEntry {
	keys := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		keys = append(keys, string(v.FuelType))
	}
	return countInOrder(keys)
}

func maintenanceTypeDistribution(records []models.MaintenanceRecord) []models.DistributionEntry {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, string(r.Type))
	}
	return countInOrder(keys)
}

// topMaintenanceCost ranks vehicles by total maintenance cost. Ties keep
// fleet order and vehicles without cost are left out.
func topMaintenanceCost(vehicles []models.Vehicle, records []models.MaintenanceRecord) []models.VehicleCost {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[r.VehicleID] += r.Cost
	}

	costs := []models.VehicleCost{}
	for _, v := range vehicles {
		if cost := totals[v.ID]; cost > 0 {
			costs = append(costs, models.VehicleCost{VehicleID: v.ID, Name: v.DisplayName(), Cost: cost})
		}
	}
	sort.SliceStable(costs, func(i, j int) bool {
		return costs[i].Cost > costs[j].Cost
	})

	if len(costs) > TopVehicleCount {
		costs = costs[:TopVehicleCount]
	}
	return costs
}

// maintenanceByMonth groups records by calendar month of service and keeps
// the latest months in chronological order.
func maintenanceByMonth(records []models.MaintenanceRecord) []models.MonthlyMaintenance {
	type bucket struct {
		start time.Time
		entry models.MonthlyMaintenance
	}

	buckets := make(map[time.Time]*bucket)
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		day := r.Date.UTC()
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[start]
		if !ok {
			b = &bucket{start: start, entry: models.MonthlyMaintenance{Month: start.Format(monthLayout)}}
			buckets[start] = b
		}
		b.entry.Count++
		b.entry.Cost += r.Cost
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].start.Before(ordered[j].start)
	})
	if len(ordered) > ReportMonths {
		ordered = ordered[len(ordered)-ReportMonths:]
	}

	months := make([]models.MonthlyMaintenance, 0, len(ordered))
	for _, b := range ordered {
		months = append(months, b.entry)
	}
	return months
}

func vehiclesByYear(vehicles []models.Vehicle) []models.YearCount {
	counts := make(map[int]int)
	for _, v := range vehicles {
		counts[v.Year]++
	}

	years := make([]models.YearCount, 0, len(counts))
	for year, count := range counts {
		years = append(years, models.YearCount{Year: year, Count: count})
	}
	sort.Slice(years, func(i, j int) bool {
		return years[i].Year < years[j].Year
	})
	return years
}

func costByMaintenanceType(records []models.MaintenanceRecord) []models.MaintenanceTypeCost {
	index := make(map[models.MaintenanceType]int)
	costs := []models.MaintenanceTypeCost{}
	for _, r := range records {
		i, ok := index[r.Type]
		if !ok {
			i = len(costs)
			index[r.Type] = i
			costs = append(costs, models.MaintenanceTypeCost{Type: r.Type})
		}
		costs[i].Count++
		costs[i].Cost += r.Cost
	}
	return costs
}
