package services

import (
	"context"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/pkg/cache"

	"github.com/sirupsen/logrus"
)

// RecentVehicleCount is how many vehicles the dashboard lists.
const RecentVehicleCount = 5

const dashboardCacheKey = "dashboard"

type DashboardService struct {
	store        *repository.Store
	cacheManager cache.CacheManager
	cacheConfig  cache.CacheConfig
	log          logrus.FieldLogger
}

func NewDashboardService(store *repository.Store, log logrus.FieldLogger) *DashboardService {
	return &DashboardService{
		store:       store,
		cacheConfig: cache.DefaultCacheConfig(),
		log:         log.WithField("service", "dashboard"),
	}
}

// SetCacheManager enables caching of the dashboard payload.
func (s *DashboardService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

func (s *DashboardService) GetDashboard(ctx context.Context) models.Dashboard {
	ttl := s.cacheConfig.GetTTLForDataType(cache.DataTypeDashboard)
	return readThrough(ctx, s.cacheManager, dashboardCacheKey, ttl, s.log, s.store.Version, func() models.Dashboard {
		return models.Dashboard{
			Stats:          s.store.GetStatistics(),
			RecentVehicles: s.store.RecentVehicles(RecentVehicleCount),
		}
	})
}

// RefreshStatistics recounts upcoming and overdue maintenance against the
// current date.
func (s *DashboardService) RefreshStatistics() models.DashboardStats {
	stats := s.store.RefreshStatistics()
	s.log.WithFields(logrus.Fields{
		"upcoming": stats.UpcomingMaintenances,
		"overdue":  stats.OverdueMaintenances,
	}).Info("Statistics refreshed")
	return stats
}
