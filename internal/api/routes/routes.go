package routes

import (
	"fleet-dashboard/internal/api/handlers"
	"fleet-dashboard/internal/api/middleware"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/services"
	"fleet-dashboard/internal/session"
	"fleet-dashboard/internal/websocket"
	"fleet-dashboard/pkg/cache"
	"fleet-dashboard/pkg/jwt"
	"fleet-dashboard/pkg/ratelimit"
	"fleet-dashboard/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const HealthPath = "/api/v1/health"

// Dependencies carries everything the API is built from. CacheManager,
// RedisClient, RateLimiter and StatsRefresher are optional.
type Dependencies struct {
	Store          *repository.Store
	Sessions       *session.Manager
	IdentityStore  session.IdentityStore
	Tokens         *jwt.JWTUtil
	Hub            *websocket.Manager
	CacheManager   cache.CacheManager
	RedisClient    *redis.Client
	RateLimiter    ratelimit.RateLimiter
	StatsRefresher handlers.RefreshScheduler
	Log            logrus.FieldLogger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Initialize services
	vehicleService := services.NewVehicleService(deps.Store, log)
	maintenanceService := services.NewMaintenanceService(deps.Store, log)
	dashboardService := services.NewDashboardService(deps.Store, log)
	reportService := services.NewReportService(deps.Store, log)

	if deps.CacheManager != nil {
		dashboardService.SetCacheManager(deps.CacheManager)
		reportService.SetCacheManager(deps.CacheManager)
		deps.Store.Subscribe(services.CacheInvalidator(deps.CacheManager, log))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Sessions, deps.Tokens)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, reportService)
	webSocketHandler := handlers.NewWebSocketHandler(deps.Hub, log)

	healthHandler := handlers.NewHealthHandler(deps.IdentityStore, deps.Hub)
	if deps.RedisClient != nil {
		healthHandler.SetRedisClient(deps.RedisClient)
	}
	if deps.CacheManager != nil {
		healthHandler.SetCacheManager(deps.CacheManager)
	}
	if deps.RateLimiter != nil {
		healthHandler.SetRateLimiter(deps.RateLimiter)
	}
	if deps.StatsRefresher != nil {
		healthHandler.SetStatsRefresher(deps.StatsRefresher)
	}

	limit := rateLimit(deps.RateLimiter, log)

	router.Use(middleware.RequestLogger(log, HealthPath))

	// API routes
	api := router.Group("/api/v1")
	api.GET("/health", limit, healthHandler.HealthCheck)

	// Public routes
	auth := api.Group("/auth")
	auth.Use(limit)
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/session", authHandler.GetSession)
	}

	// Gated routes; the limiter runs after the gate so it keys on the user
	protected := api.Group("")
	protected.Use(middleware.RequireSession(deps.Sessions, deps.Tokens), limit)
	{
		protected.GET("/dashboard", dashboardHandler.GetDashboard)
		protected.POST("/dashboard/refresh", dashboardHandler.RefreshStatistics)
		protected.GET("/reports", dashboardHandler.GetReports)

		vehicles := protected.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.GetVehicles)
			vehicles.POST("", vehicleHandler.CreateVehicle)
			vehicles.GET("/options", vehicleHandler.GetOptions)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.PUT("/:id", vehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
			vehicles.GET("/:id/maintenance", vehicleHandler.GetVehicleMaintenance)
		}

		maintenance := protected.Group("/maintenance")
		{
			maintenance.GET("", maintenanceHandler.GetMaintenanceRecords)
			maintenance.POST("", maintenanceHandler.CreateMaintenanceRecord)
			maintenance.GET("/:id", maintenanceHandler.GetMaintenanceRecord)
			maintenance.PUT("/:id", maintenanceHandler.UpdateMaintenanceRecord)
			maintenance.DELETE("/:id", maintenanceHandler.DeleteMaintenanceRecord)
		}

		protected.GET("/ws", webSocketHandler.HandleWebSocket)
		protected.GET("/ws/clients", webSocketHandler.GetConnectedClients)
	}
}

func rateLimit(limiter ratelimit.RateLimiter, log logrus.FieldLogger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimitMiddleware(limiter, log)
}
