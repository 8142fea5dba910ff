package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-dashboard/internal/api/routes"
	"fleet-dashboard/internal/config"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/seed"
	"fleet-dashboard/internal/session"
	"fleet-dashboard/internal/websocket"
	"fleet-dashboard/pkg/cache"
	"fleet-dashboard/pkg/database"
	"fleet-dashboard/pkg/jwt"
	"fleet-dashboard/pkg/logging"
	"fleet-dashboard/pkg/ratelimit"
	"fleet-dashboard/pkg/redis"
	"fleet-dashboard/pkg/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.New(cfg)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	// Every start begins from the demo fleet
	store := repository.NewStore(
		repository.WithVehicles(seed.Vehicles()),
		repository.WithMaintenanceRecords(seed.MaintenanceRecords()),
		repository.WithLogger(log),
	)

	// Shared Redis connection for the cache, the limiter and health
	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = redis.NewClient(cfg.Redis, log)
		defer redisClient.Close()

		if status := redisClient.HealthCheck(ctx); status.IsConnected {
			log.WithField("addr", status.ConnectionInfo).Info("Redis connected successfully")
		} else {
			log.WithField("error", status.Error).Warn("Redis connection failed, will retry automatically")
		}
	}

	identityStore, closeIdentityStore, err := openIdentityStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeIdentityStore()

	sessions := session.NewManager(
		repository.NewUserRepository(seed.Users()),
		identityStore,
		session.WithDelay(cfg.AuthDelay),
		session.WithLogger(log),
	)
	go func() {
		if err := sessions.RestoreSession(ctx); err != nil {
			log.WithError(err).Warn("Starting without a restored session")
		}
	}()

	hub := websocket.NewManager(log, cfg.AllowedOrigins)
	if err := hub.Start(); err != nil {
		return fmt.Errorf("failed to start websocket hub: %w", err)
	}
	defer hub.Stop()
	unsubscribe := store.Subscribe(hub.HandleChange)
	defer unsubscribe()

	deps := routes.Dependencies{
		Store:         store,
		Sessions:      sessions,
		IdentityStore: identityStore,
		Tokens:        jwt.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiry),
		Hub:           hub,
		RedisClient:   redisClient,
		Log:           log,
	}

	if cfg.CacheEnabled {
		deps.CacheManager = cache.NewDefaultCacheManager(redisClient)
	}

	if cfg.RateLimitEnabled {
		limiter, closeLimiter := newRateLimiter(redisClient, log)
		defer closeLimiter()
		deps.RateLimiter = limiter
	}

	refresher := scheduler.NewStatsRefresher(cfg.StatsRefreshSchedule, func() { store.RefreshStatistics() }, log)
	if err := refresher.Start(); err != nil {
		return err
	}
	defer refresher.Stop()
	deps.StatsRefresher = refresher

	// Setup Gin router
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	routes.SetupRoutes(router, deps)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

// openIdentityStore builds the durable session slot selected by
// SESSION_STORE and a func releasing whatever it opened.
func openIdentityStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (session.IdentityStore, func(), error) {
	noop := func() {}

	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		return session.NewMemoryIdentityStore(), noop, nil

	case config.SessionStoreRedis:
		opts, err := redis.Options(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		client := goredis.NewClient(opts)
		return session.NewRedisIdentityStore(client, cfg.SessionKey), func() { client.Close() }, nil

	case config.SessionStoreMongo:
		db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := database.Disconnect(context.Background(), db.Client()); err != nil {
				log.WithError(err).Warn("Failed to disconnect from MongoDB")
			}
		}
		return session.NewMongoIdentityStore(db, cfg.SessionKey), closeFn, nil

	case config.SessionStoreSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		store, err := session.NewSQLiteIdentityStore(db, cfg.SessionKey)
		if err != nil {
			database.CloseSQLite(db)
			return nil, nil, err
		}
		return store, func() { database.CloseSQLite(db) }, nil

	default:
		return session.NewFileIdentityStore(cfg.SessionFile, cfg.SessionKey), noop, nil
	}
}

// newRateLimiter prefers the Redis fixed window when Redis is configured so
// limits hold across instances.
func newRateLimiter(redisClient *redis.Client, log logrus.FieldLogger) (ratelimit.RateLimiter, func()) {
	limits := ratelimit.DefaultConfig()

	if redisClient != nil {
		limiter := ratelimit.NewRedisRateLimiter(redisClient, limits)
		log.Info("Using Redis rate limiter")
		return limiter, func() {}
	}

	limiter := ratelimit.NewMemoryRateLimiter(limits)
	log.Info("Using in-memory rate limiter")
	return limiter, limiter.Close
}

func corsConfig(allowedOrigins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version", "Sec-WebSocket-Protocol"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	// Wildcard origin for development
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowCredentials = true
	}
	return corsCfg
}
