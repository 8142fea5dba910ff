package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/seed"
	"fleet-dashboard/internal/services"
	"fleet-dashboard/internal/session"
	"fleet-dashboard/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testEnv struct {
	router   *gin.Engine
	store    *repository.Store
	sessions *session.Manager
	tokens   *jwt.JWTUtil
}

// newTestEnv mounts every handler on an ungated router over the seeded fleet.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := quietLogger()
	store := repository.NewStore(
		repository.WithClock(func() time.Time { return fixedNow }),
		repository.WithVehicles(seed.Vehicles()),
		repository.WithMaintenanceRecords(seed.MaintenanceRecords()),
		repository.WithLogger(log),
	)
	sessions := session.NewManager(
		repository.NewUserRepository(seed.Users()),
		session.NewMemoryIdentityStore(),
		session.WithDelay(0),
		session.WithLogger(log),
	)
	tokens := jwt.NewJWTUtil("test-secret", time.Hour)

	vehicleHandler := NewVehicleHandler(services.NewVehicleService(store, log))
	maintenanceHandler := NewMaintenanceHandler(services.NewMaintenanceService(store, log))
	authHandler := NewAuthHandler(sessions, tokens)
	dashboardHandler := NewDashboardHandler(
		services.NewDashboardService(store, log),
		services.NewReportService(store, log),
	)

	router := gin.New()
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/logout", authHandler.Logout)
	router.GET("/auth/session", authHandler.GetSession)
	router.POST("/auth/refresh", authHandler.RefreshToken)

	router.GET("/dashboard", dashboardHandler.GetDashboard)
	router.POST("/dashboard/refresh", dashboardHandler.RefreshStatistics)
	router.GET("/reports", dashboardHandler.GetReports)

	router.GET("/vehicles", vehicleHandler.GetVehicles)
	router.POST("/vehicles", vehicleHandler.CreateVehicle)
	router.GET("/vehicles/options", vehicleHandler.GetOptions)
	router.GET("/vehicles/:id", vehicleHandler.GetVehicle)
	router.PUT("/vehicles/:id", vehicleHandler.UpdateVehicle)
	router.DELETE("/vehicles/:id", vehicleHandler.DeleteVehicle)
	router.GET("/vehicles/:id/maintenance", vehicleHandler.GetVehicleMaintenance)

	router.GET("/maintenance", maintenanceHandler.GetMaintenanceRecords)
	router.POST("/maintenance", maintenanceHandler.CreateMaintenanceRecord)
	router.GET("/maintenance/:id", maintenanceHandler.GetMaintenanceRecord)
	router.PUT("/maintenance/:id", maintenanceHandler.UpdateMaintenanceRecord)
	router.DELETE("/maintenance/:id", maintenanceHandler.DeleteMaintenanceRecord)

	return &testEnv{router: router, store: store, sessions: sessions, tokens: tokens}
}

// do sends body as JSON; a string body is sent verbatim.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// decode checks the status and unpacks data into dest when dest is non-nil.
func decode(t *testing.T, w *httptest.ResponseRecorder, status int, dest interface{}) envelope {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}

func vehicleBody() map[string]interface{} {
	return map[string]interface{}{
		"brand":          "Mazda",
		"model":          "CX-5",
		"year":           2023,
		"engineNo":       "ENG-90001-MC",
		"registrationNo": "VWX-3456",
		"fuelType":       "Petrol",
		"transmission":   "Automatic",
		"seating":        5,
		"status":         "Available",
	}
}

func maintenanceBody(vehicleID string) map[string]interface{} {
	return map[string]interface{}{
		"vehicleId":     vehicleID,
		"date":          "2024-01-05",
		"type":          "Brake Service",
		"description":   "Rear pads",
		"serviceCenter": "City Garage",
		"cost":          180.5,
		"nextDueDate":   "2024-07-05",
	}
}
