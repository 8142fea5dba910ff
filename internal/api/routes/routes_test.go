package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/seed"
	"fleet-dashboard/internal/session"
	"fleet-dashboard/internal/websocket"
	"fleet-dashboard/pkg/cache"
	"fleet-dashboard/pkg/jwt"
	"fleet-dashboard/pkg/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newDeps(t *testing.T) Dependencies {
	t.Helper()
	log := quietLogger()

	identity := session.NewMemoryIdentityStore()
	hub := websocket.NewManager(log, nil)
	require.NoError(t, hub.Start())
	t.Cleanup(func() { hub.Stop() })

	return Dependencies{
		Store: repository.NewStore(
			repository.WithVehicles(seed.Vehicles()),
			repository.WithMaintenanceRecords(seed.MaintenanceRecords()),
			repository.WithLogger(log),
		),
		Sessions: session.NewManager(
			repository.NewUserRepository(seed.Users()),
			identity,
			session.WithDelay(0),
			session.WithLogger(log),
		),
		IdentityStore: identity,
		Tokens:        jwt.NewJWTUtil("test-secret", time.Hour),
		Hub:           hub,
		Log:           log,
	}
}

func newRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, deps)
	return router
}

func request(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router http.Handler, username string) string {
	t.Helper()
	w := request(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": username, "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func TestSetupRoutes_SessionGate(t *testing.T) {
	deps := newDeps(t)
	router := newRouter(deps)

	w := request(router, http.MethodGet, "/api/v1/vehicles", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "gate waits for the session restore")
	assert.Contains(t, w.Body.String(), `"loading":true`)

	require.NoError(t, deps.Sessions.RestoreSession(context.Background()))

	w = request(router, http.MethodGet, "/api/v1/vehicles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login"`)

	token := login(t, router, "admin")
	w = request(router, http.MethodGet, "/api/v1/vehicles", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodPost, "/api/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodGet, "/api/v1/vehicles", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "tokens die with the session")
}

func TestSetupRoutes_PublicRoutes(t *testing.T) {
	router := newRouter(newDeps(t))

	w := request(router, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = request(router, http.MethodGet, "/api/v1/auth/session", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"unauthenticated"`)
}

func TestSetupRoutes_ProtectedRoutes(t *testing.T) {
	deps := newDeps(t)
	router := newRouter(deps)
	require.NoError(t, deps.Sessions.RestoreSession(context.Background()))
	token := login(t, router, "admin")

	paths := []string{
		"/api/v1/dashboard",
		"/api/v1/reports",
		"/api/v1/vehicles",
		"/api/v1/vehicles/options",
		"/api/v1/vehicles/1",
		"/api/v1/vehicles/1/maintenance",
		"/api/v1/maintenance",
		"/api/v1/maintenance/1",
		"/api/v1/ws/clients",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := request(router, http.MethodGet, path, token, nil)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}

	w := request(router, http.MethodPost, "/api/v1/dashboard/refresh", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodDelete, "/api/v1/maintenance/1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_RateLimit(t *testing.T) {
	config := ratelimit.DefaultConfig()
	config.CleanupInterval = 0
	config.DefaultLimits[ratelimit.CategoryAuth] = ratelimit.RateLimit{RequestsPerMinute: 1, BurstSize: 2, WindowSize: time.Minute}

	deps := newDeps(t)
	deps.RateLimiter = ratelimit.NewMemoryRateLimiter(config)
	router := newRouter(deps)

	login(t, router, "admin")
	login(t, router, "admin")

	w := request(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "admin", "password": "secret"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")

	w = request(router, http.MethodGet, "/api/v1/auth/session", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "other categories keep their own budget")
}

func TestSetupRoutes_CacheFollowsStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	deps := newDeps(t)
	deps.CacheManager = cache.NewDefaultCacheManager(cache.StaticClient{Client: client})
	router := newRouter(deps)
	require.NoError(t, deps.Sessions.RestoreSession(context.Background()))
	token := login(t, router, "admin")

	require.Equal(t, http.StatusOK, request(router, http.MethodGet, "/api/v1/reports", token, nil).Code)
	require.Equal(t, http.StatusOK, request(router, http.MethodGet, "/api/v1/dashboard", token, nil).Code)
	assert.True(t, mr.Exists("fleet:reports:fleet"))
	assert.True(t, mr.Exists("fleet:dashboard"))

	require.Equal(t, http.StatusOK, request(router, http.MethodDelete, "/api/v1/vehicles/2", token, nil).Code)
	assert.False(t, mr.Exists("fleet:reports:fleet"))
	assert.False(t, mr.Exists("fleet:dashboard"))

	w := request(router, http.MethodGet, "/api/v1/dashboard", token, nil)
	assert.Contains(t, w.Body.String(), `"totalCars":7`)
}

func TestSetupRoutes_WebSocketTokenInQuery(t *testing.T) {
	deps := newDeps(t)
	router := newRouter(deps)
	require.NoError(t, deps.Sessions.RestoreSession(context.Background()))
	token := login(t, router, "admin")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	base := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"

	_, resp, err := gorillaws.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := gorillaws.DefaultDialer.Dial(base+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return deps.Hub.GetConnectedClients() == 1 }, time.Second, 5*time.Millisecond)
}
