package redis

import (
	"context"
	"io"
	"testing"
	"time"

	"fleet-dashboard/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(mr *miniredis.Miniredis) config.RedisConfig {
	return config.RedisConfig{
		Host:         mr.Host(),
		Port:         mr.Port(),
		PoolSize:     10,
		MinIdleConns: 1,
		MaxRetries:   1,
		RetryDelay:   10 * time.Millisecond,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  time.Second,
		IdleTimeout:  time.Minute,
	}
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewClient(testConfig(mr), quietLogger())
	defer client.Close()

	require.NotNil(t, client.GetClient())
	assert.True(t, client.IsConnected())

	require.NoError(t, client.GetClient().Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestHealthCheck(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := NewClient(testConfig(mr), quietLogger())
	defer client.Close()

	status := client.HealthCheck(context.Background())
	assert.True(t, status.IsConnected)
	assert.Equal(t, mr.Addr(), status.ConnectionInfo)
	assert.False(t, status.LastPing.IsZero())
	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()

	status = client.HealthCheck(context.Background())
	assert.False(t, status.IsConnected)
	assert.NotEmpty(t, status.Error)
	assert.False(t, client.IsConnected())
	assert.Error(t, client.Ping(context.Background()))
}

func TestOptions(t *testing.T) {
	t.Run("host and port", func(t *testing.T) {
		opt, err := Options(config.RedisConfig{Host: "cache", Port: "6380", DB: 2, PoolSize: 7, IdleTimeout: time.Minute})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opt.Addr)
		assert.Equal(t, 2, opt.DB)
		assert.Equal(t, 7, opt.PoolSize)
		assert.Equal(t, time.Minute, opt.ConnMaxIdleTime)
	})

	t.Run("url wins", func(t *testing.T) {
		opt, err := Options(config.RedisConfig{URL: "redis://:pw@example:6390/3", Host: "ignored", Port: "1"})
		require.NoError(t, err)
		assert.Equal(t, "example:6390", opt.Addr)
		assert.Equal(t, "pw", opt.Password)
		assert.Equal(t, 3, opt.DB)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := Options(config.RedisConfig{URL: "mysql://nope"})
		assert.Error(t, err)
	})
}

func TestGetConnectionStats(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewClient(testConfig(mr), quietLogger())
	defer client.Close()

	stats := client.GetConnectionStats()
	assert.True(t, stats.IsConnected)
	assert.GreaterOrEqual(t, stats.TotalConns, uint32(1))
}
