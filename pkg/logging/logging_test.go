package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"fleet-dashboard/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		log := New(&config.Config{LogLevel: "debug", LogFormat: "JSON"})
		assert.Equal(t, logrus.DebugLevel, log.GetLevel())

		var buf bytes.Buffer
		log.SetOutput(&buf)
		log.WithField("vehicle_id", "3").Info("Vehicle updated")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Vehicle updated", entry["msg"])
		assert.Equal(t, "3", entry["vehicle_id"])
	})

	t.Run("bad level falls back to info", func(t *testing.T) {
		log := New(&config.Config{LogLevel: "chatty"})
		assert.Equal(t, logrus.InfoLevel, log.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	})
}
