package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	t.Run("calendar day round trip", func(t *testing.T) {
		data, err := json.Marshal(NewDate(2023, time.November, 15))
		require.NoError(t, err)
		assert.Equal(t, `"2023-11-15"`, string(data))

		var d Date
		require.NoError(t, json.Unmarshal(data, &d))
		assert.True(t, d.Equal(NewDate(2023, time.November, 15).Time))
	})

	t.Run("instant keeps clock part", func(t *testing.T) {
		instant := Date{time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)}
		data, err := json.Marshal(instant)
		require.NoError(t, err)
		assert.Equal(t, `"2024-03-01T10:30:00Z"`, string(data))

		var d Date
		require.NoError(t, json.Unmarshal(data, &d))
		assert.True(t, d.Equal(instant.Time))
	})

	t.Run("zero is null", func(t *testing.T) {
		data, err := json.Marshal(Date{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))

		var d Date
		require.NoError(t, json.Unmarshal([]byte("null"), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"15/11/2023"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`20231115`), &d))
	})
}

func TestDateOf(t *testing.T) {
	d := DateOf(time.Date(2024, time.January, 5, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-05", d.String())
}

func TestVehicleStatusValid(t *testing.T) {
	assert.True(t, StatusAvailable.Valid())
	assert.True(t, StatusUnderMaintenance.Valid())
	assert.True(t, StatusSold.Valid())
	assert.False(t, VehicleStatus("Scrapped").Valid())
}
