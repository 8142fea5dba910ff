package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"fleet-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordIDs(views []models.MaintenanceRecordView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

func TestMaintenanceHandler_GetMaintenanceRecords(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all, most recent first", "", []string{"4", "6", "1", "7", "3", "5", "2"}},
		{"type", "?type=Oil%20Change", []string{"1", "7"}},
		{"vehicle", "?vehicleId=3", []string{"4", "5"}},
		{"search matches service center and vehicle", "?search=toyota", []string{"1", "2"}},
		{"unknown vehicle", "?vehicleId=99", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var views []models.MaintenanceRecordView
			decode(t, env.do(t, http.MethodGet, "/maintenance"+tt.query, nil), http.StatusOK, &views)
			assert.Equal(t, tt.want, recordIDs(views))
		})
	}
}

func TestMaintenanceHandler_GetMaintenanceRecord(t *testing.T) {
	env := newTestEnv(t)

	var view models.MaintenanceRecordView
	decode(t, env.do(t, http.MethodGet, "/maintenance/2", nil), http.StatusOK, &view)
	assert.Equal(t, "Toyota Corolla", view.VehicleName)
	assert.True(t, view.Overdue)
	assert.Equal(t, models.MaintenanceTireRotation, view.Type)

	decode(t, env.do(t, http.MethodGet, "/maintenance/7", nil), http.StatusOK, &view)
	assert.False(t, view.Overdue)

	decode(t, env.do(t, http.MethodGet, "/maintenance/99", nil), http.StatusNotFound, nil)
}

func TestMaintenanceHandler_CreateMaintenanceRecord(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t)

		var record models.MaintenanceRecord
		decode(t, env.do(t, http.MethodPost, "/maintenance", maintenanceBody("2")), http.StatusCreated, &record)
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, "2", record.VehicleID)
		assert.Equal(t, models.NewDate(2024, 1, 5), record.Date)
		assert.Equal(t, 180.5, record.Cost)

		assert.Len(t, env.store.GetMaintenanceRecordsByVehicle("2"), 2)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		env := newTestEnv(t)
		decode(t, env.do(t, http.MethodPost, "/maintenance", maintenanceBody("99")), http.StatusNotFound, nil)
		assert.Len(t, env.store.MaintenanceRecords(), 7)
	})

	invalid := []struct {
		name    string
		mutate  func(map[string]interface{})
		message string
	}{
		{"missing date", func(b map[string]interface{}) { delete(b, "date") }, "date is required"},
		{"missing next due date", func(b map[string]interface{}) { delete(b, "nextDueDate") }, "nextDueDate is required"},
		{"negative cost", func(b map[string]interface{}) { b["cost"] = -1 }, "cost must be at least 0"},
		{"unknown type", func(b map[string]interface{}) { b["type"] = "Car Wash" }, "type must be one of: 'Oil Change' 'Tire Rotation' 'Brake Service' 'Engine Service' 'Transmission Service' 'General Inspection' 'Other'"},
		{"missing service center", func(b map[string]interface{}) { b["serviceCenter"] = "" }, "serviceCenter is required"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := maintenanceBody("2")
			tt.mutate(req)

			body := decode(t, env.do(t, http.MethodPost, "/maintenance", req), http.StatusBadRequest, nil)
			var messages []string
			require.NoError(t, json.Unmarshal(body.Error, &messages))
			assert.Contains(t, messages, tt.message)
		})
	}

	t.Run("unparseable date", func(t *testing.T) {
		env := newTestEnv(t)
		req := maintenanceBody("2")
		req["date"] = "next tuesday"

		body := decode(t, env.do(t, http.MethodPost, "/maintenance", req), http.StatusBadRequest, nil)
		assert.Equal(t, "Invalid request format", body.Message)
	})
}

func TestMaintenanceHandler_UpdateMaintenanceRecord(t *testing.T) {
	env := newTestEnv(t)

	var record models.MaintenanceRecord
	decode(t, env.do(t, http.MethodPut, "/maintenance/1", maintenanceBody("1")), http.StatusOK, &record)
	assert.Equal(t, "1", record.ID)
	assert.Equal(t, models.MaintenanceBrakeService, record.Type)

	stored, ok := env.store.GetMaintenanceRecordByID("1")
	require.True(t, ok)
	assert.Equal(t, record, stored)

	decode(t, env.do(t, http.MethodPut, "/maintenance/99", maintenanceBody("1")), http.StatusNotFound, nil)

	body := decode(t, env.do(t, http.MethodPut, "/maintenance/1", maintenanceBody("99")), http.StatusNotFound, nil)
	assert.Equal(t, `"vehicle not found"`, string(body.Error))
}

func TestMaintenanceHandler_DeleteMaintenanceRecord(t *testing.T) {
	env := newTestEnv(t)

	var result struct {
		Deleted bool `json:"deleted"`
	}
	decode(t, env.do(t, http.MethodDelete, "/maintenance/1", nil), http.StatusOK, &result)
	assert.True(t, result.Deleted)

	decode(t, env.do(t, http.MethodDelete, "/maintenance/1", nil), http.StatusOK, &result)
	assert.False(t, result.Deleted)
	assert.Len(t, env.store.MaintenanceRecords(), 6)
}
