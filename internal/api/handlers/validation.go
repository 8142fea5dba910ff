package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"
	"fleet-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MinVehicleYear is the oldest model year the fleet accepts.
const MinVehicleYear = 1900

// newValidator returns a validator that reports fields by their JSON names,
// treats a zero models.Date as missing and knows the vehicleyear tag, whose
// upper bound follows now.
func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok && !d.IsZero() {
			return d.Time
		}
		return nil
	}, models.Date{})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("vehicleyear", vehicleYearValidator(now))
	return v
}

// vehicleYearValidator accepts MinVehicleYear up to next year.
func vehicleYearValidator(now func() time.Time) validator.Func {
	return func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= MinVehicleYear && year <= int64(now().Year()+1)
	}
}

// bindAndValidate decodes the JSON body into req and validates it, writing
// the error response itself when either step fails.
func bindAndValidate(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := v.Struct(req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return false
	}
	return true
}

// serviceErrorStatus maps domain errors onto HTTP status codes.
func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrVehicleNotFound),
		errors.Is(err, repository.ErrMaintenanceRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrInvalidVehicleStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
