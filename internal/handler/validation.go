package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	customError "github.com/lendfast/loan-engine/pkg/errors"
	"github.com/lendfast/loan-engine/pkg/response"
)

// newValidator builds a validator with the decimal rules the request DTOs use.
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("decimal_gt_zero", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	})

	_ = v.RegisterValidation("decimal_gte_zero", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && !d.IsNegative()
	})

	return v
}

// writeServiceError maps engine errors onto HTTP statuses. Validation errors
// carry the full field list in the response details.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *customError.ValidationError
	if errors.As(err, &validationErr) {
		response.ErrorWithDetails(w, http.StatusBadRequest, "Validation failed", err, validationErr.Violations)
		return
	}

	switch {
	case errors.Is(err, customError.ErrApplicationNotFound),
		errors.Is(err, customError.ErrAccountNotFound),
		errors.Is(err, customError.ErrProductNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, customError.ErrInvalidTransition),
		errors.Is(err, customError.ErrAccountClosed):
		response.Conflict(w, "Operation not allowed in current state", err)
	case errors.Is(err, customError.ErrInvalidAmount),
		errors.Is(err, customError.ErrInvalidInput):
		response.BadRequest(w, "Invalid input", err)
	default:
		response.InternalServerError(w, "Internal server error", err)
	}
}
