package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/lmoretti/event-seat-reservation/api"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_status", validateSeatStatus)

	return validator
}

func validateSeatStatus(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(api.SeatStatus)
	if !ok {
		return false
	}

	return status == api.Free || status == api.Held || status == api.Sold
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		if err.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at least %s items", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		if err.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at most %s items", err.Param())
		}
		return fmt.Sprintf("must be at most %s", err.Param())
	case "seat_status":
		return "must be one of FREE, HELD or SOLD"
	default:
		return "is invalid"
	}
}
