package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"yatranepal/pkg/logger"
	"yatranepal/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger

	maxRooms int
	maxDates int
}

func NewReservationValidator(log *logger.Logger, maxRooms, maxDates int) *ReservationValidator {
	v := validator.New()

	if err := v.RegisterValidation("date_list", validateDateList); err != nil {
		log.Fatal("Failed to register 'date_list' validator",
			"error", err,
		)
	}

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
		maxRooms: maxRooms,
		maxDates: maxDates,
	}
}

func validateDateList(fl validator.FieldLevel) bool {
	dates, ok := fl.Field().Interface().([]time.Time)
	if !ok {
		return false
	}
	if len(dates) == 0 {
		return false
	}
	for _, d := range dates {
		if d.IsZero() {
			return false
		}
	}
	return true
}

// Validate runs struct validation plus the cross-field rules tags cannot
// express. Expects the reservation to be sanitized and normalized already.
func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if len(reservation.RoomIDs) > v.maxRooms {
		return ValidationErrors{
			ValidationError{
				Field:   "RoomIDs",
				Message: fmt.Sprintf("room count (%d) exceeds maximum (%d)", len(reservation.RoomIDs), v.maxRooms),
			},
		}
	}

	if len(reservation.Dates) > v.maxDates {
		return ValidationErrors{
			ValidationError{
				Field:   "Dates",
				Message: fmt.Sprintf("date count (%d) exceeds maximum (%d)", len(reservation.Dates), v.maxDates),
			},
		}
	}

	if reservation.TotalPrice < 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "TotalPrice",
				Message: "total_price cannot be negative",
			},
		}
	}

	return nil
}

// ValidatePaymentStatus checks the payment-status update payload.
func (v *ReservationValidator) ValidatePaymentStatus(update *model.PaymentStatusUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must have at least %s element(s)", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "date_list":
			message = fmt.Sprintf("%s must contain at least one valid date", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
