package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mediops/pkg/identifier"
	"mediops/pkg/logger"
	"mediops/pkg/model"
	"mediops/pkg/timeslot"

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

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("appointment_id", validateAppointmentID); err != nil {
		log.Fatal("Failed to register 'appointment_id' validator", "error", err)
	}
	if err := v.RegisterValidation("patient_id", validatePatientID); err != nil {
		log.Fatal("Failed to register 'patient_id' validator", "error", err)
	}
	if err := v.RegisterValidation("doctor_id", validateDoctorID); err != nil {
		log.Fatal("Failed to register 'doctor_id' validator", "error", err)
	}
	if err := v.RegisterValidation("slot_key", validateSlotKey); err != nil {
		log.Fatal("Failed to register 'slot_key' validator", "error", err)
	}
	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}
	if err := v.RegisterValidation("appointment_status", validateAppointmentStatus); err != nil {
		log.Fatal("Failed to register 'appointment_status' validator", "error", err)
	}

	log.Info("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func validateAppointmentID(fl validator.FieldLevel) bool {
	return identifier.IsAppointmentID(fl.Field().String())
}

func validatePatientID(fl validator.FieldLevel) bool {
	return identifier.IsPatientDisplayID(fl.Field().String())
}

func validateDoctorID(fl validator.FieldLevel) bool {
	return identifier.IsDoctorID(fl.Field().String())
}

// validateSlotKey requires the canonical catalog form. Request paths
// normalize drifted input before validation, so anything non-canonical
// here is a real error.
func validateSlotKey(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	key, err := timeslot.Normalize(s)
	if err != nil {
		return false
	}
	return key == s && timeslot.InCatalog(key)
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !identifier.IsAppointmentDate(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validateAppointmentStatus(fl validator.FieldLevel) bool {
	return model.AppointmentStatus(fl.Field().String()).IsValid()
}

func (v *AppointmentValidator) Validate(appt *model.Appointment) error {
	return v.run(appt)
}

func (v *AppointmentValidator) ValidateCreate(req *model.CreateAppointmentRequest) error {
	return v.run(req)
}

func (v *AppointmentValidator) ValidateStatusUpdate(req *model.UpdateStatusRequest) error {
	return v.run(req)
}

func (v *AppointmentValidator) run(target any) error {
	if err := v.validate.Struct(target); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "appointment_id":
			message = fmt.Sprintf("%s must match the APPT token format", err.Field())
		case "patient_id":
			message = fmt.Sprintf("%s must match the PAT followed by 5 digits format", err.Field())
		case "doctor_id":
			message = fmt.Sprintf("%s must match the DOC followed by 3 digits format", err.Field())
		case "slot_key":
			message = fmt.Sprintf("%s must be a canonical catalog slot", err.Field())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD calendar date", err.Field())
		case "appointment_status":
			message = fmt.Sprintf("%s must be one of upcoming, completed, cancelled, missed", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
