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

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator", "error", err)
	}
	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}
	if err := v.RegisterValidation("doctor_id", validateDoctorID); err != nil {
		log.Fatal("Failed to register 'doctor_id' validator", "error", err)
	}
	if err := v.RegisterValidation("uniform_week", validateUniformWeek); err != nil {
		log.Fatal("Failed to register 'uniform_week' validator", "error", err)
	}

	log.Info("Schedule validator initialized successfully")

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return false
	}
	parsed, err := timeslot.ParseTimeOfDay(s)
	if err != nil {
		return false
	}
	// Stored values must already be canonical "HH:MM".
	return parsed.String() == s
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !identifier.IsAppointmentDate(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validateDoctorID(fl validator.FieldLevel) bool {
	return identifier.IsDoctorID(fl.Field().String())
}

// validateUniformWeek checks the full-grid invariants: all seven days
// present, one entry per catalog slot sorted by start, the five weekday
// grids identical to each other and the two weekend grids identical to
// each other.
func validateUniformWeek(fl validator.FieldLevel) bool {
	week, ok := fl.Field().Interface().(map[string][]model.SlotEntry)
	if !ok || len(week) != len(model.DayNames) {
		return false
	}

	catalog := timeslot.Catalog()
	for _, day := range model.DayNames {
		entries, exists := week[day]
		if !exists || len(entries) != len(catalog) {
			return false
		}
		for i, entry := range entries {
			if entry.Start != catalog[i].Start.String() || entry.End != catalog[i].End.String() {
				return false
			}
		}
	}

	for _, day := range model.WeekdayNames[1:] {
		if !sameEntries(week[model.WeekdayNames[0]], week[day]) {
			return false
		}
	}
	return sameEntries(week[model.WeekendNames[0]], week[model.WeekendNames[1]])
}

func sameEntries(a, b []model.SlotEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v *ScheduleValidator) Validate(ws *model.WeeklySchedule) error {
	if err := v.validate.Struct(ws); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if ws.EffectiveFrom != "" && ws.EffectiveUntil != "" && ws.EffectiveUntil < ws.EffectiveFrom {
		return ValidationErrors{{
			Field:   "EffectiveUntil",
			Message: "effective_until must not precede effective_from",
		}}
	}

	return nil
}

func (v *ScheduleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "time_of_day":
			message = fmt.Sprintf("%s must be a canonical HH:MM 24-hour time", err.Field())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD calendar date", err.Field())
		case "doctor_id":
			message = fmt.Sprintf("%s must match the DOC followed by 3 digits format", err.Field())
		case "uniform_week":
			message = "weekly_schedule must cover all seven days with one entry per catalog slot, uniform across weekdays and across weekend days"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
