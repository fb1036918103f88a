package validator

import (
	"testing"

	"mediops/pkg/logger"
	"mediops/pkg/model"
	"mediops/pkg/timeslot"
)

func fullWeek() map[string][]model.SlotEntry {
	catalog := timeslot.Catalog()
	week := make(map[string][]model.SlotEntry, len(model.DayNames))
	for _, day := range model.DayNames {
		entries := make([]model.SlotEntry, 0, len(catalog))
		for _, slot := range catalog {
			entries = append(entries, model.SlotEntry{
				Start:     slot.Start.String(),
				End:       slot.End.String(),
				Available: slot.Start.String() == "09:00",
			})
		}
		week[day] = entries
	}
	return week
}

func validSchedule() *model.WeeklySchedule {
	return &model.WeeklySchedule{
		DoctorID:           "DOC001",
		HospitalID:         "HOSP01",
		Week:               fullWeek(),
		MaxNormalPatients:  6,
		MaxPremiumPatients: 2,
	}
}

func newValidator() *ScheduleValidator {
	return NewScheduleValidator(logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}))
}

func TestValidateAcceptsFullGrid(t *testing.T) {
	v := newValidator()
	if err := v.Validate(validSchedule()); err != nil {
		t.Errorf("valid schedule rejected: %v", err)
	}
}

func TestValidateRejectsDivergentWeekdays(t *testing.T) {
	v := newValidator()
	ws := validSchedule()
	ws.Week["wednesday"][0].Available = !ws.Week["wednesday"][0].Available

	if err := v.Validate(ws); err == nil {
		t.Error("weekday grids that diverge must be rejected")
	}
}

func TestValidateRejectsDivergentWeekend(t *testing.T) {
	v := newValidator()
	ws := validSchedule()
	ws.Week["sunday"][3].Available = !ws.Week["sunday"][3].Available

	if err := v.Validate(ws); err == nil {
		t.Error("weekend grids that diverge must be rejected")
	}
}

func TestValidateRejectsMissingDay(t *testing.T) {
	v := newValidator()
	ws := validSchedule()
	delete(ws.Week, "friday")

	if err := v.Validate(ws); err == nil {
		t.Error("a week without all seven days must be rejected")
	}
}

func TestValidateRejectsOmittedSlot(t *testing.T) {
	v := newValidator()
	ws := validSchedule()
	for _, day := range model.DayNames {
		ws.Week[day] = ws.Week[day][1:]
	}

	if err := v.Validate(ws); err == nil {
		t.Error("a day missing a catalog slot must be rejected")
	}
}

func TestValidateRejectsBadDoctorID(t *testing.T) {
	v := newValidator()
	ws := validSchedule()
	ws.DoctorID = "doctor-1"

	if err := v.Validate(ws); err == nil {
		t.Error("malformed doctor ID must be rejected")
	}
}

func TestValidateRejectsInvertedEffectiveWindow(t *testing.T) {
	v := newValidator()
	ws := validSchedule()
	ws.EffectiveFrom = "2026-05-01"
	ws.EffectiveUntil = "2026-04-01"

	if err := v.Validate(ws); err == nil {
		t.Error("effective_until before effective_from must be rejected")
	}
}

func TestValidateRejectsZeroCapacity(t *testing.T) {
	v := newValidator()
	ws := validSchedule()
	ws.MaxNormalPatients = 0

	if err := v.Validate(ws); err == nil {
		t.Error("zero capacity must be rejected")
	}
}
