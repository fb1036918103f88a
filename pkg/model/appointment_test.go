package model

import (
	"testing"
	"time"

	apperrors "mediops/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
)

func validRow() bson.M {
	return bson.M{
		"_id":          "APPT123X",
		"patient_id":   "PAT00042",
		"doctor_id":    "DOC001",
		"hospital_id":  "HOSP01",
		"slot_id":      "09:00-10:00",
		"date":         "2026-03-15",
		"status":       "upcoming",
		"reason":       "follow-up",
		"is_premium":   true,
		"booking_time": time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestParseAppointmentRow(t *testing.T) {
	appt, err := ParseAppointmentRow(validRow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appt.ID != "APPT123X" {
		t.Errorf("ID = %s", appt.ID)
	}
	if appt.Status != StatusUpcoming {
		t.Errorf("Status = %s", appt.Status)
	}
	if !appt.IsPremium {
		t.Error("IsPremium lost")
	}
	if appt.BookingTime.IsZero() {
		t.Error("BookingTime lost")
	}
}

func TestParseAppointmentRowCriticalFields(t *testing.T) {
	critical := []string{"_id", "patient_id", "doctor_id", "hospital_id", "slot_id", "date", "status"}

	for _, field := range critical {
		t.Run("missing "+field, func(t *testing.T) {
			row := validRow()
			delete(row, field)

			_, err := ParseAppointmentRow(row)
			if !apperrors.IsCode(err, apperrors.CodeInvalidData) {
				t.Errorf("missing %s should yield INVALID_DATA, got %v", field, err)
			}
		})

		t.Run("mistyped "+field, func(t *testing.T) {
			row := validRow()
			row[field] = 42

			_, err := ParseAppointmentRow(row)
			if !apperrors.IsCode(err, apperrors.CodeInvalidData) {
				t.Errorf("mistyped %s should yield INVALID_DATA, got %v", field, err)
			}
		})
	}
}

func TestParseAppointmentRowOptionalFieldsDefault(t *testing.T) {
	row := validRow()
	delete(row, "reason")
	delete(row, "is_premium")
	delete(row, "booking_time")

	appt, err := ParseAppointmentRow(row)
	if err != nil {
		t.Fatalf("optional fields should not fail the row: %v", err)
	}

	if appt.Reason != "" || appt.IsPremium || !appt.BookingTime.IsZero() {
		t.Errorf("optional fields should default, got %+v", appt)
	}
}

func TestParseAppointmentRowUnknownStatus(t *testing.T) {
	row := validRow()
	row["status"] = "rescheduled"

	_, err := ParseAppointmentRow(row)
	if !apperrors.IsCode(err, apperrors.CodeInvalidData) {
		t.Errorf("unknown status should yield INVALID_DATA, got %v", err)
	}
}
