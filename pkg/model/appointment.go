package model

import (
	"fmt"
	"time"

	apperrors "mediops/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment is one booked visit. The APPT token doubles as the Mongo _id
// so the primary key enforces token uniqueness.
type Appointment struct {
	ID          string            `json:"appointment_id" bson:"_id" validate:"required,appointment_id"`
	PatientID   string            `json:"patient_id" bson:"patient_id" validate:"required,patient_id"`
	DoctorID    string            `json:"doctor_id" bson:"doctor_id" validate:"required,doctor_id"`
	HospitalID  string            `json:"hospital_id" bson:"hospital_id" validate:"required,min=2,max=50"`
	SlotID      string            `json:"slot_id" bson:"slot_id" validate:"required,slot_key"`
	Date        string            `json:"date" bson:"date" validate:"required,calendar_date"`
	BookingTime time.Time         `json:"booking_time" bson:"booking_time"`
	Status      AppointmentStatus `json:"status" bson:"status" validate:"required,appointment_status"`
	Reason      string            `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=500"`
	IsPremium   bool              `json:"is_premium" bson:"is_premium"`
}

// CreateAppointmentRequest is the booking payload. The appointment ID,
// booking time, status and premium flag are assigned server side.
type CreateAppointmentRequest struct {
	PatientID  string `json:"patient_id" validate:"required,patient_id"`
	DoctorID   string `json:"doctor_id" validate:"required,doctor_id"`
	HospitalID string `json:"hospital_id" validate:"required,min=2,max=50"`
	SlotID     string `json:"slot_id" validate:"required"`
	Date       string `json:"date" validate:"required,calendar_date"`
	Reason     string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// UpdateStatusRequest carries a lifecycle transition for one appointment.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,appointment_status"`
}

// ParseAppointmentRow converts a raw stored document into an Appointment.
// Critical fields that are missing or mistyped fail the row with
// INVALID_DATA; optional fields default silently. List reads drop failed
// rows instead of failing the whole response.
func ParseAppointmentRow(row bson.M) (*Appointment, error) {
	appt := &Appointment{}

	id, err := requireString(row, "_id")
	if err != nil {
		return nil, err
	}
	appt.ID = id

	appt.PatientID, err = requireString(row, "patient_id")
	if err != nil {
		return nil, err
	}

	appt.DoctorID, err = requireString(row, "doctor_id")
	if err != nil {
		return nil, err
	}

	appt.HospitalID, err = requireString(row, "hospital_id")
	if err != nil {
		return nil, err
	}

	appt.SlotID, err = requireString(row, "slot_id")
	if err != nil {
		return nil, err
	}

	appt.Date, err = requireString(row, "date")
	if err != nil {
		return nil, err
	}

	rawStatus, err := requireString(row, "status")
	if err != nil {
		return nil, err
	}
	status, err := ParseAppointmentStatus(rawStatus)
	if err != nil {
		return nil, apperrors.InvalidData(
			fmt.Sprintf("appointment %s has unknown status %q", appt.ID, rawStatus), err)
	}
	appt.Status = status

	// Non-critical fields degrade to zero values.
	if reason, ok := row["reason"].(string); ok {
		appt.Reason = reason
	}
	if premium, ok := row["is_premium"].(bool); ok {
		appt.IsPremium = premium
	}
	switch t := row["booking_time"].(type) {
	case time.Time:
		appt.BookingTime = t
	case primitive.DateTime:
		appt.BookingTime = t.Time()
	}

	return appt, nil
}

func requireString(row bson.M, field string) (string, error) {
	raw, exists := row[field]
	if !exists {
		return "", apperrors.InvalidData(fmt.Sprintf("appointment record missing %s", field), nil)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", apperrors.InvalidData(fmt.Sprintf("appointment record has invalid %s", field), nil)
	}
	return s, nil
}
