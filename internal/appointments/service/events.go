package service

import (
	"context"
	"time"

	"mediops/pkg/kafka"
	"mediops/pkg/model"
)

const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"

	eventSchemaVersion = "1"
	eventSource        = "appointments"
)

// AppointmentEvent is the payload published for every booking and lifecycle
// change. Messages are keyed by patient ID so one patient's events stay
// ordered on a single partition.
type AppointmentEvent struct {
	AppointmentID  string    `json:"appointment_id"`
	PatientID      string    `json:"patient_id"`
	DoctorID       string    `json:"doctor_id"`
	HospitalID     string    `json:"hospital_id"`
	SlotID         string    `json:"slot_id"`
	Date           string    `json:"date"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	AppointmentCreated(ctx context.Context, appt *model.Appointment) error
	StatusChanged(ctx context.Context, appt *model.Appointment, previous model.AppointmentStatus) error
	Close() error
}

type kafkaEventPublisher struct {
	producer *kafka.Producer
}

func NewKafkaEventPublisher(producer *kafka.Producer) EventPublisher {
	return &kafkaEventPublisher{producer: producer}
}

func (p *kafkaEventPublisher) AppointmentCreated(ctx context.Context, appt *model.Appointment) error {
	return p.publish(ctx, EventAppointmentCreated, appt, "")
}

func (p *kafkaEventPublisher) StatusChanged(ctx context.Context, appt *model.Appointment, previous model.AppointmentStatus) error {
	return p.publish(ctx, EventAppointmentStatusChanged, appt, previous.String())
}

func (p *kafkaEventPublisher) publish(ctx context.Context, eventType string, appt *model.Appointment, previous string) error {
	event := AppointmentEvent{
		AppointmentID:  appt.ID,
		PatientID:      appt.PatientID,
		DoctorID:       appt.DoctorID,
		HospitalID:     appt.HospitalID,
		SlotID:         appt.SlotID,
		Date:           appt.Date,
		Status:         appt.Status.String(),
		PreviousStatus: previous,
		OccurredAt:     time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(appt.PatientID).
		WithEventType(eventType).
		WithSource(eventSource).
		WithSchemaVersion(eventSchemaVersion).
		WithValue(event).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaEventPublisher) Close() error {
	return p.producer.Close()
}
