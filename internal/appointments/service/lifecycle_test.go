package service

import (
	"context"
	"testing"

	"mediops/pkg/kafka"
	"mediops/pkg/logger"
	"mediops/pkg/model"
)

func lifecycleMessage(t *testing.T, cmd LifecycleCommand) kafka.Message {
	t.Helper()
	return kafka.NewMessage().
		WithKey(cmd.AppointmentID).
		WithEventType("appointment.lifecycle").
		WithValue(cmd).
		Build()
}

func TestLifecycleHandlerAppliesTransition(t *testing.T) {
	f := newFixture(t)
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	handle := NewLifecycleHandler(f.svc, log)

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	msg := lifecycleMessage(t, LifecycleCommand{AppointmentID: appt.ID, Status: "completed"})
	if err := handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := f.repo.FindByID(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if stored.Status != model.StatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
}

func TestLifecycleHandlerDropsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	handle := NewLifecycleHandler(f.svc, log)

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), appt.ID, "completed"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Replaying a transition out of a terminal state must ack, not retry.
	msg := lifecycleMessage(t, LifecycleCommand{AppointmentID: appt.ID, Status: "missed"})
	if err := handle(context.Background(), msg); err != nil {
		t.Errorf("invalid transition should be dropped, got %v", err)
	}
}

func TestLifecycleHandlerDropsUnknownAppointment(t *testing.T) {
	f := newFixture(t)
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	handle := NewLifecycleHandler(f.svc, log)

	msg := lifecycleMessage(t, LifecycleCommand{AppointmentID: "APPT123A", Status: "completed"})
	if err := handle(context.Background(), msg); err != nil {
		t.Errorf("unknown appointment should be dropped, got %v", err)
	}
}

func TestLifecycleHandlerDropsBadPayload(t *testing.T) {
	f := newFixture(t)
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	handle := NewLifecycleHandler(f.svc, log)

	msg := kafka.NewMessage().WithRawValue([]byte("{not json")).Build()
	if err := handle(context.Background(), msg); err != nil {
		t.Errorf("undecodable payload should be dropped, got %v", err)
	}
}
