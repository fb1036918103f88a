package model

import "testing"

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusUpcoming, StatusCompleted, true},
		{StatusUpcoming, StatusCancelled, true},
		{StatusUpcoming, StatusMissed, true},
		{StatusUpcoming, StatusUpcoming, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusUpcoming, false},
		{StatusCancelled, StatusMissed, false},
		{StatusMissed, StatusCompleted, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if StatusUpcoming.IsTerminal() {
		t.Error("upcoming should not be terminal")
	}
	for _, s := range []AppointmentStatus{StatusCompleted, StatusCancelled, StatusMissed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	if _, err := ParseAppointmentStatus("upcoming"); err != nil {
		t.Errorf("valid status rejected: %v", err)
	}
	if _, err := ParseAppointmentStatus("rescheduled"); err == nil {
		t.Error("unknown status accepted")
	}
	if _, err := ParseAppointmentStatus(""); err == nil {
		t.Error("empty status accepted")
	}
}
