package model

import apperrors "mediops/pkg/errors"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusUpcoming  AppointmentStatus = "upcoming"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusMissed    AppointmentStatus = "missed"
)

// transitions is the full state machine. Upcoming is the only state with
// outgoing edges; the other three are terminal.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusUpcoming:  {StatusCompleted, StatusCancelled, StatusMissed},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusMissed:    {},
}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", apperrors.InvalidInput("unknown appointment status: " + s)
	}
	return status, nil
}

func (s AppointmentStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s AppointmentStatus) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the state machine permits moving from
// s to target.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) String() string {
	return string(s)
}
