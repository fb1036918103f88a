package service

import (
	"context"

	apperrors "mediops/pkg/errors"
	"mediops/pkg/kafka"
	"mediops/pkg/logger"
)

// LifecycleCommand asks for one status transition, typically emitted by the
// clinic desk system after a visit ends or a patient no-shows.
type LifecycleCommand struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

// NewLifecycleHandler adapts the service to the consumer loop. Commands the
// state machine rejects are acknowledged rather than retried: replaying an
// invalid transition can never make it valid.
func NewLifecycleHandler(svc AppointmentService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var cmd LifecycleCommand
		if err := msg.DecodeValue(&cmd); err != nil {
			log.Error("Dropping undecodable lifecycle command",
				"event_id", msg.GetEventID(),
				"error", err,
			)
			return nil
		}

		_, err := svc.UpdateStatus(ctx, cmd.AppointmentID, cmd.Status)
		if err == nil {
			return nil
		}

		switch {
		case apperrors.IsCode(err, apperrors.CodeInvalidTransition),
			apperrors.IsCode(err, apperrors.CodeInvalidInput),
			apperrors.IsCode(err, apperrors.CodeNotFound):
			log.Warn("Dropping unapplicable lifecycle command",
				"event_id", msg.GetEventID(),
				"appointment_id", cmd.AppointmentID,
				"status", cmd.Status,
				"error", err,
			)
			return nil
		default:
			return err
		}
	}
}
