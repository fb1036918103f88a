package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmenterrors "mediops/internal/appointments/errors"
	"mediops/internal/appointments/repository"
	"mediops/internal/appointments/validator"
	scheduleerrors "mediops/internal/schedules/errors"
	schedulerepo "mediops/internal/schedules/repository"
	"mediops/pkg/config"
	apperrors "mediops/pkg/errors"
	"mediops/pkg/flow"
	"mediops/pkg/identifier"
	"mediops/pkg/model"
	"mediops/pkg/sanitizer"
	"mediops/pkg/timeslot"
)

type AppointmentService interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	ListByPatient(ctx context.Context, patientID string, limit int, offset int64) ([]*model.Appointment, int64, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error)
	Stop()
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	occupancy repository.OccupancyRepository
	patients  repository.PatientRepository
	schedules schedulerepo.ScheduleRepository
	validator *validator.AppointmentValidator
	publisher EventPublisher
	cache     *patientCache
	flows     *flow.Engine
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	occupancy repository.OccupancyRepository,
	patients repository.PatientRepository,
	schedules schedulerepo.ScheduleRepository,
	validator *validator.AppointmentValidator,
	publisher EventPublisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		occupancy: occupancy,
		patients:  patients,
		schedules: schedules,
		validator: validator,
		publisher: publisher,
		cache:     newPatientCache(),
		flows:     flow.NewEngine(cfg.Log),
		cfg:       cfg,
	}
}

// Create books an appointment as a compensated flow: resolve the patient,
// verify the slot is offered on that date, take a capacity seat, insert the
// record under a fresh token, then read back what was stored. A failure
// after the reservation releases the seat; a failure after the insert also
// deletes the record.
func (s *appointmentService) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	s.sanitizeCreate(req)

	slotID, err := timeslot.Normalize(req.SlotID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid slot: " + req.SlotID)
	}
	req.SlotID = slotID

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Appointment create validation failed", "patient_id", req.PatientID, "error", err)
		return nil, apperrors.Validation("Appointment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var (
		patient      *model.Patient
		ws           *model.WeeklySchedule
		occupancyKey string
		appt         *model.Appointment
		stored       *model.Appointment
	)

	steps := []*flow.Step{
		flow.NewStep("resolve patient", func(ctx context.Context) error {
			patient, err = s.resolvePatient(ctx, req.PatientID)
			return err
		}),
		flow.NewStep("verify availability", func(ctx context.Context) error {
			ws, err = s.loadSchedule(ctx, req.DoctorID, req.HospitalID)
			if err != nil {
				return err
			}
			if err := verifySlotOffered(ws, req.Date, req.SlotID); err != nil {
				return err
			}
			occupancyKey = model.OccupancyKey(req.DoctorID, req.HospitalID, req.Date, req.SlotID, model.TierFor(patient.IsPremium))
			return nil
		}),
		flow.NewStep("reserve capacity", func(ctx context.Context) error {
			capacity := ws.MaxNormalPatients
			if patient.IsPremium {
				capacity = ws.MaxPremiumPatients
			}
			return s.reserve(ctx, occupancyKey, capacity)
		}).WithCompensation(func(ctx context.Context) error {
			return s.occupancy.Release(ctx, occupancyKey)
		}),
		flow.NewStep("insert appointment", func(ctx context.Context) error {
			appt = &model.Appointment{
				PatientID:   patient.DisplayID,
				DoctorID:    req.DoctorID,
				HospitalID:  req.HospitalID,
				SlotID:      req.SlotID,
				Date:        req.Date,
				BookingTime: time.Now().UTC().Truncate(time.Millisecond),
				Status:      model.StatusUpcoming,
				Reason:      req.Reason,
				IsPremium:   patient.IsPremium,
			}
			return s.insertWithFreshToken(ctx, appt)
		}).WithCompensation(func(ctx context.Context) error {
			return s.repo.Delete(ctx, appt.ID)
		}),
		flow.NewStep("read back", func(ctx context.Context) error {
			stored, err = s.repo.FindByID(ctx, appt.ID)
			return err
		}),
	}

	if err := s.flows.Run(ctx, "book appointment", steps); err != nil {
		s.cfg.Log.Error("Failed to book appointment",
			"patient_id", req.PatientID,
			"doctor_id", req.DoctorID,
			"date", req.Date,
			"slot_id", req.SlotID,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to book appointment", err)
	}

	if err := s.publisher.AppointmentCreated(ctx, stored); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment created event",
			"appointment_id", stored.ID,
			"error", err,
		)
	}
	s.cache.Invalidate(stored.PatientID)

	s.cfg.Log.Info("Appointment booked",
		"appointment_id", stored.ID,
		"patient_id", stored.PatientID,
		"doctor_id", stored.DoctorID,
		"date", stored.Date,
		"slot_id", stored.SlotID,
		"is_premium", stored.IsPremium,
	)
	return stored, nil
}

// ListByPatient returns the patient's appointments, newest window first by
// date. Rows that fail parsing are skipped and logged rather than failing
// the list; the per-patient cache absorbs repeat reads until the next write.
func (s *appointmentService) ListByPatient(ctx context.Context, patientID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	patientID = sanitizer.TrimAndNormalize(patientID)
	if !identifier.IsPatientDisplayID(patientID) {
		return nil, 0, apperrors.InvalidInput("patient_id must match the PAT followed by 5 digits format")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	appts, ok := s.cache.Get(patientID)
	if !ok {
		rows, err := s.repo.FindRawByPatient(ctx, patientID)
		if err != nil {
			s.cfg.Log.Error("Failed to list appointments", "patient_id", patientID, "error", err)
			return nil, 0, apperrors.Internal("Failed to retrieve appointments", err)
		}

		appts = make([]*model.Appointment, 0, len(rows))
		for _, row := range rows {
			appt, err := model.ParseAppointmentRow(row)
			if err != nil {
				s.cfg.Log.Warn("Skipping unreadable appointment record",
					"patient_id", patientID,
					"raw_id", row["_id"],
					"error", err,
				)
				continue
			}
			appts = append(appts, appt)
		}
		s.cache.Set(patientID, appts)
	}

	total := int64(len(appts))
	if offset >= total {
		return []*model.Appointment{}, total, nil
	}
	end := offset + int64(limit)
	if end > total {
		end = total
	}
	return appts[offset:end], total, nil
}

// UpdateStatus applies one lifecycle transition. The write is conditional
// on the status that was read, so two racing transitions cannot both win;
// the loser is reported as an invalid transition from the fresh status.
func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	id = sanitizer.TrimAndNormalize(id)
	if !identifier.IsAppointmentID(id) {
		return nil, apperrors.InvalidInput("appointment ID must match the APPT token format")
	}

	target, err := model.ParseAppointmentStatus(status)
	if err != nil {
		return nil, err
	}

	current, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(target) {
		return nil, apperrors.InvalidTransition(current.Status.String(), target.String())
	}

	if err := s.repo.UpdateStatus(ctx, id, current.Status, target); err != nil {
		if errors.Is(err, appointmenterrors.ErrStatusConflict) {
			fresh, readErr := s.findByID(ctx, id)
			if readErr != nil {
				return nil, readErr
			}
			return nil, apperrors.InvalidTransition(fresh.Status.String(), target.String())
		}
		s.cfg.Log.Error("Failed to update appointment status", "appointment_id", id, "error", err)
		return nil, apperrors.Internal("Failed to update appointment status", err)
	}

	previous := current.Status
	current.Status = target

	if target == model.StatusCancelled {
		key := model.OccupancyKey(current.DoctorID, current.HospitalID, current.Date, current.SlotID, model.TierFor(current.IsPremium))
		if err := s.occupancy.Release(ctx, key); err != nil {
			s.cfg.Log.Warn("Failed to release capacity for cancelled appointment",
				"appointment_id", id,
				"occupancy_key", key,
				"error", err,
			)
		}
	}

	if err := s.publisher.StatusChanged(ctx, current, previous); err != nil {
		s.cfg.Log.Warn("Failed to publish status changed event",
			"appointment_id", id,
			"error", err,
		)
	}
	s.cache.Invalidate(current.PatientID)

	s.cfg.Log.Info("Appointment status updated",
		"appointment_id", id,
		"from", previous,
		"to", target,
	)
	return current, nil
}

func (s *appointmentService) Stop() {
	s.cache.Stop()
}

// --- Helpers ---

func (s *appointmentService) sanitizeCreate(req *model.CreateAppointmentRequest) {
	req.PatientID = sanitizer.TrimAndNormalize(req.PatientID)
	req.DoctorID = sanitizer.TrimAndNormalize(req.DoctorID)
	req.HospitalID = sanitizer.TrimAndNormalize(req.HospitalID)
	req.SlotID = sanitizer.TrimAndNormalize(req.SlotID)
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.Reason = sanitizer.NormalizeReason(req.Reason)
}

func (s *appointmentService) resolvePatient(ctx context.Context, displayID string) (*model.Patient, error) {
	patient, err := s.patients.FindByDisplayID(ctx, displayID)
	if err != nil {
		if errors.Is(err, appointmenterrors.ErrPatientNotFound) {
			return nil, apperrors.NotFoundWithID("Patient", displayID)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to resolve patient", err)
	}
	return patient, nil
}

func (s *appointmentService) loadSchedule(ctx context.Context, doctorID, hospitalID string) (*model.WeeklySchedule, error) {
	ws, err := s.schedules.FindByDoctorHospital(ctx, doctorID, hospitalID)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Weekly schedule", doctorID+"/"+hospitalID)
		}
		return nil, apperrors.Internal("Failed to load weekly schedule", err)
	}
	return ws, nil
}

// verifySlotOffered checks the requested slot is marked available on the
// date's weekday grid and the date falls inside the schedule's effective
// window. Stored entries may carry historical format drift, so matching is
// component-wise, never a raw string compare.
func verifySlotOffered(ws *model.WeeklySchedule, date, slotID string) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return apperrors.InvalidInput("date must be a YYYY-MM-DD calendar date")
	}

	if ws.EffectiveFrom != "" && date < ws.EffectiveFrom {
		return apperrors.Conflict("Schedule is not effective on the requested date")
	}
	if ws.EffectiveUntil != "" && date > ws.EffectiveUntil {
		return apperrors.Conflict("Schedule is not effective on the requested date")
	}

	for _, entry := range ws.Week[model.DayKey(day.Weekday().String())] {
		if timeslot.Equivalent(entry.Start+"-"+entry.End, slotID) {
			if entry.Available {
				return nil
			}
			break
		}
	}
	return apperrors.Conflict(fmt.Sprintf("Slot %s is not available on %s", slotID, date))
}

func (s *appointmentService) reserve(ctx context.Context, key string, capacity int) error {
	if err := s.occupancy.Reserve(ctx, key, capacity); err != nil {
		if errors.Is(err, appointmenterrors.ErrCapacityFull) {
			return apperrors.CapacityExceeded("No capacity left for this slot", map[string]any{
				"occupancy_key": key,
				"capacity":      capacity,
			})
		}
		if errors.Is(err, appointmenterrors.ErrReserveContention) {
			return apperrors.Conflict("Slot reservation is contended, please retry")
		}
		return apperrors.Internal("Failed to reserve slot capacity", err)
	}
	return nil
}

// insertWithFreshToken assigns a new APPT token and inserts, regenerating
// on a primary key collision. The token space is small, so collisions are
// expected and bounded retries keep the tail latency sane.
func (s *appointmentService) insertWithFreshToken(ctx context.Context, appt *model.Appointment) error {
	for attempt := 0; attempt < s.cfg.BookingIDAttempts; attempt++ {
		appt.ID = identifier.NewAppointmentID()
		err := s.repo.Insert(ctx, appt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, appointmenterrors.ErrDuplicateID) {
			return apperrors.Internal("Failed to insert appointment", err)
		}
		s.cfg.Log.Debug("Appointment token collision, regenerating",
			"appointment_id", appt.ID,
			"attempt", attempt+1,
		)
	}
	return apperrors.Conflict("Could not allocate a unique appointment ID, please retry")
}

func (s *appointmentService) findByID(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appt, nil
}
