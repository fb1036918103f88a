package service

import (
	"context"
	"errors"
	"time"

	scheduleerrors "mediops/internal/schedules/errors"
	"mediops/internal/schedules/repository"
	"mediops/internal/schedules/validator"
	"mediops/pkg/config"
	apperrors "mediops/pkg/errors"
	"mediops/pkg/model"
	"mediops/pkg/sanitizer"
	"mediops/pkg/timeslot"
)

// WeekSelection is the admin's sparse input: slot keys (any accepted
// format) for the weekday block and the weekend block. The builder expands
// it to the full 7-day grid.
type WeekSelection struct {
	DoctorID           string   `json:"doctor_id"`
	HospitalID         string   `json:"hospital_id"`
	WeekdaySlots       []string `json:"weekday_slots"`
	WeekendSlots       []string `json:"weekend_slots"`
	EffectiveFrom      string   `json:"effective_from,omitempty"`
	EffectiveUntil     string   `json:"effective_until,omitempty"`
	MaxNormalPatients  int      `json:"max_normal_patients,omitempty"`
	MaxPremiumPatients int      `json:"max_premium_patients,omitempty"`
}

type ScheduleService interface {
	PutFromSelection(ctx context.Context, sel *WeekSelection) (*model.WeeklySchedule, error)
	Get(ctx context.Context, doctorID, hospitalID string) (*model.WeeklySchedule, error)
	AvailableSlots(ctx context.Context, doctorID, hospitalID, date string) ([]model.SlotEntry, error)
	ToggleSlot(selection []string, candidate string) ([]string, error)
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	validator *validator.ScheduleValidator
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	validator *validator.ScheduleValidator,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// BuildWeek expands weekday and weekend selections into the full grid:
// for every catalog slot, one entry per day, available iff the slot is a
// component-wise member of the day block's selection. Five weekday grids
// are identical, as are the two weekend grids.
func BuildWeek(weekdaySlots, weekendSlots []string) (map[string][]model.SlotEntry, error) {
	weekdaySet, err := normalizeSelection(weekdaySlots)
	if err != nil {
		return nil, err
	}
	weekendSet, err := normalizeSelection(weekendSlots)
	if err != nil {
		return nil, err
	}

	weekdayGrid := buildDay(weekdaySet)
	weekendGrid := buildDay(weekendSet)

	week := make(map[string][]model.SlotEntry, len(model.DayNames))
	for _, day := range model.WeekdayNames {
		week[day] = copyEntries(weekdayGrid)
	}
	for _, day := range model.WeekendNames {
		week[day] = copyEntries(weekendGrid)
	}
	return week, nil
}

func normalizeSelection(keys []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(keys))
	for _, raw := range keys {
		key, err := timeslot.Normalize(raw)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid slot selection: " + raw)
		}
		if !timeslot.InCatalog(key) {
			return nil, apperrors.InvalidInput("slot is not in the catalog: " + raw)
		}
		set[key] = struct{}{}
	}
	return set, nil
}

// buildDay emits one entry per catalog slot, in catalog order (ascending
// by start), never omitting an unselected slot.
func buildDay(selected map[string]struct{}) []model.SlotEntry {
	catalog := timeslot.Catalog()
	entries := make([]model.SlotEntry, 0, len(catalog))
	for _, slot := range catalog {
		_, available := selected[slot.Key()]
		entries = append(entries, model.SlotEntry{
			Start:     slot.Start.String(),
			End:       slot.End.String(),
			Available: available,
		})
	}
	return entries
}

func copyEntries(entries []model.SlotEntry) []model.SlotEntry {
	out := make([]model.SlotEntry, len(entries))
	copy(out, entries)
	return out
}

func (s *scheduleService) PutFromSelection(ctx context.Context, sel *WeekSelection) (*model.WeeklySchedule, error) {
	sel.DoctorID = sanitizer.TrimAndNormalize(sel.DoctorID)
	sel.HospitalID = sanitizer.TrimAndNormalize(sel.HospitalID)

	week, err := BuildWeek(sel.WeekdaySlots, sel.WeekendSlots)
	if err != nil {
		return nil, err
	}

	ws := &model.WeeklySchedule{
		DoctorID:           sel.DoctorID,
		HospitalID:         sel.HospitalID,
		Week:               week,
		EffectiveFrom:      sel.EffectiveFrom,
		EffectiveUntil:     sel.EffectiveUntil,
		MaxNormalPatients:  sel.MaxNormalPatients,
		MaxPremiumPatients: sel.MaxPremiumPatients,
	}
	s.applyDefaults(ws)

	if err := s.validator.Validate(ws); err != nil {
		s.cfg.Log.Warn("Weekly schedule validation failed",
			"doctor_id", ws.DoctorID,
			"hospital_id", ws.HospitalID,
			"error", err,
		)
		return nil, apperrors.Validation("Weekly schedule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Upsert(ctx, ws); err != nil {
		s.cfg.Log.Error("Failed to upsert weekly schedule",
			"doctor_id", ws.DoctorID,
			"hospital_id", ws.HospitalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to store weekly schedule", err)
	}

	s.cfg.Log.Info("Weekly schedule stored",
		"doctor_id", ws.DoctorID,
		"hospital_id", ws.HospitalID,
		"weekday_slots", len(sel.WeekdaySlots),
		"weekend_slots", len(sel.WeekendSlots),
	)
	return ws, nil
}

func (s *scheduleService) Get(ctx context.Context, doctorID, hospitalID string) (*model.WeeklySchedule, error) {
	doctorID = sanitizer.TrimAndNormalize(doctorID)
	hospitalID = sanitizer.TrimAndNormalize(hospitalID)
	if doctorID == "" || hospitalID == "" {
		return nil, apperrors.InvalidInput("doctor_id and hospital_id are required")
	}

	ws, err := s.repo.FindByDoctorHospital(ctx, doctorID, hospitalID)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Weekly schedule", doctorID+"/"+hospitalID)
		}
		s.cfg.Log.Error("Failed to get weekly schedule",
			"doctor_id", doctorID,
			"hospital_id", hospitalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve weekly schedule", err)
	}

	return ws, nil
}

// AvailableSlots returns the schedule entries bookable on one calendar
// date: the date's weekday grid filtered to available entries, honoring
// the effective window when set. Catalog order is ascending by start, so
// the result needs no re-sort.
func (s *scheduleService) AvailableSlots(ctx context.Context, doctorID, hospitalID, date string) ([]model.SlotEntry, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be a YYYY-MM-DD calendar date")
	}

	ws, err := s.Get(ctx, doctorID, hospitalID)
	if err != nil {
		return nil, err
	}

	if ws.EffectiveFrom != "" && date < ws.EffectiveFrom {
		return []model.SlotEntry{}, nil
	}
	if ws.EffectiveUntil != "" && date > ws.EffectiveUntil {
		return []model.SlotEntry{}, nil
	}

	entries := ws.Week[model.DayKey(day.Weekday().String())]
	available := make([]model.SlotEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Available {
			continue
		}
		canonical, err := canonicalEntry(entry)
		if err != nil {
			s.cfg.Log.Warn("Skipping unreadable schedule entry",
				"doctor_id", doctorID,
				"hospital_id", hospitalID,
				"start", entry.Start,
				"end", entry.End,
				"error", err,
			)
			continue
		}
		available = append(available, canonical)
	}
	return available, nil
}

// canonicalEntry re-canonicalizes a stored entry's times. Persisted grids
// written before the current format rules may carry drifted values.
func canonicalEntry(entry model.SlotEntry) (model.SlotEntry, error) {
	start, err := timeslot.ParseTimeOfDay(entry.Start)
	if err != nil {
		return model.SlotEntry{}, err
	}
	end, err := timeslot.ParseTimeOfDay(entry.End)
	if err != nil {
		return model.SlotEntry{}, err
	}
	entry.Start = start.String()
	entry.End = end.String()
	return entry, nil
}

// ToggleSlot flips the candidate's membership in a selection set using
// component-wise matching, so format drift inside the set never defeats
// the toggle. Toggling twice restores the original set.
func (s *scheduleService) ToggleSlot(selection []string, candidate string) ([]string, error) {
	key, err := timeslot.Normalize(candidate)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid slot: " + candidate)
	}

	for i, member := range selection {
		if timeslot.Equivalent(member, key) {
			return append(selection[:i:i], selection[i+1:]...), nil
		}
	}
	return append(selection, key), nil
}

func (s *scheduleService) applyDefaults(ws *model.WeeklySchedule) {
	if ws.MaxNormalPatients == 0 {
		ws.MaxNormalPatients = s.cfg.MaxNormalPatients
	}
	if ws.MaxPremiumPatients == 0 {
		ws.MaxPremiumPatients = s.cfg.MaxPremiumPatients
	}
}
