package model

import (
	"encoding/json"
	"testing"
)

func TestWeeklyScheduleJSONShape(t *testing.T) {
	ws := WeeklySchedule{
		DoctorID:   "DOC001",
		HospitalID: "HOSP01",
		Week: map[string][]SlotEntry{
			"monday": {{Start: "09:00", End: "10:00", Available: true}},
		},
		EffectiveFrom:      "2026-01-01",
		MaxNormalPatients:  6,
		MaxPremiumPatients: 2,
	}

	data, err := json.Marshal(ws)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := decoded["weekly_schedule"]; !ok {
		t.Error("week map should serialize under weekly_schedule")
	}
	if _, ok := decoded["effective_until"]; ok {
		t.Error("unset effective_until should be omitted")
	}
	if decoded["max_normal_patients"] != float64(6) {
		t.Errorf("max_normal_patients = %v", decoded["max_normal_patients"])
	}
}

func TestDayKey(t *testing.T) {
	if got := DayKey("Wednesday"); got != "wednesday" {
		t.Errorf("DayKey(Wednesday) = %s", got)
	}
	if got := DayKey("notaday"); got != "" {
		t.Errorf("DayKey(notaday) = %s", got)
	}
}

func TestOccupancyKeyIncludesTier(t *testing.T) {
	normal := OccupancyKey("DOC001", "HOSP01", "2026-03-15", "09:00-10:00", TierNormal)
	premium := OccupancyKey("DOC001", "HOSP01", "2026-03-15", "09:00-10:00", TierPremium)

	if normal == premium {
		t.Error("tiers must map to distinct buckets")
	}
}
