package model

// SlotEntry is one bookable window within a day's schedule. Start and End
// are canonical "HH:MM" strings; Available marks whether the doctor takes
// bookings in this window.
type SlotEntry struct {
	Start     string `json:"start" bson:"start" validate:"required,time_of_day"`
	End       string `json:"end" bson:"end" validate:"required,time_of_day"`
	Available bool   `json:"available" bson:"available"`
}

// DayNames are the weekly_schedule map keys, in week order starting Monday.
var DayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var WeekdayNames = DayNames[:5]
var WeekendNames = DayNames[5:]

// WeeklySchedule is a doctor's recurring availability at one hospital.
// One document per (doctor, hospital) pair; upserts replace the whole week.
type WeeklySchedule struct {
	ID                 string                 `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	DoctorID           string                 `json:"doctor_id" bson:"doctor_id" validate:"required,doctor_id"`
	HospitalID         string                 `json:"hospital_id" bson:"hospital_id" validate:"required,min=2,max=50"`
	Week               map[string][]SlotEntry `json:"weekly_schedule" bson:"weekly_schedule" validate:"required,uniform_week"`
	EffectiveFrom      string                 `json:"effective_from,omitempty" bson:"effective_from,omitempty" validate:"omitempty,calendar_date"`
	EffectiveUntil     string                 `json:"effective_until,omitempty" bson:"effective_until,omitempty" validate:"omitempty,calendar_date"`
	MaxNormalPatients  int                    `json:"max_normal_patients" bson:"max_normal_patients" validate:"required,min=1,max=100"`
	MaxPremiumPatients int                    `json:"max_premium_patients" bson:"max_premium_patients" validate:"required,min=1,max=100"`
}

// DayKey maps a calendar weekday name (as produced by time.Weekday) to the
// schedule's lowercase day key.
func DayKey(weekday string) string {
	switch weekday {
	case "Monday":
		return "monday"
	case "Tuesday":
		return "tuesday"
	case "Wednesday":
		return "wednesday"
	case "Thursday":
		return "thursday"
	case "Friday":
		return "friday"
	case "Saturday":
		return "saturday"
	case "Sunday":
		return "sunday"
	}
	return ""
}
