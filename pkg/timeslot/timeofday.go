package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a clock time with minute precision. The zero value is midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a single clock-time string. Accepted forms: 24-hour
// with or without a leading zero ("9:30", "09:30", "17:00"), a bare hour
// ("9", "17"), and 12-hour with an AM/PM suffix ("9:30 AM", "5PM").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return TimeOfDay{}, fmt.Errorf("empty time string")
	}

	meridiem := ""
	upper := strings.ToUpper(raw)
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			raw = strings.TrimSpace(raw[:len(raw)-len(suffix)])
			break
		}
	}
	if raw == "" {
		return TimeOfDay{}, fmt.Errorf("missing time before %s suffix in %q", meridiem, s)
	}

	hourPart := raw
	minutePart := "0"
	if idx := strings.Index(raw, ":"); idx >= 0 {
		hourPart = raw[:idx]
		minutePart = raw[idx+1:]
	}

	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minutePart))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("minute out of range in %q: %d", s, minute)
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, fmt.Errorf("12-hour value out of range in %q: %d", s, hour)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, fmt.Errorf("12-hour value out of range in %q: %d", s, hour)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return TimeOfDay{}, fmt.Errorf("hour out of range in %q: %d", s, hour)
		}
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String returns the canonical zero-padded 24-hour form, e.g. "09:00".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// Minutes returns the offset from midnight in minutes. Useful for sorting.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}
