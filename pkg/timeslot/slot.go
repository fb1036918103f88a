package timeslot

import (
	"fmt"
	"strings"
)

// Slot is a bookable time-of-day range. Invariant: Start < End.
type Slot struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseRange parses a free-form time-range string into a Slot. The two sides
// are separated by "-" and each side may use any form ParseTimeOfDay accepts.
// Historical writes drifted between formats ("9:00-10:00 AM", "09:00-10:00",
// "9-10"), so this is the only parsing entry point for slot strings.
func ParseRange(s string) (Slot, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("time range %q must contain exactly one '-' separator", s)
	}

	start, err := ParseTimeOfDay(parts[0])
	if err != nil {
		return Slot{}, fmt.Errorf("invalid range start: %w", err)
	}
	end, err := ParseTimeOfDay(parts[1])
	if err != nil {
		return Slot{}, fmt.Errorf("invalid range end: %w", err)
	}
	if !start.Before(end) {
		return Slot{}, fmt.Errorf("range start %s must be before end %s", start, end)
	}

	return Slot{Start: start, End: end}, nil
}

// Key returns the canonical "HH:MM-HH:MM" identifier for the slot.
func (s Slot) Key() string {
	return s.Start.String() + "-" + s.End.String()
}

// Normalize canonicalizes a time-range string to "HH:MM-HH:MM". It is
// idempotent: normalizing an already-canonical string returns it unchanged.
func Normalize(s string) (string, error) {
	slot, err := ParseRange(s)
	if err != nil {
		return "", err
	}
	return slot.Key(), nil
}

// Equivalent reports whether two slot strings denote the same range,
// comparing normalized start and end components independently. Raw string
// comparison is never safe against persisted format drift.
func Equivalent(a, b string) bool {
	sa, err := ParseRange(a)
	if err != nil {
		return false
	}
	sb, err := ParseRange(b)
	if err != nil {
		return false
	}
	return sa.Start == sb.Start && sa.End == sb.End
}
