package timeslot

// Catalog returns the shared enumeration of bookable slots: contiguous
// one-hour ranges from 00:00 to 23:00, ordered by start time. Every schedule
// producer and consumer references this list; the last hour of the day is
// excluded because a slot cannot wrap past midnight.
func Catalog() []Slot {
	slots := make([]Slot, 0, 23)
	for hour := 0; hour < 23; hour++ {
		slots = append(slots, Slot{
			Start: TimeOfDay{Hour: hour},
			End:   TimeOfDay{Hour: hour + 1},
		})
	}
	return slots
}

// InCatalog reports whether the given slot string matches a catalog entry,
// using component-wise comparison.
func InCatalog(s string) bool {
	slot, err := ParseRange(s)
	if err != nil {
		return false
	}
	for _, c := range Catalog() {
		if c == slot {
			return true
		}
	}
	return false
}
