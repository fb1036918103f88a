package model

import "fmt"

// Tier names the capacity bucket an appointment counts against. Premium
// patients never spill into the normal bucket.
type Tier string

const (
	TierNormal  Tier = "normal"
	TierPremium Tier = "premium"
)

func TierFor(isPremium bool) Tier {
	if isPremium {
		return TierPremium
	}
	return TierNormal
}

// SlotOccupancy is the per-bucket booking counter. One document per
// (doctor, hospital, date, slot, tier); Count is advanced with a filtered
// increment so it can never pass Capacity.
type SlotOccupancy struct {
	ID       string `bson:"_id"`
	Count    int    `bson:"count"`
	Capacity int    `bson:"capacity"`
}

// OccupancyKey builds the composite _id for a booking bucket.
func OccupancyKey(doctorID, hospitalID, date, slotID string, tier Tier) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", doctorID, hospitalID, date, slotID, tier)
}
