package service

import (
	"sync"
	"testing"

	"mediops/pkg/model"
)

func TestPatientCacheRoundTrip(t *testing.T) {
	c := newPatientCache()
	defer c.Stop()

	if _, ok := c.Get("PAT00001"); ok {
		t.Error("empty cache reported a hit")
	}

	appts := []*model.Appointment{{ID: "APPT001A", PatientID: "PAT00001"}}
	c.Set("PAT00001", appts)

	got, ok := c.Get("PAT00001")
	if !ok || len(got) != 1 || got[0].ID != "APPT001A" {
		t.Errorf("Get = %v, %v", got, ok)
	}

	c.Invalidate("PAT00001")
	if _, ok := c.Get("PAT00001"); ok {
		t.Error("invalidated entry still present")
	}
}

func TestPatientCacheCopiesSlices(t *testing.T) {
	c := newPatientCache()
	defer c.Stop()

	appts := []*model.Appointment{{ID: "APPT001A"}, {ID: "APPT002B"}}
	c.Set("PAT00001", appts)

	// Mutating the caller's slice must not reach the cached copy.
	appts[0] = &model.Appointment{ID: "APPT999Z"}

	got, _ := c.Get("PAT00001")
	if got[0].ID != "APPT001A" {
		t.Errorf("cached slice aliased caller's backing array: %s", got[0].ID)
	}
}

func TestPatientCacheConcurrentAccess(t *testing.T) {
	c := newPatientCache()
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("PAT00001", []*model.Appointment{{ID: "APPT001A"}})
			c.Get("PAT00001")
			c.Invalidate("PAT00001")
		}()
	}
	wg.Wait()
}
