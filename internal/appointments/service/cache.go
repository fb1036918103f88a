package service

import "mediops/pkg/model"

// patientCache keeps each patient's parsed appointment list behind a single
// owner goroutine. Every access is a closure sent over the ops channel, so
// the map needs no lock. Stop closes the channel; no operation may be
// issued after it.
type patientCache struct {
	ops chan func(entries map[string][]*model.Appointment)
}

func newPatientCache() *patientCache {
	c := &patientCache{
		ops: make(chan func(entries map[string][]*model.Appointment)),
	}
	go c.run()
	return c
}

func (c *patientCache) run() {
	entries := make(map[string][]*model.Appointment)
	for op := range c.ops {
		op(entries)
	}
}

func (c *patientCache) Get(patientID string) ([]*model.Appointment, bool) {
	type result struct {
		appts []*model.Appointment
		ok    bool
	}
	reply := make(chan result, 1)

	c.ops <- func(entries map[string][]*model.Appointment) {
		appts, ok := entries[patientID]
		if !ok {
			reply <- result{nil, false}
			return
		}
		out := make([]*model.Appointment, len(appts))
		copy(out, appts)
		reply <- result{out, true}
	}

	r := <-reply
	return r.appts, r.ok
}

func (c *patientCache) Set(patientID string, appts []*model.Appointment) {
	stored := make([]*model.Appointment, len(appts))
	copy(stored, appts)

	done := make(chan struct{})
	c.ops <- func(entries map[string][]*model.Appointment) {
		entries[patientID] = stored
		close(done)
	}
	<-done
}

func (c *patientCache) Invalidate(patientID string) {
	done := make(chan struct{})
	c.ops <- func(entries map[string][]*model.Appointment) {
		delete(entries, patientID)
		close(done)
	}
	<-done
}

func (c *patientCache) Stop() {
	close(c.ops)
}
