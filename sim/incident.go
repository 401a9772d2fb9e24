package sim

import "time"

// TriggerAccident attempts to inject an incident (spec §4.6): the
// lowest-ID vehicle in the middle lane (lane 1) with 1000 < x < 4000 is
// marked crashed and pinned at v=0, a=0 for incidentDuration seconds of
// *wall-clock* time, not simulated time (spec §5, §9) - the host's
// perception of "how long was this lane blocked" should not speed up or
// slow down with config.TimeScale.
//
// No-op if no eligible vehicle exists, or if an incident is already
// active (idempotent).
func (m *Model) TriggerAccident() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.incident != nil {
		return
	}

	var target *Vehicle
	for _, v := range m.vehicles {
		if v.Lane != incidentLane || v.Crashed {
			continue
		}
		if v.X <= incidentXMin || v.X >= incidentXMax {
			continue
		}
		if target == nil || v.ID < target.ID {
			target = v
		}
	}
	if target == nil {
		return
	}

	target.Crashed = true
	target.V = 0
	target.A = 0

	m.incident = &Incident{VehicleID: target.ID, Lane: target.Lane, Location: target.X}
	vehicleID := target.ID
	m.incidentTimer = m.wallClock.AfterFunc(time.Duration(incidentDuration*float64(time.Second)), func() {
		m.restoreIncident(vehicleID)
	})
	log.Debugf("sim: triggered incident on vehicle %d at x=%.1f", target.ID, target.X)
}

// restoreIncident clears the crashed flag on vehicleID, if it still
// exists, and clears the global incident record unconditionally (spec
// §5: "if the vehicle has already been removed when the timer fires, the
// restoration no-ops; the global incident record is cleared regardless").
func (m *Model) restoreIncident(vehicleID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.vehicles {
		if v.ID == vehicleID {
			v.Crashed = false
			break
		}
	}
	m.incident = nil
	m.incidentTimer = nil
	log.Debugf("sim: incident on vehicle %d cleared", vehicleID)
}

// CurrentIncident returns a copy of the currently active incident, or nil
// if none.
func (m *Model) CurrentIncident() *Incident {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incident == nil {
		return nil
	}
	inc := *m.incident
	return &inc
}
