package sim

// decision is a staged, not-yet-applied outcome of phase 2 for one
// vehicle. Staging (instead of mutating vehicles as we go) keeps every
// vehicle's decision based on the same pre-step snapshot, independent of
// iteration order (spec §9: "stage lane-change decisions ... commit in a
// second pass").
type decision struct {
	accel        float64
	laneChanged  bool
	newLane      int
	newDirection int
}

// decide runs phase 2 (spec §2): for every vehicle, compute its IDM
// acceleration and evaluate MOBIL for an optional lane change.
func (m *Model) decide(cfg Config, dt float64) []decision {
	decisions := make([]decision, len(m.vehicles))
	params := idmParams{maxAccel: cfg.MaxAccel, timeGap: cfg.SafeTimeGap}

	for i, v := range m.vehicles {
		if v.Crashed {
			decisions[i] = decision{accel: 0}
			continue
		}

		aCur := m.selfIDMAccel(v, m.leader(v, v.Lane), v0For(v, cfg), params)

		d := decision{accel: aCur}
		if cand := m.evaluateLaneChange(v, aCur, cfg, dt); cand != nil {
			d.accel = cand.newAccel
			d.laneChanged = true
			d.newLane = cand.lane
			d.newDirection = sign(float64(cand.lane - v.Lane))
		}
		d.accel = applyAccelerationNoise(d.accel, v.V, cfg.AccelerationNoise, m.rng)
		decisions[i] = d
	}
	return decisions
}
