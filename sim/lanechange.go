package sim

// laneChangeCandidate is the outcome of evaluating one target lane for a
// MOBIL lane change (spec §4.3).
type laneChangeCandidate struct {
	lane      int
	newAccel  float64 // subject's prospective acceleration in the target lane
	incentive float64 // (a_c_new - a_c) + p*delta_o + bias
}

// evaluateLaneChange runs the MOBIL decision for v, which already has its
// current-lane acceleration aCur computed. It returns the committed
// candidate, or nil if no candidate clears the safety check and threshold.
// Candidates are tried in the fixed order {lane-1, lane+1} and the first
// one that clears the threshold wins (spec §4.3 step 5: "stop considering
// further candidates").
func (m *Model) evaluateLaneChange(v *Vehicle, aCur float64, cfg Config, dt float64) *laneChangeCandidate {
	if v.LaneChangeTimer > 0 || v.Crashed {
		return nil
	}
	params := idmParams{maxAccel: cfg.MaxAccel, timeGap: cfg.SafeTimeGap}

	oldFollower := m.follower(v, v.Lane)
	var aOldFollowerCur float64
	var hasOldFollower bool
	if oldFollower != nil {
		hasOldFollower = true
		// v is, by construction of follower(), directly ahead of oldFollower
		// on the current lane, i.e. its current leader.
		aOldFollowerCur = m.idmAccelFor(oldFollower, v, cfg, params)
	}

	for _, targetLane := range []int{v.Lane - 1, v.Lane + 1} {
		if targetLane < 0 || targetLane >= laneCount {
			continue
		}

		newLeader := m.leader(v, targetLane)
		newFollower := m.follower(v, targetLane)

		// Safety: the new follower's prospective acceleration, treating the
		// subject as its new leader, must not fall below the safe-deceleration
		// floor.
		if newFollower != nil {
			newFollowerAccel := m.idmAccelFor(newFollower, v, cfg, params)
			if newFollowerAccel < safeDecelFloor {
				continue
			}
		}

		// Ego incentive: subject's prospective acceleration in the target lane.
		aNew := m.selfIDMAccel(v, newLeader, v0For(v, cfg), params)

		// Politeness: impact on the old follower of the subject leaving its lane.
		deltaO := 0.0
		if hasOldFollower {
			aOldFollowerNew := m.idmAccelFor(oldFollower, m.leader(v, v.Lane), cfg, params)
			deltaO = aOldFollowerNew - aOldFollowerCur
		}

		bias := mobilBias
		if targetLane < v.Lane {
			bias = -mobilBias
		}

		incentive := (aNew - aCur) + cfg.Politeness*deltaO + bias
		if incentive > mobilThreshold {
			return &laneChangeCandidate{lane: targetLane, newAccel: aNew, incentive: incentive}
		}
	}
	return nil
}

// idmAccelFor computes ego's IDM acceleration using leaderVeh as its
// leader (or nil for none), with ego's own target speed.
func (m *Model) idmAccelFor(ego, leaderVeh *Vehicle, cfg Config, params idmParams) float64 {
	return m.selfIDMAccel(ego, leaderVeh, v0For(ego, cfg), params)
}

// selfIDMAccel computes the IDM acceleration of ego given an explicit
// leader (or nil) and desired speed v0.
func (m *Model) selfIDMAccel(ego, leaderVeh *Vehicle, v0 float64, params idmParams) float64 {
	if leaderVeh == nil {
		return idmAccel(ego.V, false, 0, 0, v0, params)
	}
	gap := bumperGap(ego, leaderVeh)
	return idmAccel(ego.V, true, leaderVeh.V, gap, v0, params)
}

// v0For returns the desired speed IDM should pursue for v: its own sampled
// target speed (spec does not define per-lane speed limits - explicit
// non-goal).
func v0For(v *Vehicle, cfg Config) float64 {
	return v.TargetSpeed
}
