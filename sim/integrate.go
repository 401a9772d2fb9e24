package sim

import (
	"math"

	"github.com/samber/lo"
)

// integrate commits the staged phase-2 decisions and runs phase 3 (spec
// §2, §4.4): semi-implicit Euler update of speed and longitudinal
// position, plus lateral (visual) interpolation toward the target lane.
//
// decisions is aligned 1:1 with m.vehicles as it stood when decide() built
// it; nothing between decide() and integrate() may resort or mutate the
// slice (spec §9: "Do not resort between phases 2 and 3").
func (m *Model) integrate(decisions []decision, dt float64) {
	for i, v := range m.vehicles {
		d := decisions[i]

		if d.laneChanged {
			v.Lane = d.newLane
			v.LaneChangeTimer = laneChangeCooldown
			v.LaneChangeDirection = d.newDirection
		}
		if v.LaneChangeTimer > 0 {
			v.LaneChangeTimer = math.Max(0, v.LaneChangeTimer-dt)
		}

		if v.Crashed {
			v.V = 0
			v.A = 0
			continue
		}

		v.A = d.accel
		v.V = lo.Clamp(v.V+v.A*dt, 0, math.MaxFloat64)
		v.X += v.V * dt

		target := float64(v.Lane)
		if math.Abs(v.Y-target) > 0.05 {
			v.Y += float64(sign(target-v.Y)) * lateralInterpSpeed * dt
		} else {
			v.Y = target
			v.LaneChangeDirection = 0
		}
	}
}

// handleBoundary runs phase 4's removal half (spec §2, §4.4): any vehicle
// whose position now exceeds the road length is removed.
func (m *Model) handleBoundary() {
	m.vehicles = lo.Filter(m.vehicles, func(v *Vehicle, _ int) bool {
		return v.X <= m.roadLength
	})
}
