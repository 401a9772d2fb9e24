package sim

import (
	"math"

	"github.com/samber/lo"
)

// trySpawn runs the spawner (spec §4.5). Aggregate inflow Q (veh/h) gives
// mean headway tau = 3600/Q seconds; an attempt triggers once
// timeSinceLastSpawn exceeds u*tau for u sampled uniformly on [0.8, 1.2]
// on each attempt.
func (m *Model) trySpawn(cfg Config, dt float64) {
	m.timeSinceLastSpawn += dt
	if cfg.InflowRate <= 0 {
		return
	}
	tau := 3600.0 / cfg.InflowRate
	u := m.rng.Uniform(0.8, 1.2)
	if m.timeSinceLastSpawn <= u*tau {
		return
	}

	lane, clearance := m.emptiestLane()
	if clearance <= spawnClearance {
		// Insufficient clearance: abort without resetting the timer, so the
		// next tick retries immediately (spec §4.5/§9 - deliberately does
		// *not* reset timeSinceLastSpawn on a failed attempt).
		return
	}

	v := m.newVehicle(cfg, lane)
	m.vehicles = append(m.vehicles, v)
	m.timeSinceLastSpawn = 0
	log.Debugf("sim: spawned vehicle %d (%s) in lane %d", v.ID, v.Type, lane)
}

// emptiestLane returns the lane with the largest minimum X among its
// vehicles (spec §4.5 steps 1-2); an empty lane's minimum is treated as
// +Inf, so an empty lane always wins.
func (m *Model) emptiestLane() (lane int, clearance float64) {
	minX := make([]float64, laneCount)
	for i := range minX {
		minX[i] = math.Inf(1)
	}
	for _, v := range m.vehicles {
		if v.X < minX[v.Lane] {
			minX[v.Lane] = v.X
		}
	}
	bestLane, bestMin := 0, minX[0]
	for l := 1; l < laneCount; l++ {
		if minX[l] > bestMin {
			bestLane, bestMin = l, minX[l]
		}
	}
	return bestLane, bestMin
}

// newVehicle samples a fresh vehicle's type, desired speed, and geometry
// (spec §4.5 step 4) and places it at x=0 in lane.
func (m *Model) newVehicle(cfg Config, lane int) *Vehicle {
	isTruck := m.rng.PTrue(cfg.TruckRatio)
	vtype := lo.Ternary(isTruck, Truck, Car)
	length := lo.Ternary(isTruck, truckLength, carLength)
	width := lo.Ternary(isTruck, truckWidth, carWidth)

	// Drawn with an explicit branch, not lo.Ternary: both arguments to
	// Ternary are evaluated eagerly, which would consume an extra draw
	// from the shared rng stream on every spawn (spec §5 determinism).
	var desiredKPH float64
	if isTruck {
		desiredKPH = m.rng.Uniform(80, 90)
	} else {
		desiredKPH = m.rng.Uniform(100, 120)
	}
	desiredMPS := desiredKPH / 3.6

	v := &Vehicle{
		ID:          m.nextID,
		X:           0,
		Y:           float64(lane),
		Lane:        lane,
		V:           0.9 * desiredMPS,
		Length:      length,
		Width:       width,
		Type:        vtype,
		TargetSpeed: desiredMPS,
	}
	m.nextID++
	return v
}
