package sim_test

import (
	"testing"

	"github.com/fib-lab/microtraffic/clock"
	"github.com/fib-lab/microtraffic/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStepInvariants runs a busy free-flow scenario for a simulated
// minute and checks the invariants spec §8 names: non-negative speed,
// in-bounds position and lane, unique IDs, and a bounded FD ring.
func TestStepInvariants(t *testing.T) {
	m := sim.New(5000, 7, clock.SystemClock{})
	cfg := sim.DefaultConfig()
	cfg.InflowRate = 1800

	for i := 0; i < 3600; i++ {
		m.Step(cfg)
	}

	seen := make(map[uint64]bool)
	for _, v := range m.Vehicles() {
		assert.GreaterOrEqual(t, v.V, 0.0)
		assert.GreaterOrEqual(t, v.X, 0.0)
		assert.LessOrEqual(t, v.X, m.RoadLength())
		assert.GreaterOrEqual(t, v.Lane, 0)
		assert.Less(t, v.Lane, 3)
		assert.False(t, seen[v.ID], "duplicate vehicle id %d", v.ID)
		seen[v.ID] = true
	}

	stats := m.GetStats()
	assert.LessOrEqual(t, len(stats.Points), 200)
}

// TestStepPositionsSortedDescending checks the phase-1 post-condition
// (spec §3): after Step, vehicles are ordered by X descending.
func TestStepPositionsSortedDescending(t *testing.T) {
	m := sim.New(5000, 7, clock.SystemClock{})
	cfg := sim.DefaultConfig()
	cfg.InflowRate = 1800

	for i := 0; i < 600; i++ {
		m.Step(cfg)
	}

	vs := m.Vehicles()
	for i := 1; i < len(vs); i++ {
		assert.GreaterOrEqual(t, vs[i-1].X, vs[i].X)
	}
}

// TestStepDeterministicWithoutNoise checks that two freshly-seeded
// models, stepped identically with acceleration noise disabled,
// produce byte-for-byte identical vehicle populations (spec §5, §8).
func TestStepDeterministicWithoutNoise(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.AccelerationNoise = 0
	cfg.InflowRate = 1500

	run := func(seed uint64) []sim.VehicleView {
		m := sim.New(5000, seed, clock.SystemClock{})
		for i := 0; i < 1200; i++ {
			m.Step(cfg)
		}
		return m.Vehicles()
	}

	a := run(99)
	b := run(99)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

// TestNoInflowNeverIncreasesPopulation checks the spawner is the only
// source of new vehicles: with InflowRate=0, population never
// increases step over step (spec §4.5).
func TestNoInflowNeverIncreasesPopulation(t *testing.T) {
	m := sim.New(5000, 3, clock.SystemClock{})
	cfg := sim.DefaultConfig()
	cfg.InflowRate = 0

	prev := len(m.Vehicles())
	for i := 0; i < 2000; i++ {
		m.Step(cfg)
		cur := len(m.Vehicles())
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

// TestSingleVehicleConvergesToTargetSpeed checks a lone vehicle with
// no leader accelerates toward, and then holds, a steady-state speed
// with near-zero acceleration (spec §4.2, §8's free-flow scenario).
func TestSingleVehicleConvergesToTargetSpeed(t *testing.T) {
	m := sim.New(200000, 11, clock.SystemClock{})
	cfg := sim.DefaultConfig()

	for len(m.Vehicles()) == 0 {
		m.Step(cfg)
	}
	cfg.InflowRate = 0

	for i := 0; i < 3600; i++ {
		m.Step(cfg)
	}

	vs := m.Vehicles()
	require.Len(t, vs, 1)
	assert.InDelta(t, 0, vs[0].A, 0.05)
	assert.Greater(t, vs[0].V, 20.0)
}

// TestResetClearsState checks Reset returns the model to its initial
// empty condition (spec §6).
func TestResetClearsState(t *testing.T) {
	m := sim.New(5000, 1, clock.SystemClock{})
	cfg := sim.DefaultConfig()
	cfg.InflowRate = 3000
	for i := 0; i < 600; i++ {
		m.Step(cfg)
	}
	require.NotEmpty(t, m.Vehicles())

	m.Reset()
	assert.Empty(t, m.Vehicles())
	assert.Empty(t, m.GetStats().Points)
}
