// Package sim implements the microscopic traffic simulation core: a
// discrete-time kinematic engine that advances a population of
// heterogeneous vehicles along a multi-lane, unidirectional road segment
// using the Intelligent Driver Model for longitudinal motion and MOBIL for
// discretionary lane changes.
//
// The core is single-threaded and cooperatively scheduled by the host
// (spec §5): all mutation happens inside one Step call, which is atomic
// from the caller's perspective, and the host is expected to call Step,
// TriggerAccident, Vehicles, and GetStats from a single goroutine. The one
// exception is incident restoration (spec §9): it fires from a
// host-provided wall-clock timer, on its own goroutine, so Model carries a
// single coarse mutex purely to serialize that callback against whichever
// goroutine is mid-Step - not a general-purpose concurrency guarantee.
package sim

import (
	"sort"
	"sync"

	"github.com/fib-lab/microtraffic/clock"
	"github.com/fib-lab/microtraffic/internal/randengine"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "sim")

// FDPoint is one (density, flow) sample of the fundamental-diagram
// history (spec §4.7).
type FDPoint struct {
	K float64 // density, veh/km
	Q float64 // flow, veh/h
}

// Incident records an active blockage (spec §4.6). At most one is active
// at a time.
type Incident struct {
	VehicleID uint64
	Lane      int
	Location  float64
}

// Model is the singleton simulation state (spec §3): the ordered vehicle
// list, road geometry, and bookkeeping for spawns, stats, and incidents.
// It is owned exclusively by the simulation; hosts read it only through
// Vehicles, GetStats and CurrentIncident, all of which return copies.
type Model struct {
	mu sync.Mutex

	roadLength float64
	rng        *randengine.Engine
	wallClock  clock.WallClock

	vehicles []*Vehicle
	nextID   uint64

	timeSinceLastSpawn float64
	statsTimer         float64
	fdRing             []FDPoint

	incident      *Incident
	incidentTimer clock.Timer
}

// New constructs an empty model for a road segment of the given length,
// with laneCount fixed at 3 (spec §6). seed drives the single
// deterministic random stream (spec §5); wallClock drives incident
// restoration timing and may be swapped for clock.NewFakeClock in tests.
func New(roadLength float64, seed uint64, wallClock clock.WallClock) *Model {
	m := &Model{
		roadLength: roadLength,
		rng:        randengine.New(seed),
		wallClock:  wallClock,
	}
	m.Reset()
	return m
}

// Reset clears vehicles, the FD ring, and any incident; resets nextID to 1
// and timeSinceLastSpawn to 0 (spec §6).
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incidentTimer != nil {
		m.incidentTimer.Stop()
		m.incidentTimer = nil
	}
	m.vehicles = nil
	m.nextID = 1
	m.timeSinceLastSpawn = 0
	m.statsTimer = 0
	m.fdRing = nil
	m.incident = nil
}

// RoadLength returns the configured segment length in meters.
func (m *Model) RoadLength() float64 { return m.roadLength }

// Step advances simulation time by one integration interval, running the
// five sub-phases of spec §2 in order: sort, decide, integrate, boundary,
// aggregate.
//
// Random draws all come from m.rng, in this order within one Step: one
// noise draw per non-crashed vehicle, in sorted order, when its speed
// exceeds 1 m/s and AccelerationNoise > 0; then one arrival factor u when
// InflowRate > 0; then, only when a vehicle is spawned, one truck/car draw
// followed by one desired-speed draw.
func (m *Model) Step(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dt := baseDT * cfg.TimeScale

	m.sortByPositionDescending()
	decisions := m.decide(cfg, dt)
	m.integrate(decisions, dt)
	m.handleBoundary()
	m.trySpawn(cfg, dt)
	m.aggregate(dt)
}

// sortByPositionDescending implements phase 1 (spec §2, §3 invariant):
// after this call the vehicle list is sorted by X descending. Ties broken
// by ascending ID keeps the ordering itself deterministic.
func (m *Model) sortByPositionDescending() {
	sort.SliceStable(m.vehicles, func(i, j int) bool {
		if m.vehicles[i].X != m.vehicles[j].X {
			return m.vehicles[i].X > m.vehicles[j].X
		}
		return m.vehicles[i].ID < m.vehicles[j].ID
	})
}

// VehicleView is the read-only snapshot of a Vehicle exposed to hosts for
// rendering (spec §6): id, x, y, lane, v, a, geometry, type, lane-change
// indicator, and crashed state.
type VehicleView struct {
	ID                  uint64
	X, Y                float64
	Lane                int
	V, A                float64
	Length, Width       float64
	Type                VehicleType
	LaneChangeDirection int
	Crashed             bool
}

// Vehicles returns a copy of the current vehicle population for rendering.
// The host must not be able to alias Model's internal buffers (spec §5).
func (m *Model) Vehicles() []VehicleView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Map(m.vehicles, func(v *Vehicle, _ int) VehicleView {
		return VehicleView{
			ID:                  v.ID,
			X:                   v.X,
			Y:                   v.Y,
			Lane:                v.Lane,
			V:                   v.V,
			A:                   v.A,
			Length:              v.Length,
			Width:               v.Width,
			Type:                v.Type,
			LaneChangeDirection: v.LaneChangeDirection,
			Crashed:             v.Crashed,
		}
	})
}
