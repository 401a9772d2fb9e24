package sim

import "fmt"

// Fixed constants (spec §6). These are not configurable at runtime:
// Config has no field for any of them, so a host cannot override them.
const (
	laneCount = 3
	laneWidth = 3.5 // m
	baseDT    = 1.0 / 60.0
	idmDelta  = 4

	jamDistance         = 2.0  // m, s0
	comfortDeceleration = 2.0  // m/s^2, b
	mobilThreshold      = 0.1
	mobilBias           = 0.2
	safeDecelFloor      = -3.0 // m/s^2
	laneChangeCooldown  = 3.0  // s
	lateralInterpSpeed  = 2.5  // lane-units/s

	incidentDuration = 8.0 // s, wall-clock
	incidentLane     = 1
	incidentXMin     = 1000.0
	incidentXMax     = 4000.0

	spawnClearance = 40.0 // m

	fdRingCapacity   = 200
	fdSampleInterval = 1.0 // s

	truckLength, truckWidth = 14.0, 2.6
	carLength, carWidth     = 4.5, 2.0
)

// Config carries every option the host may set (spec §6's table). All
// fields are validated once by Validate; the simulation core never clamps
// a config value silently — out-of-range input is a host bug (spec §7).
type Config struct {
	InflowRate float64 // veh/h, 500-3000
	TimeScale  float64 // 0.1-5.0
	TruckRatio float64 // 0.0-0.4, Bernoulli probability for TRUCK
	IsPaused   bool    // host-side gate; Step is the caller's choice either way

	Politeness        float64 // 0.0-1.0, MOBIL p
	SafeTimeGap       float64 // 0.5-3.0 s, IDM T
	MaxAccel          float64 // m/s^2, IDM a_max
	AccelerationNoise float64 // 0.0-1.0
}

// DefaultConfig returns sensible baseline values matching the free-flow
// scenario in spec §8.
func DefaultConfig() Config {
	return Config{
		InflowRate:        1000,
		TimeScale:         1.0,
		TruckRatio:        0.1,
		Politeness:        0.2,
		SafeTimeGap:       1.5,
		MaxAccel:          1.5,
		AccelerationNoise: 0.0,
	}
}

// Validate fails fast on programming-error-grade config, per spec §7.
func (c Config) Validate() error {
	switch {
	case c.InflowRate < 0:
		return fmt.Errorf("sim: inflowRate must be >= 0, got %v", c.InflowRate)
	case c.TimeScale <= 0:
		return fmt.Errorf("sim: timeScale must be > 0, got %v", c.TimeScale)
	case c.TruckRatio < 0 || c.TruckRatio > 1:
		return fmt.Errorf("sim: truckRatio must be in [0,1], got %v", c.TruckRatio)
	case c.Politeness < 0:
		return fmt.Errorf("sim: politeness must be >= 0, got %v", c.Politeness)
	case c.SafeTimeGap <= 0:
		return fmt.Errorf("sim: safeTimeGap must be > 0, got %v", c.SafeTimeGap)
	case c.MaxAccel <= 0:
		return fmt.Errorf("sim: maxAccel must be > 0, got %v", c.MaxAccel)
	case c.AccelerationNoise < 0:
		return fmt.Errorf("sim: accelerationNoise must be >= 0, got %v", c.AccelerationNoise)
	}
	return nil
}
