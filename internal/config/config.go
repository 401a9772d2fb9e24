// Package config defines the YAML document that configures a standalone
// run of the simulator (spec §6); the host reads and unmarshals the file
// itself. It mirrors the teacher's
// utils/config package: a plain YAML-tagged Document plus a
// RuntimeConfig that resolves it into the sim package's Config and
// validates it before the model ever sees it.
package config

import (
	"fmt"

	"github.com/fib-lab/microtraffic/sim"
)

// Road describes the static road geometry (spec §3: a single segment).
type Road struct {
	LengthM float64 `yaml:"length_m"`
}

// Document is the root YAML structure (spec §6's configurable
// parameter table), loaded with gopkg.in/yaml.v2 the way the teacher's
// utils/config.Config is.
type Document struct {
	Seed uint64 `yaml:"seed"`
	Road Road   `yaml:"road"`
	Sim  SimDoc `yaml:"sim"`
}

// SimDoc mirrors sim.Config field-for-field in YAML form; kept distinct
// from sim.Config so the wire format doesn't couple directly to the
// simulation package's internal layout.
type SimDoc struct {
	InflowRate        float64 `yaml:"inflow_rate"`
	TimeScale         float64 `yaml:"time_scale"`
	TruckRatio        float64 `yaml:"truck_ratio"`
	Politeness        float64 `yaml:"politeness"`
	SafeTimeGap       float64 `yaml:"safe_time_gap"`
	MaxAccel          float64 `yaml:"max_accel"`
	AccelerationNoise float64 `yaml:"acceleration_noise"`
}

// RuntimeConfig is the resolved, validated configuration a host
// actually runs with - the teacher's NewRuntimeConfig pattern applied
// to this domain.
type RuntimeConfig struct {
	Doc       Document
	RoadLen   float64
	SimConfig sim.Config
}

// NewRuntimeConfig resolves a Document into a RuntimeConfig, filling in
// sim.DefaultConfig for any zero-valued sim fields and validating the
// result (spec §6: every field has an acceptable range).
func NewRuntimeConfig(doc Document) (*RuntimeConfig, error) {
	if doc.Road.LengthM <= 0 {
		return nil, fmt.Errorf("config: road.length_m must be positive, got %v", doc.Road.LengthM)
	}

	c := sim.DefaultConfig()
	if doc.Sim.InflowRate != 0 {
		c.InflowRate = doc.Sim.InflowRate
	}
	if doc.Sim.TimeScale != 0 {
		c.TimeScale = doc.Sim.TimeScale
	}
	if doc.Sim.TruckRatio != 0 {
		c.TruckRatio = doc.Sim.TruckRatio
	}
	if doc.Sim.Politeness != 0 {
		c.Politeness = doc.Sim.Politeness
	}
	if doc.Sim.SafeTimeGap != 0 {
		c.SafeTimeGap = doc.Sim.SafeTimeGap
	}
	if doc.Sim.MaxAccel != 0 {
		c.MaxAccel = doc.Sim.MaxAccel
	}
	if doc.Sim.AccelerationNoise != 0 {
		c.AccelerationNoise = doc.Sim.AccelerationNoise
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &RuntimeConfig{Doc: doc, RoadLen: doc.Road.LengthM, SimConfig: c}, nil
}
