package config_test

import (
	"testing"

	"github.com/fib-lab/microtraffic/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuntimeConfigFillsDefaults(t *testing.T) {
	doc := config.Document{
		Seed: 1,
		Road: config.Road{LengthM: 5000},
	}
	rc, err := config.NewRuntimeConfig(doc)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, rc.RoadLen)
	assert.Equal(t, 1000.0, rc.SimConfig.InflowRate) // sim.DefaultConfig()'s baseline
}

func TestNewRuntimeConfigOverridesDefaults(t *testing.T) {
	doc := config.Document{
		Road: config.Road{LengthM: 2000},
		Sim:  config.SimDoc{InflowRate: 2500, TimeScale: 2.0},
	}
	rc, err := config.NewRuntimeConfig(doc)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, rc.SimConfig.InflowRate)
	assert.Equal(t, 2.0, rc.SimConfig.TimeScale)
}

func TestNewRuntimeConfigRejectsZeroRoadLength(t *testing.T) {
	_, err := config.NewRuntimeConfig(config.Document{})
	assert.Error(t, err)
}

func TestNewRuntimeConfigRejectsInvalidSimValues(t *testing.T) {
	doc := config.Document{
		Road: config.Road{LengthM: 1000},
		Sim:  config.SimDoc{TruckRatio: 5},
	}
	_, err := config.NewRuntimeConfig(doc)
	assert.Error(t, err)
}
