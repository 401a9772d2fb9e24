package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAggregateRingCapacity checks the FD ring never exceeds
// fdRingCapacity, evicting the oldest sample on overflow (spec §4.7).
func TestAggregateRingCapacity(t *testing.T) {
	m := newTestModel()
	m.vehicles = []*Vehicle{{ID: 1, X: 0, V: 20}}

	for i := 0; i < fdRingCapacity+50; i++ {
		m.aggregate(fdSampleInterval)
	}

	assert.Equal(t, fdRingCapacity, len(m.fdRing))
}

// TestAggregateSkipsEmptyModel checks an empty model never appends an
// FD sample (spec §4.7: density/flow are undefined with zero
// vehicles).
func TestAggregateSkipsEmptyModel(t *testing.T) {
	m := newTestModel()

	for i := 0; i < 10; i++ {
		m.aggregate(fdSampleInterval)
	}

	assert.Empty(t, m.fdRing)
}

// TestGetStatsComputesDensityAndFlow checks the density/flow/percentile
// arithmetic directly against a known vehicle population.
func TestGetStatsComputesDensityAndFlow(t *testing.T) {
	m := New(1000, 1, nil)
	m.vehicles = []*Vehicle{
		{ID: 1, X: 0, V: 10},
		{ID: 2, X: 100, V: 20},
		{ID: 3, X: 200, V: 30},
	}

	s := m.GetStats()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3.0, s.DensityVKM, 1e-9) // 3 vehicles / 1 km
	assert.InDelta(t, 20*3.6, s.AvgSpeedKPH, 1e-9)
	assert.InDelta(t, s.DensityVKM*s.AvgSpeedKPH, s.FlowVPH, 1e-9)
	assert.Greater(t, s.P85SpeedKPH, s.AvgSpeedKPH)
}
