package sim

import (
	"github.com/montanaflynn/stats"
)

// Stats is the non-mutating snapshot GetStats returns (spec §4.7). Points
// is a copy of the FD ring; callers may not alias Model's internal buffer
// (spec §5).
type Stats struct {
	Count       int
	AvgSpeedKPH float64
	P85SpeedKPH float64 // 85th-percentile speed, standard traffic-engineering figure
	DensityVKM  float64 // veh/km
	FlowVPH     float64 // veh/h
	Points      []FDPoint
}

// aggregate runs phase 5 (spec §2, §4.7): accumulate statsTimer, and once
// it crosses the sampling interval, append a (density, flow) sample to the
// FD ring (capacity fdRingCapacity, oldest evicted on overflow).
func (m *Model) aggregate(dt float64) {
	m.statsTimer += dt
	if m.statsTimer < fdSampleInterval {
		return
	}
	m.statsTimer = 0
	if len(m.vehicles) == 0 {
		return
	}

	density := m.densityVKM()
	avgSpeed := m.avgSpeedKPH()
	flow := density * avgSpeed

	m.fdRing = append(m.fdRing, FDPoint{K: density, Q: flow})
	if len(m.fdRing) > fdRingCapacity {
		m.fdRing = m.fdRing[len(m.fdRing)-fdRingCapacity:]
	}
	log.Infof("sim: FD sample appended k=%.2f q=%.1f (ring=%d)", density, flow, len(m.fdRing))
}

func (m *Model) densityVKM() float64 {
	if m.roadLength <= 0 {
		return 0
	}
	return float64(len(m.vehicles)) / (m.roadLength / 1000.0)
}

func (m *Model) avgSpeedKPH() float64 {
	if len(m.vehicles) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range m.vehicles {
		sum += v.V
	}
	return (sum / float64(len(m.vehicles))) * 3.6
}

// GetStats returns a snapshot of the current macroscopic observables
// (spec §4.7). It never mutates the model.
func (m *Model) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.vehicles)
	if count == 0 {
		return Stats{Points: append([]FDPoint(nil), m.fdRing...)}
	}

	speedsKPH := make([]float64, count)
	for i, v := range m.vehicles {
		speedsKPH[i] = v.V * 3.6
	}
	p85, err := stats.Percentile(speedsKPH, 85)
	if err != nil {
		p85 = 0
	}

	density := m.densityVKM()
	avgSpeed := m.avgSpeedKPH()

	return Stats{
		Count:       count,
		AvgSpeedKPH: avgSpeed,
		P85SpeedKPH: p85,
		DensityVKM:  density,
		FlowVPH:     density * avgSpeed,
		Points:      append([]FDPoint(nil), m.fdRing...),
	}
}
