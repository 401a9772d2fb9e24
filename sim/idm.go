package sim

import "math"

// idmParams bundles the driver parameters the pure IDM function needs.
// a_max and T come from Config; jam distance and comfort deceleration are
// fixed constants (spec §6).
type idmParams struct {
	maxAccel float64 // a_max, m/s^2
	timeGap  float64 // T, s
}

// idmAccel is the pure Intelligent Driver Model accelerator (spec §4.2):
// given the driver's speed v, the leader's speed (hasLeader=false if none),
// the bumper-to-bumper gap (ignored if hasLeader is false), the desired
// speed v0 and idmParams, it returns an acceleration in m/s^2.
//
// It never reads or mutates a Vehicle and never draws randomness — noise is
// layered on by the caller (applyAccelerationNoise) so this function stays
// a referentially transparent law callers can unit-test directly against
// the IDM wikipedia formulation.
func idmAccel(v float64, hasLeader bool, leaderV, gap float64, v0 float64, p idmParams) float64 {
	aFree := p.maxAccel * (1 - math.Pow(v/v0, idmDelta))
	if !hasLeader {
		return aFree
	}
	dv := v - leaderV
	sStar := jamDistance + v*p.timeGap +
		v*dv/(2*math.Sqrt(p.maxAccel*comfortDeceleration))
	s := math.Max(gap, 0.1)
	aInt := -p.maxAccel * (sStar / s) * (sStar / s)
	return aFree + aInt
}

// applyAccelerationNoise adds a uniform variate on [-eta/2, +eta/2] to a,
// but only when v > 1 m/s and eta > 0 (spec §4.2). The result is not
// clamped here, and decide() applies no floor or ceiling to it either;
// IDM itself is unbounded below zero by design
// (a stopped vehicle facing a closing leader can decelerate arbitrarily
// hard in the model, same as the real IDM formulation).
func applyAccelerationNoise(a, v, eta float64, rng interface{ Uniform(lo, hi float64) float64 }) float64 {
	if v <= 1 || eta <= 0 {
		return a
	}
	return a + rng.Uniform(-eta/2, eta/2)
}
