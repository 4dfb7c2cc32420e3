package core

import "math"

// Scoring constants. PhaseAlpha and the confidence weights are part of the
// locked parameter set; KMag couples magnetic field gradients (nT/NM) into a
// dimensionless efficiency factor.
const (
	PhaseAlpha         = 0.1
	ConfWeightDistance = 0.7
	ConfWeightPhase    = 0.3
	KMag               = 1e-5
)

// PhaseAny requests no phase preference in GeometryScore. Any value outside
// {1, -1, 0} behaves the same way.
const PhaseAny = 2

// GeometryScore rates an index in [0, 1] by combining three terms under a
// weighted Pythagorean sum: proximity to the ring's center, match against the
// desired phase (0.5 when no preference), and whether the index's mirror sits
// in a different phase.
func (r Ring) GeometryScore(n, desiredPhase int) (float64, error) {
	d, err := r.Drawer(n)
	if err != nil {
		return 0, err
	}

	center := float64(r.Center())
	sCenter := 1.0 - math.Abs(float64(n)-center)/center
	sCenter = clamp01(sCenter)

	sPhase := 0.5
	if desiredPhase == 1 || desiredPhase == -1 || desiredPhase == 0 {
		if d.Phase == desiredPhase {
			sPhase = 1.0
		} else {
			sPhase = 0.0
		}
	}

	mirrorPhase := phaseStates[(d.Mirror-1)%3]
	sMirror := 0.0
	if mirrorPhase != d.Phase {
		sMirror = 1.0
	}

	score := math.Sqrt(0.5*sCenter*sCenter + 0.33*sPhase*sPhase + 0.17*sMirror*sMirror)
	return clamp01(score), nil
}

// PhaseHarmony measures how two phases interact across a ring separation:
// 1 + alpha * p1 * p2 * exp(-d/lambda) with lambda = N/6. Same phases push the
// result above 1, opposite phases below, a neutral phase pins it to exactly 1,
// and the effect decays to 1 as the separation grows. Symmetric in p1/p2.
func (r Ring) PhaseHarmony(p1, p2, ringDist int) float64 {
	lambda := float64(r.size) / 6.0
	return 1.0 + PhaseAlpha*float64(p1)*float64(p2)*math.Exp(-float64(ringDist)/lambda)
}

// Confidence scores a pairing in [0, 100] from its ring separation and a phase
// alignment in [-1, 1]: 70% weight on distance decay, 30% on alignment.
// Zero separation with full alignment scores 100; full separation with
// opposite alignment scores 0.
func (r Ring) Confidence(ringDist int, alignment float64) float64 {
	distScore := 1.0 - float64(ringDist)/float64(r.size)
	phaseScore := (alignment + 1.0) / 2.0
	c := 100.0 * (ConfWeightDistance*clamp01(distScore) + ConfWeightPhase*clamp01(phaseScore))
	return math.Max(0, math.Min(100, c))
}

// MagneticEfficiency converts a magnetic field gradient along a route
// (nanotesla per nautical mile) into a linear efficiency factor around 1.0.
func MagneticEfficiency(gradientNTPerNM float64) float64 {
	return 1.0 + KMag*gradientNTPerNM
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
