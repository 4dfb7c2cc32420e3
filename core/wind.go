package core

import (
	"errors"
	"fmt"
	"math"
)

// Phase factors applied by the planning kernels. Each scales its base result
// by (1 + factor * phase) for phase in {1, -1, 0}.
const (
	windPhaseFactor = 0.1
	timePhaseFactor = 0.05
	fuelPhaseFactor = 0.03
)

var (
	ErrInvalidAirspeed = errors.New("invalid airspeed")
	ErrInvalidWind     = errors.New("invalid wind")
	ErrInvalidDistance = errors.New("invalid distance")
	ErrInvalidSpeed    = errors.New("invalid speed")
	ErrInvalidFuel     = errors.New("invalid fuel")
)

// WindSolution is the outcome of a wind triangle computation.
type WindSolution struct {
	CorrectionAngleDeg float64 // signed; positive crabs right of course
	TrueHeadingDeg     float64 // [0, 360)
	GroundSpeedKt      float64 // floored at 0
}

// SolveWindTriangle computes the wind correction angle, resulting true
// heading, and ground speed for a course flown at tas against a wind blowing
// from windFromDeg at windSpeedKt. The correction angle is scaled by
// (1 + 0.1 * phase).
func SolveWindTriangle(courseDeg, tasKt, windSpeedKt, windFromDeg float64, phase int) (WindSolution, error) {
	if !isFinite(courseDeg) || !isFinite(windFromDeg) {
		return WindSolution{}, fmt.Errorf("%w: non-finite direction", ErrInvalidWind)
	}
	if !isFinite(tasKt) || tasKt <= 0 {
		return WindSolution{}, fmt.Errorf("%w: true airspeed %v must be positive", ErrInvalidAirspeed, tasKt)
	}
	if !isFinite(windSpeedKt) || windSpeedKt < 0 {
		return WindSolution{}, fmt.Errorf("%w: wind speed %v must be non-negative", ErrInvalidWind, windSpeedKt)
	}

	angleDiff := windFromDeg - courseDeg

	sinWCA := windSpeedKt * math.Sin(radians(angleDiff)) / tasKt
	if sinWCA > 1 {
		sinWCA = 1
	} else if sinWCA < -1 {
		sinWCA = -1
	}
	wca := degrees(math.Asin(sinWCA))
	wca *= 1 + windPhaseFactor*float64(phase)
	if angleDiff > 180 || angleDiff < -180 {
		wca = -wca
	}

	gs := tasKt - windSpeedKt*math.Cos(radians(angleDiff))
	if gs < 0 {
		gs = 0
	}

	return WindSolution{
		CorrectionAngleDeg: wca,
		TrueHeadingDeg:     wrap360(courseDeg + wca),
		GroundSpeedKt:      gs,
	}, nil
}

// TimeEnroute returns hours to cover distanceNM at groundSpeedKt, scaled by
// (1 + 0.05 * phase).
func TimeEnroute(distanceNM, groundSpeedKt float64, phase int) (float64, error) {
	if !isFinite(distanceNM) || distanceNM < 0 {
		return 0, fmt.Errorf("%w: distance %v must be non-negative", ErrInvalidDistance, distanceNM)
	}
	if !isFinite(groundSpeedKt) || groundSpeedKt <= 0 {
		return 0, fmt.Errorf("%w: ground speed %v must be positive", ErrInvalidSpeed, groundSpeedKt)
	}
	return (distanceNM / groundSpeedKt) * (1 + timePhaseFactor*float64(phase)), nil
}

// FuelPlan is the outcome of a fuel planning computation.
type FuelPlan struct {
	RequiredGal    float64
	EnduranceHours float64
	RangeNM        float64
}

// PlanFuel computes the fuel required for a leg, scaled by (1 + 0.03 * phase),
// plus the endurance and still-air range left after holding back the reserve.
func PlanFuel(burnGPH, timeHours, usableGal, reserveGal, groundSpeedKt float64, phase int) (FuelPlan, error) {
	if !isFinite(burnGPH) || burnGPH <= 0 {
		return FuelPlan{}, fmt.Errorf("%w: burn rate %v must be positive", ErrInvalidFuel, burnGPH)
	}
	if !isFinite(timeHours) || timeHours < 0 {
		return FuelPlan{}, fmt.Errorf("%w: time %v must be non-negative", ErrInvalidFuel, timeHours)
	}
	if !isFinite(usableGal) || usableGal < 0 || !isFinite(reserveGal) || reserveGal < 0 {
		return FuelPlan{}, fmt.Errorf("%w: fuel quantities must be non-negative", ErrInvalidFuel)
	}
	if reserveGal > usableGal {
		return FuelPlan{}, fmt.Errorf("%w: reserve %v exceeds usable %v", ErrInvalidFuel, reserveGal, usableGal)
	}
	if !isFinite(groundSpeedKt) || groundSpeedKt < 0 {
		return FuelPlan{}, fmt.Errorf("%w: ground speed %v must be non-negative", ErrInvalidSpeed, groundSpeedKt)
	}

	endurance := (usableGal - reserveGal) / burnGPH
	return FuelPlan{
		RequiredGal:    burnGPH * timeHours * (1 + fuelPhaseFactor*float64(phase)),
		EnduranceHours: endurance,
		RangeNM:        endurance * groundSpeedKt,
	}, nil
}
