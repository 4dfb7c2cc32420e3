package core

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPerformanceInput = errors.New("invalid performance input")

// Lift returns the lift force in Newtons: 0.5 * rho * V^2 * S * CL.
func Lift(airDensity, velocityMps, wingAreaM2, liftCoeff float64) (float64, error) {
	if err := checkAeroInputs(airDensity, velocityMps, wingAreaM2); err != nil {
		return 0, err
	}
	return 0.5 * airDensity * velocityMps * velocityMps * wingAreaM2 * liftCoeff, nil
}

// Drag returns the drag force in Newtons: 0.5 * rho * V^2 * S * CD.
func Drag(airDensity, velocityMps, referenceAreaM2, dragCoeff float64) (float64, error) {
	if err := checkAeroInputs(airDensity, velocityMps, referenceAreaM2); err != nil {
		return 0, err
	}
	return 0.5 * airDensity * velocityMps * velocityMps * referenceAreaM2 * dragCoeff, nil
}

// LiftToDragRatio returns L/D, the aerodynamic efficiency measure.
func LiftToDragRatio(lift, drag float64) (float64, error) {
	if drag == 0 {
		return 0, fmt.Errorf("%w: drag cannot be zero", ErrInvalidPerformanceInput)
	}
	return lift / drag, nil
}

// ThrustToWeightRatio returns thrust divided by weight. A ratio above 1 means
// the aircraft can accelerate vertically.
func ThrustToWeightRatio(thrustN, weightN float64) (float64, error) {
	if weightN == 0 {
		return 0, fmt.Errorf("%w: weight cannot be zero", ErrInvalidPerformanceInput)
	}
	if thrustN < 0 || weightN < 0 {
		return 0, fmt.Errorf("%w: thrust and weight must be non-negative", ErrInvalidPerformanceInput)
	}
	return thrustN / weightN, nil
}

// RateOfClimb returns the climb rate in m/s from excess power and weight.
func RateOfClimb(excessPowerW, weightN float64) (float64, error) {
	if weightN <= 0 {
		return 0, fmt.Errorf("%w: weight must be positive", ErrInvalidPerformanceInput)
	}
	return excessPowerW / weightN, nil
}

// TurnRadius returns the coordinated-turn radius in metres:
// V^2 / (g * tan(bank)).
func TurnRadius(velocityMps, bankAngleDeg float64) (float64, error) {
	if velocityMps < 0 {
		return 0, fmt.Errorf("%w: velocity must be non-negative", ErrInvalidPerformanceInput)
	}
	if bankAngleDeg <= 0 || bankAngleDeg >= 90 {
		return 0, fmt.Errorf("%w: bank angle %v must be in (0, 90)", ErrInvalidPerformanceInput, bankAngleDeg)
	}
	return velocityMps * velocityMps / (Gravity * math.Tan(radians(bankAngleDeg))), nil
}

// BankAngle returns the bank angle in degrees required to hold a coordinated
// turn of the given radius.
func BankAngle(velocityMps, turnRadiusM float64) (float64, error) {
	if velocityMps < 0 {
		return 0, fmt.Errorf("%w: velocity must be non-negative", ErrInvalidPerformanceInput)
	}
	if turnRadiusM <= 0 {
		return 0, fmt.Errorf("%w: turn radius must be positive", ErrInvalidPerformanceInput)
	}
	return degrees(math.Atan(velocityMps * velocityMps / (Gravity * turnRadiusM))), nil
}

func checkAeroInputs(airDensity, velocity, area float64) error {
	if airDensity < 0 {
		return fmt.Errorf("%w: air density must be non-negative", ErrInvalidPerformanceInput)
	}
	if velocity < 0 {
		return fmt.Errorf("%w: velocity must be non-negative", ErrInvalidPerformanceInput)
	}
	if area <= 0 {
		return fmt.Errorf("%w: area must be positive", ErrInvalidPerformanceInput)
	}
	return nil
}
