package core

import (
	"errors"
	"math"
	"testing"
)

func TestSolveWindTriangleDirectCrosswind(t *testing.T) {
	// 25 kt wind from 90 degrees left of course, neutral phase: the crab angle
	// is asin(25 * sin(-90) / 120) and ground speed stays at TAS.
	sol, err := SolveWindTriangle(90, 120, 25, 0, 0)
	if err != nil {
		t.Fatalf("SolveWindTriangle: %v", err)
	}

	wantWCA := degrees(math.Asin(-25.0 / 120.0))
	if math.Abs(sol.CorrectionAngleDeg-wantWCA) > 0.01 {
		t.Errorf("WCA = %v, want %v", sol.CorrectionAngleDeg, wantWCA)
	}
	if math.Abs(sol.GroundSpeedKt-120) > 0.01 {
		t.Errorf("ground speed = %v, want 120", sol.GroundSpeedKt)
	}
	if sol.TrueHeadingDeg < 0 || sol.TrueHeadingDeg >= 360 {
		t.Errorf("true heading %v outside [0, 360)", sol.TrueHeadingDeg)
	}
}

func TestSolveWindTriangleHeadwindAndTailwind(t *testing.T) {
	head, err := SolveWindTriangle(0, 250, 150, 0, 0)
	if err != nil {
		t.Fatalf("headwind: %v", err)
	}
	if math.Abs(head.GroundSpeedKt-100) > 0.01 {
		t.Errorf("headwind ground speed = %v, want 100", head.GroundSpeedKt)
	}
	if math.Abs(head.CorrectionAngleDeg) > 0.01 {
		t.Errorf("headwind WCA = %v, want 0", head.CorrectionAngleDeg)
	}

	tail, err := SolveWindTriangle(0, 250, 150, 180, 0)
	if err != nil {
		t.Fatalf("tailwind: %v", err)
	}
	if math.Abs(tail.GroundSpeedKt-400) > 0.01 {
		t.Errorf("tailwind ground speed = %v, want 400", tail.GroundSpeedKt)
	}
}

func TestSolveWindTriangleGroundSpeedFloor(t *testing.T) {
	// Wind faster than TAS straight on the nose: ground speed floors at zero
	// rather than going negative.
	sol, err := SolveWindTriangle(0, 100, 150, 0, 0)
	if err != nil {
		t.Fatalf("SolveWindTriangle: %v", err)
	}
	if sol.GroundSpeedKt != 0 {
		t.Fatalf("ground speed = %v, want 0", sol.GroundSpeedKt)
	}
}

func TestSolveWindTriangleClampsExtremeCrosswind(t *testing.T) {
	// Crosswind component exceeding TAS would push asin out of domain without
	// clamping.
	sol, err := SolveWindTriangle(0, 100, 200, 90, 0)
	if err != nil {
		t.Fatalf("SolveWindTriangle: %v", err)
	}
	if !isFinite(sol.CorrectionAngleDeg) || !isFinite(sol.GroundSpeedKt) {
		t.Fatalf("non-finite solution: %+v", sol)
	}
}

func TestSolveWindTrianglePhaseScalesCorrection(t *testing.T) {
	launch, err := SolveWindTriangle(90, 120, 25, 45, 1)
	if err != nil {
		t.Fatalf("phase 1: %v", err)
	}
	neutral, err := SolveWindTriangle(90, 120, 25, 45, 0)
	if err != nil {
		t.Fatalf("phase 0: %v", err)
	}

	want := neutral.CorrectionAngleDeg * 1.1
	if math.Abs(launch.CorrectionAngleDeg-want) > 1e-9 {
		t.Fatalf("phase-1 WCA = %v, want %v", launch.CorrectionAngleDeg, want)
	}
}

func TestSolveWindTriangleRejectsBadInputs(t *testing.T) {
	if _, err := SolveWindTriangle(0, 0, 10, 0, 0); !errors.Is(err, ErrInvalidAirspeed) {
		t.Errorf("zero TAS err = %v, want ErrInvalidAirspeed", err)
	}
	if _, err := SolveWindTriangle(0, -50, 10, 0, 0); !errors.Is(err, ErrInvalidAirspeed) {
		t.Errorf("negative TAS err = %v, want ErrInvalidAirspeed", err)
	}
	if _, err := SolveWindTriangle(0, 100, -5, 0, 0); !errors.Is(err, ErrInvalidWind) {
		t.Errorf("negative wind err = %v, want ErrInvalidWind", err)
	}
	if _, err := SolveWindTriangle(math.NaN(), 100, 5, 0, 0); !errors.Is(err, ErrInvalidWind) {
		t.Errorf("NaN course err = %v, want ErrInvalidWind", err)
	}
}

func TestTimeEnroute(t *testing.T) {
	got, err := TimeEnroute(250, 125, 0)
	if err != nil {
		t.Fatalf("TimeEnroute: %v", err)
	}
	if math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("TimeEnroute(250, 125) = %v, want 2.0", got)
	}

	adjusted, err := TimeEnroute(250, 125, 1)
	if err != nil {
		t.Fatalf("TimeEnroute phase 1: %v", err)
	}
	if math.Abs(adjusted-2.1) > 1e-9 {
		t.Fatalf("phase-1 time = %v, want 2.1", adjusted)
	}

	if _, err := TimeEnroute(250, 0, 0); !errors.Is(err, ErrInvalidSpeed) {
		t.Errorf("zero speed err = %v, want ErrInvalidSpeed", err)
	}
	if _, err := TimeEnroute(-1, 125, 0); !errors.Is(err, ErrInvalidDistance) {
		t.Errorf("negative distance err = %v, want ErrInvalidDistance", err)
	}
}

func TestPlanFuel(t *testing.T) {
	plan, err := PlanFuel(10, 2, 60, 15, 120, 0)
	if err != nil {
		t.Fatalf("PlanFuel: %v", err)
	}
	if math.Abs(plan.RequiredGal-20) > 1e-9 {
		t.Errorf("required = %v, want 20", plan.RequiredGal)
	}
	if math.Abs(plan.EnduranceHours-4.5) > 1e-9 {
		t.Errorf("endurance = %v, want 4.5", plan.EnduranceHours)
	}
	if math.Abs(plan.RangeNM-540) > 1e-9 {
		t.Errorf("range = %v, want 540", plan.RangeNM)
	}

	adjusted, err := PlanFuel(10, 2, 60, 15, 120, -1)
	if err != nil {
		t.Fatalf("PlanFuel phase -1: %v", err)
	}
	if math.Abs(adjusted.RequiredGal-19.4) > 1e-9 {
		t.Errorf("phase -1 required = %v, want 19.4", adjusted.RequiredGal)
	}
}

func TestPlanFuelRejectsBadInputs(t *testing.T) {
	if _, err := PlanFuel(0, 2, 60, 15, 120, 0); !errors.Is(err, ErrInvalidFuel) {
		t.Errorf("zero burn err = %v, want ErrInvalidFuel", err)
	}
	if _, err := PlanFuel(10, -1, 60, 15, 120, 0); !errors.Is(err, ErrInvalidFuel) {
		t.Errorf("negative time err = %v, want ErrInvalidFuel", err)
	}
	if _, err := PlanFuel(10, 2, 10, 15, 120, 0); !errors.Is(err, ErrInvalidFuel) {
		t.Errorf("reserve above usable err = %v, want ErrInvalidFuel", err)
	}
}
