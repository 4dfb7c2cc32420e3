package planner

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/delta-e6b/core"
	"github.com/signalsfoundry/delta-e6b/internal/logging"
	"github.com/signalsfoundry/delta-e6b/kb"
	"github.com/signalsfoundry/delta-e6b/model"
)

func newTestKB(t *testing.T) *kb.KnowledgeBase {
	t.Helper()
	store := kb.NewKnowledgeBase(core.DefaultRing())
	waypoints := []model.Waypoint{
		{Name: "LONDON", Lat: 51.4775, Lon: -0.4614, FieldNT: 49000},
		{Name: "NEW_YORK", Lat: 40.6413, Lon: -73.7781, FieldNT: 52000},
		{Name: "PARIS", Lat: 49.0097, Lon: 2.5479, FieldNT: 48500},
		{Name: "TOKYO", Lat: 35.7653, Lon: 140.3854, FieldNT: 46500},
		{Name: "SYDNEY", Lat: -33.9399, Lon: 151.1753, FieldNT: 57000},
		{Name: "REYKJAVIK", Lat: 64.1300, Lon: -21.9406, FieldNT: 52500},
	}
	for _, wp := range waypoints {
		if err := store.AddWaypoint(wp); err != nil {
			t.Fatalf("AddWaypoint(%s): %v", wp.Name, err)
		}
	}
	return store
}

type captureRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (c *captureRecorder) RecordSolve(outcome string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

func (c *captureRecorder) last(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.outcomes) == 0 {
		t.Fatal("no solve outcomes recorded")
	}
	return c.outcomes[len(c.outcomes)-1]
}

func TestSolveTransatlantic(t *testing.T) {
	svc := NewService(newTestKB(t), logging.Noop())

	sol, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "LONDON",
		Destination:    "NEW_YORK",
		TrueAirspeedKt: 450,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	// Great-circle LHR to JFK is roughly 3000 NM.
	if sol.DistanceNM < 2900 || sol.DistanceNM > 3150 {
		t.Errorf("distance = %.1f NM, want roughly 3000", sol.DistanceNM)
	}
	if sol.InitialCourseDeg < 240 || sol.InitialCourseDeg > 300 {
		t.Errorf("initial course = %.1f, want westbound", sol.InitialCourseDeg)
	}
	if sol.GroundSpeedKt <= 0 {
		t.Errorf("ground speed = %.1f, want positive", sol.GroundSpeedKt)
	}
	if sol.TimeHours <= 0 {
		t.Errorf("time enroute = %.2f, want positive", sol.TimeHours)
	}
	if sol.Confidence < 0 || sol.Confidence > 100 {
		t.Errorf("confidence = %.1f, want within [0, 100]", sol.Confidence)
	}
	if sol.DrawerIndex < 1 || sol.DrawerIndex > core.DefaultRingSize {
		t.Errorf("drawer index = %d, out of ring range", sol.DrawerIndex)
	}
	if sol.FuelRequiredGal != 0 {
		t.Errorf("fuel required = %.1f without a burn rate, want 0", sol.FuelRequiredGal)
	}
}

func TestSolveNameNormalization(t *testing.T) {
	svc := NewService(newTestKB(t), logging.Noop())

	sol, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "  london ",
		Destination:    "paris",
		TrueAirspeedKt: 120,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Origin != "LONDON" || sol.Destination != "PARIS" {
		t.Errorf("resolved endpoints = %s -> %s, want LONDON -> PARIS", sol.Origin, sol.Destination)
	}
}

func TestSolveUnknownWaypoint(t *testing.T) {
	rec := &captureRecorder{}
	svc := NewService(newTestKB(t), logging.Noop(), WithMetricsRecorder(rec))

	_, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "LONDON",
		Destination:    "ATLANTIS",
		TrueAirspeedKt: 120,
	})
	if !errors.Is(err, ErrWaypointNotFound) {
		t.Fatalf("err = %v, want ErrWaypointNotFound", err)
	}
	if got := rec.last(t); got != "not_found" {
		t.Errorf("recorded outcome = %q, want not_found", got)
	}
}

func TestSolveCoincidentEndpoints(t *testing.T) {
	svc := NewService(newTestKB(t), logging.Noop())

	sol, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "LONDON",
		Destination:    "LONDON",
		TrueAirspeedKt: 120,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.DistanceNM > 1e-6 {
		t.Errorf("distance = %g, want ~0", sol.DistanceNM)
	}
	if sol.InitialCourseDeg != 0 {
		t.Errorf("course = %.1f for coincident endpoints, want 0", sol.InitialCourseDeg)
	}
	if sol.TimeHours != 0 {
		t.Errorf("time = %.2f for coincident endpoints, want 0", sol.TimeHours)
	}
	if sol.FieldGradientNT != 0 {
		t.Errorf("gradient = %g for coincident endpoints, want 0", sol.FieldGradientNT)
	}
	if sol.RingDistance != 0 {
		t.Errorf("ring distance = %d, want 0", sol.RingDistance)
	}
}

func TestSolveHeadwindExceedsAirspeed(t *testing.T) {
	store := kb.NewKnowledgeBase(core.DefaultRing())
	for _, wp := range []model.Waypoint{
		{Name: "EQ_WEST", Lat: 0, Lon: 0, FieldNT: 40000},
		{Name: "EQ_EAST", Lat: 0, Lon: 10, FieldNT: 40000},
	} {
		if err := store.AddWaypoint(wp); err != nil {
			t.Fatalf("AddWaypoint(%s): %v", wp.Name, err)
		}
	}

	rec := &captureRecorder{}
	svc := NewService(store, logging.Noop(), WithMetricsRecorder(rec))

	// Due east course into a 200 kt wind from due east at 100 kt TAS.
	_, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "EQ_WEST",
		Destination:    "EQ_EAST",
		TrueAirspeedKt: 100,
		WindSpeedKt:    200,
		WindFromDeg:    90,
	})
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
	if got := rec.last(t); got != "unreachable" {
		t.Errorf("recorded outcome = %q, want unreachable", got)
	}
}

func TestSolveInvalidAirspeed(t *testing.T) {
	rec := &captureRecorder{}
	svc := NewService(newTestKB(t), logging.Noop(), WithMetricsRecorder(rec))

	_, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "LONDON",
		Destination:    "PARIS",
		TrueAirspeedKt: 0,
	})
	if !errors.Is(err, core.ErrInvalidAirspeed) {
		t.Fatalf("err = %v, want ErrInvalidAirspeed", err)
	}
	if got := rec.last(t); got != "invalid" {
		t.Errorf("recorded outcome = %q, want invalid", got)
	}
}

func TestSolveWithFuelPlan(t *testing.T) {
	svc := NewService(newTestKB(t), logging.Noop())

	sol, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "LONDON",
		Destination:    "PARIS",
		TrueAirspeedKt: 120,
		BurnGPH:        10,
		UsableFuelGal:  48,
		ReserveFuelGal: 8,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.FuelRequiredGal <= 0 {
		t.Errorf("fuel required = %.2f, want positive", sol.FuelRequiredGal)
	}
	if math.Abs(sol.FuelEnduranceHrs-4.0) > 1e-9 {
		t.Errorf("endurance = %.2f hours, want 4.0", sol.FuelEnduranceHrs)
	}
	wantRange := sol.FuelEnduranceHrs * sol.GroundSpeedKt
	if math.Abs(sol.FuelRangeNM-wantRange) > 1e-6 {
		t.Errorf("range = %.1f NM, want %.1f", sol.FuelRangeNM, wantRange)
	}
}

func TestSolveSuccessOutcomeRecorded(t *testing.T) {
	rec := &captureRecorder{}
	svc := NewService(newTestKB(t), logging.Noop(), WithMetricsRecorder(rec))

	if _, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "TOKYO",
		Destination:    "SYDNEY",
		TrueAirspeedKt: 480,
	}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := rec.last(t); got != "ok" {
		t.Errorf("recorded outcome = %q, want ok", got)
	}
}

func TestSolveResultsAreFinite(t *testing.T) {
	svc := NewService(newTestKB(t), logging.Noop())

	// Near-antipodal pair with a strong quartering wind.
	sol, err := svc.Solve(context.Background(), SolveRequest{
		Origin:         "REYKJAVIK",
		Destination:    "SYDNEY",
		TrueAirspeedKt: 480,
		WindSpeedKt:    150,
		WindFromDeg:    45,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for name, v := range map[string]float64{
		"distance":   sol.DistanceNM,
		"course":     sol.InitialCourseDeg,
		"correction": sol.CorrectionDeg,
		"heading":    sol.TrueHeadingDeg,
		"gs":         sol.GroundSpeedKt,
		"time":       sol.TimeHours,
		"harmony":    sol.PhaseHarmony,
		"confidence": sol.Confidence,
		"gradient":   sol.FieldGradientNT,
		"efficiency": sol.MagneticEfficiency,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, want finite", name, v)
		}
	}
}

func TestCorridors(t *testing.T) {
	store := newTestKB(t)
	svc := NewService(store, logging.Noop())

	corridors, err := svc.Corridors(context.Background(), 0)
	if err != nil {
		t.Fatalf("Corridors: %v", err)
	}

	for i, c := range corridors {
		if c.Harmony <= defaultCorridorThreshold {
			t.Errorf("corridor %s->%s harmony = %.4f, want > %.2f", c.Origin, c.Destination, c.Harmony, defaultCorridorThreshold)
		}
		origin, err := store.GetWaypoint(c.Origin)
		if err != nil {
			t.Fatalf("GetWaypoint(%s): %v", c.Origin, err)
		}
		dest, err := store.GetWaypoint(c.Destination)
		if err != nil {
			t.Fatalf("GetWaypoint(%s): %v", c.Destination, err)
		}
		if origin.Phase != dest.Phase {
			t.Errorf("corridor %s->%s joins phases %d and %d, want equal", c.Origin, c.Destination, origin.Phase, dest.Phase)
		}
		if i > 0 && corridors[i-1].Harmony < c.Harmony {
			t.Errorf("corridors not sorted by harmony at index %d", i)
		}
	}
}

func TestCorridorsThresholdFiltersEverything(t *testing.T) {
	svc := NewService(newTestKB(t), logging.Noop())

	// Harmony is bounded above by 1 + alpha, so this threshold excludes all.
	corridors, err := svc.Corridors(context.Background(), 1.2)
	if err != nil {
		t.Fatalf("Corridors: %v", err)
	}
	if len(corridors) != 0 {
		t.Errorf("got %d corridors above harmony 1.2, want 0", len(corridors))
	}
}
