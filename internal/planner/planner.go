// Package planner composes the ring, scoring, and navigation kernels into
// route solutions over the waypoint knowledge base.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/signalsfoundry/delta-e6b/core"
	"github.com/signalsfoundry/delta-e6b/internal/logging"
	"github.com/signalsfoundry/delta-e6b/kb"
	"github.com/signalsfoundry/delta-e6b/model"
)

// coincidentToleranceNM is the distance below which two waypoints are treated
// as the same point; the initial course is reported as 0 and must not be
// relied on.
const coincidentToleranceNM = 1e-6

// defaultCorridorThreshold is the minimum harmony for a pairing to count as a
// phase-optimized corridor.
const defaultCorridorThreshold = 1.05

var (
	ErrWaypointNotFound = kb.ErrWaypointNotFound
	ErrUnreachable      = errors.New("destination unreachable")
)

// MetricsRecorder receives solve outcomes. Implemented by
// observability.RouteCollector.
type MetricsRecorder interface {
	RecordSolve(outcome string, elapsed time.Duration)
}

// SolveRequest carries the inputs for a route computation. Fuel fields are
// optional; fuel planning runs only when BurnGPH is positive.
type SolveRequest struct {
	Origin      string
	Destination string

	TrueAirspeedKt float64
	WindSpeedKt    float64
	WindFromDeg    float64

	BurnGPH        float64
	UsableFuelGal  float64
	ReserveFuelGal float64
}

// Service solves routes between waypoints in the knowledge base.
type Service struct {
	ring    core.Ring
	kb      *kb.KnowledgeBase
	log     logging.Logger
	metrics MetricsRecorder
}

// Option customises a Service.
type Option func(*Service)

// WithMetricsRecorder attaches a metrics recorder to the service.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService constructs a planner over the given knowledge base.
func NewService(store *kb.KnowledgeBase, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.Noop()
	}
	s := &Service{
		ring: store.Ring(),
		kb:   store,
		log:  log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve resolves both endpoints and produces a full route solution.
func (s *Service) Solve(ctx context.Context, req SolveRequest) (*model.RouteSolution, error) {
	start := time.Now()
	sol, err := s.solve(ctx, req)
	s.record(outcomeFor(err), time.Since(start))
	return sol, err
}

func (s *Service) solve(ctx context.Context, req SolveRequest) (*model.RouteSolution, error) {
	origin, err := s.kb.GetWaypoint(req.Origin)
	if err != nil {
		return nil, err
	}
	dest, err := s.kb.GetWaypoint(req.Destination)
	if err != nil {
		return nil, err
	}

	from, err := core.NewLatLon(origin.Lat, origin.Lon)
	if err != nil {
		return nil, err
	}
	to, err := core.NewLatLon(dest.Lat, dest.Lon)
	if err != nil {
		return nil, err
	}

	distance := core.Haversine(from, to)
	course := 0.0
	if distance > coincidentToleranceNM {
		course = core.InitialBearing(from, to)
	}

	drawer, err := s.selectDrawer(origin.Anchor, dest.Anchor)
	if err != nil {
		return nil, err
	}

	wind, err := core.SolveWindTriangle(course, req.TrueAirspeedKt, req.WindSpeedKt, req.WindFromDeg, drawer.Phase)
	if err != nil {
		return nil, err
	}

	timeHours := 0.0
	if distance > coincidentToleranceNM {
		if wind.GroundSpeedKt <= 0 {
			return nil, fmt.Errorf("%w: wind eliminates ground speed on course %.0f", ErrUnreachable, course)
		}
		timeHours, err = core.TimeEnroute(distance, wind.GroundSpeedKt, drawer.Phase)
		if err != nil {
			return nil, err
		}
	}

	ringDist, err := s.ring.Distance(origin.Anchor, dest.Anchor)
	if err != nil {
		return nil, err
	}
	harmony := s.ring.PhaseHarmony(origin.Phase, dest.Phase, ringDist)
	confidence := s.ring.Confidence(ringDist, float64(origin.Phase*dest.Phase))

	gradient := 0.0
	if distance > coincidentToleranceNM {
		gradient = (dest.FieldNT - origin.FieldNT) / distance
	}

	sol := &model.RouteSolution{
		Origin:             origin.Name,
		Destination:        dest.Name,
		DistanceNM:         distance,
		InitialCourseDeg:   course,
		CorrectionDeg:      wind.CorrectionAngleDeg,
		TrueHeadingDeg:     wind.TrueHeadingDeg,
		GroundSpeedKt:      wind.GroundSpeedKt,
		TimeHours:          timeHours,
		PhaseHarmony:       harmony,
		Confidence:         confidence,
		RingDistance:       ringDist,
		FieldGradientNT:    gradient,
		MagneticEfficiency: core.MagneticEfficiency(gradient),
		DrawerIndex:        drawer.Index,
		DrawerPhase:        drawer.Phase,
	}

	if req.BurnGPH > 0 {
		plan, err := core.PlanFuel(req.BurnGPH, timeHours, req.UsableFuelGal, req.ReserveFuelGal, wind.GroundSpeedKt, drawer.Phase)
		if err != nil {
			return nil, err
		}
		sol.FuelRequiredGal = plan.RequiredGal
		sol.FuelEnduranceHrs = plan.EnduranceHours
		sol.FuelRangeNM = plan.RangeNM
	}

	s.log.Debug(ctx, "solved route",
		logging.String("origin", sol.Origin),
		logging.String("destination", sol.Destination),
		logging.Float64("distance_nm", sol.DistanceNM),
		logging.Float64("confidence", sol.Confidence),
		logging.Int("drawer", sol.DrawerIndex),
	)
	return sol, nil
}

// selectDrawer picks the best-scoring index among both anchors and their
// mirrors, preferring the launch phase.
func (s *Service) selectDrawer(anchors ...int) (core.Drawer, error) {
	best := core.Drawer{}
	bestScore := -1.0

	seen := make(map[int]struct{}, 2*len(anchors))
	for _, anchor := range anchors {
		mirror, err := s.ring.Mirror(anchor)
		if err != nil {
			return core.Drawer{}, err
		}
		for _, n := range []int{anchor, mirror} {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}

			score, err := s.ring.GeometryScore(n, 1)
			if err != nil {
				return core.Drawer{}, err
			}
			if score > bestScore {
				bestScore = score
				best, err = s.ring.Drawer(n)
				if err != nil {
					return core.Drawer{}, err
				}
			}
		}
	}
	return best, nil
}

// Corridors enumerates waypoint pairings that share a phase and whose harmony
// exceeds minHarmony (defaulting when <= 0), sorted by harmony descending.
func (s *Service) Corridors(ctx context.Context, minHarmony float64) ([]model.Corridor, error) {
	if minHarmony <= 0 {
		minHarmony = defaultCorridorThreshold
	}

	waypoints := s.kb.ListWaypoints()
	corridors := make([]model.Corridor, 0)
	for i, origin := range waypoints {
		for _, dest := range waypoints[i+1:] {
			if origin.Phase != dest.Phase {
				continue
			}
			ringDist, err := s.ring.Distance(origin.Anchor, dest.Anchor)
			if err != nil {
				return nil, err
			}
			harmony := s.ring.PhaseHarmony(origin.Phase, dest.Phase, ringDist)
			if harmony <= minHarmony {
				continue
			}
			corridors = append(corridors, model.Corridor{
				Origin:       origin.Name,
				Destination:  dest.Name,
				Harmony:      harmony,
				Confidence:   s.ring.Confidence(ringDist, float64(origin.Phase*dest.Phase)),
				RingDistance: ringDist,
			})
		}
	}

	sort.Slice(corridors, func(i, j int) bool { return corridors[i].Harmony > corridors[j].Harmony })

	s.log.Debug(ctx, "scanned corridors",
		logging.Int("waypoints", len(waypoints)),
		logging.Int("corridors", len(corridors)),
	)
	return corridors, nil
}

func (s *Service) record(outcome string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSolve(outcome, elapsed)
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrWaypointNotFound):
		return "not_found"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	default:
		return "invalid"
	}
}
