// Package api exposes the planner over HTTP.
package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/signalsfoundry/delta-e6b/core"
	"github.com/signalsfoundry/delta-e6b/internal/logging"
	"github.com/signalsfoundry/delta-e6b/internal/observability"
	"github.com/signalsfoundry/delta-e6b/internal/planner"
	"github.com/signalsfoundry/delta-e6b/kb"
)

const serviceName = "delta-e6b"

// waypointNamePattern matches the identifier form waypoint names take in the
// knowledge base after normalization.
var waypointNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Server wires the planner and knowledge base behind a gin router.
type Server struct {
	engine    *gin.Engine
	planner   *planner.Service
	kb        *kb.KnowledgeBase
	log       logging.Logger
	collector *observability.RouteCollector
}

// NewServer builds the router with its middleware chain and routes. The
// collector is optional.
func NewServer(svc *planner.Service, store *kb.KnowledgeBase, log logging.Logger, collector *observability.RouteCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}

	registerValidations()

	s := &Server{
		planner:   svc,
		kb:        store,
		log:       log,
		collector: collector,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestMiddleware())
	engine.Use(otelgin.Middleware(serviceName))
	if collector != nil {
		engine.Use(collector.GinMiddleware())
	}

	engine.GET("/healthz", s.handleHealth)
	v1 := engine.Group("/v1")
	{
		v1.POST("/routes/solve", s.handleSolve)
		v1.GET("/waypoints", s.handleListWaypoints)
		v1.GET("/waypoints/:name", s.handleGetWaypoint)
		v1.GET("/corridors", s.handleCorridors)
	}

	s.engine = engine
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler { return s.engine }

// registerValidations installs the custom binding validations once per
// process; re-registration is harmless.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("waypointname", func(fl validator.FieldLevel) bool {
		return waypointNamePattern.MatchString(fl.Field().String())
	})
}

// requestMiddleware assigns every request an ID, propagates it through the
// context for downstream logging, and echoes it back in the response.
func (s *Server) requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx := logging.ContextWithRequestID(c.Request.Context(), id)
		ctx = logging.ContextWithLogger(ctx, s.log.With(logging.String("request_id", id)))
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

type solveRequest struct {
	Origin      string `json:"origin" binding:"required,waypointname"`
	Destination string `json:"destination" binding:"required,waypointname"`

	TrueAirspeedKt float64 `json:"true_airspeed_kt" binding:"required,gt=0"`
	WindSpeedKt    float64 `json:"wind_speed_kt" binding:"gte=0"`
	WindFromDeg    float64 `json:"wind_from_deg" binding:"gte=0,lt=360"`

	FuelBurnGPH    float64 `json:"fuel_burn_gph" binding:"gte=0"`
	UsableFuelGal  float64 `json:"usable_fuel_gal" binding:"gte=0"`
	ReserveFuelGal float64 `json:"reserve_fuel_gal" binding:"gte=0"`
}

func (s *Server) handleSolve(c *gin.Context) {
	var req solveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	sol, err := s.planner.Solve(c.Request.Context(), planner.SolveRequest{
		Origin:         req.Origin,
		Destination:    req.Destination,
		TrueAirspeedKt: req.TrueAirspeedKt,
		WindSpeedKt:    req.WindSpeedKt,
		WindFromDeg:    req.WindFromDeg,
		BurnGPH:        req.FuelBurnGPH,
		UsableFuelGal:  req.UsableFuelGal,
		ReserveFuelGal: req.ReserveFuelGal,
	})
	if err != nil {
		s.writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, sol)
}

func (s *Server) handleListWaypoints(c *gin.Context) {
	waypoints := s.kb.ListWaypoints()
	c.JSON(http.StatusOK, gin.H{
		"waypoints": waypoints,
		"count":     len(waypoints),
	})
}

func (s *Server) handleGetWaypoint(c *gin.Context) {
	wp, err := s.kb.GetWaypoint(c.Param("name"))
	if err != nil {
		s.writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, wp)
}

func (s *Server) handleCorridors(c *gin.Context) {
	minHarmony := 0.0
	if raw := c.Query("min_harmony"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, errors.New("min_harmony must be a number"))
			return
		}
		minHarmony = parsed
	}

	corridors, err := s.planner.Corridors(c.Request.Context(), minHarmony)
	if err != nil {
		s.writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"corridors": corridors,
		"count":     len(corridors),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"waypoints": s.kb.Count(),
		"ring_size": s.kb.Ring().Size(),
	})
}

func (s *Server) writeError(c *gin.Context, status int, err error) {
	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		s.log.Error(ctx, "request failed", logging.String("path", c.FullPath()), logging.Any("error", err.Error()))
	} else {
		s.log.Debug(ctx, "request rejected", logging.String("path", c.FullPath()), logging.Any("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"request_id": logging.RequestIDFromContext(ctx),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrWaypointNotFound):
		return http.StatusNotFound
	case errors.Is(err, planner.ErrUnreachable),
		errors.Is(err, core.ErrInvalidAirspeed),
		errors.Is(err, core.ErrInvalidWind),
		errors.Is(err, core.ErrInvalidDistance),
		errors.Is(err, core.ErrInvalidSpeed),
		errors.Is(err, core.ErrInvalidFuel),
		errors.Is(err, core.ErrInvalidCoordinate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
