// Command e6b-server serves the route planner over HTTP, backed by a SQLite
// waypoint database and the teardown-safe observability stack.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/delta-e6b/core"
	"github.com/signalsfoundry/delta-e6b/internal/api"
	"github.com/signalsfoundry/delta-e6b/internal/logging"
	"github.com/signalsfoundry/delta-e6b/internal/observability"
	"github.com/signalsfoundry/delta-e6b/internal/planner"
	"github.com/signalsfoundry/delta-e6b/internal/store"
	"github.com/signalsfoundry/delta-e6b/kb"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "HTTP address the API server listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	dbPath := flag.String("db", "e6b.db", "Path to the SQLite waypoint database")
	ringSize := flag.Int("ring-size", core.DefaultRingSize, "Number of indices in the address ring")
	seed := flag.Bool("seed", true, "Seed the database with the built-in city waypoints")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	ring, err := core.NewRing(*ringSize)
	if err != nil {
		log.Error(ctx, "invalid ring size", logging.Int("size", *ringSize), logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewRouteCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Error(ctx, "failed to open waypoint database", logging.String("path", *dbPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if *seed {
		added, err := db.Seed()
		if err != nil {
			log.Error(ctx, "failed to seed waypoints", logging.String("error", err.Error()))
			os.Exit(1)
		}
		if added > 0 {
			log.Info(ctx, "seeded waypoint database", logging.Int("added", added))
		}
	}

	knowledge := kb.NewKnowledgeBase(ring)
	waypoints, err := db.LoadAll()
	if err != nil {
		log.Error(ctx, "failed to load waypoints", logging.String("error", err.Error()))
		os.Exit(1)
	}
	for _, wp := range waypoints {
		if err := knowledge.AddWaypoint(wp); err != nil {
			log.Warn(ctx, "skipping waypoint", logging.String("name", wp.Name), logging.String("error", err.Error()))
		}
	}
	collector.SetWaypointCount(knowledge.Count())
	collector.SetRingSize(ring.Size())
	log.Info(ctx, "loaded waypoints", logging.Int("count", knowledge.Count()), logging.Int("ring_size", ring.Size()))

	svc := planner.NewService(knowledge, log, planner.WithMetricsRecorder(collector))
	server := api.NewServer(svc, knowledge, log, collector)

	httpSrv := &http.Server{
		Addr:    *httpAddr,
		Handler: server.Handler(),
	}

	log.Info(ctx, "starting API server", logging.String("addr", *httpAddr))
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "API server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.RouteCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
