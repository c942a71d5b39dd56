// cmd/flightsim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/opd-ai/go-aviator/pkg/config"
	"github.com/opd-ai/go-aviator/pkg/engine"
	"github.com/opd-ai/go-aviator/pkg/health"
	"github.com/opd-ai/go-aviator/pkg/logging"
	"github.com/opd-ai/go-aviator/pkg/telemetry"
	"github.com/opd-ai/go-aviator/pkg/validation"
	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

// memoryLimitMB is the heap size above which readiness fails.
const memoryLimitMB = 500

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithSessionID(context.Background(), logging.GenerateSessionID())

	configPath := flag.String("config", "flightsim.json", "Path to configuration file (json, yaml or toml)")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	vehicleName := flag.String("vehicle", "", "Vehicle to fly (rotorcraft or fixed-wing); overrides the config")
	duration := flag.Duration("duration", 30*time.Second, "Simulated flight time; 0 with -realtime runs until interrupted")
	realtime := flag.Bool("realtime", false, "Pace ticks against the wall clock")
	httpAddr := flag.String("http", "", "Address for health, metrics and command endpoints (e.g. :8080)")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if *vehicleName != "" {
		a, err := vehicle.ParseArchetype(*vehicleName)
		if err != nil {
			logger.Error(ctx, "Invalid vehicle", err, "vehicle", *vehicleName)
			os.Exit(1)
		}
		cfg.Active = a
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := telemetry.NewCollector(reg)
	if err != nil {
		logger.Error(ctx, "Failed to register metrics", err)
		os.Exit(1)
	}

	sim, err := engine.NewSimulation(cfg,
		engine.WithLogger(logger),
		engine.WithContext(ctx),
		engine.WithRecorder(collector),
	)
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if *httpAddr != "" {
		srv, err = serve(runCtx, logger, *httpAddr, sim, collector)
		if err != nil {
			logger.Error(ctx, "Failed to start HTTP server", err, "address", *httpAddr)
			os.Exit(1)
		}
	}

	sim.Start()
	sim.Enqueue(vehicle.ToggleEngineCommand())

	ticks, err := fly(runCtx, sim, logger, flightOptions{
		duration: *duration,
		realtime: *realtime,
		logEvery: time.Second,
	})
	sim.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "Flight aborted", err, "ticks", ticks)
	}

	final := sim.Snapshot()
	logger.Info(ctx, "Flight complete",
		"ticks", ticks,
		"vehicle", final.Archetype.String(),
		"altitude", final.Altitude,
		"airspeed", final.Airspeed,
	)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "HTTP server shutdown failed", err)
		}
	}
}

// loadConfig reads path when it exists and falls back to defaults plus
// environment overrides otherwise.
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.SimulationConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.Load("")
	}
	return config.Load(path)
}

// serve starts the health, metrics and command endpoints in the background.
func serve(ctx context.Context, logger *logging.Logger, addr string, sim *engine.Simulation, collector *telemetry.Collector) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSimulationRunningCheck(sim.Running))
	checker.AddCheck(health.NewTickStallCheck(sim.LastTick, 20*sim.StepDuration()+time.Second))
	checker.AddCheck(health.NewListenerHealthCheck(func() string { return ln.Addr().String() }))
	checker.AddCheck(health.NewMemoryHealthCheck(memoryLimitMB, health.HeapMB))

	limiter := validation.NewRateLimiter(10, time.Second)
	srv := &http.Server{
		Handler:      newMux(checker, collector, &commandHandler{ctx: ctx, sim: sim, limiter: limiter, logger: logger}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(limiter.Close)

	go func() {
		logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "HTTP server failed", err)
		}
	}()
	return srv, nil
}

func newMux(checker *health.HealthChecker, collector *telemetry.Collector, commands http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.LivenessHandler)
	mux.HandleFunc("/ready", checker.ReadinessHandler)
	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/command", commands)
	return mux
}
