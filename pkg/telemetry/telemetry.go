// Package telemetry exports flight and tick-loop metrics to Prometheus.
package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opd-ai/go-aviator/pkg/event"
	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

// Collector bundles the simulation metrics. It satisfies the engine's
// Recorder interface so a Simulation can drive it once per tick.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram

	SpinRate     *prometheus.GaugeVec
	Altitude     *prometheus.GaugeVec
	Airspeed     *prometheus.GaugeVec
	AirDensity   *prometheus.GaugeVec
	EngineOn     *prometheus.GaugeVec
	SurfaceAngle *prometheus.GaugeVec
	WingTrail    *prometheus.GaugeVec
	Events       *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Metrics already registered under the same name are reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Ticks, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightsim_ticks_total",
		Help: "Total number of completed simulation ticks.",
	}), "flightsim_ticks_total"); err != nil {
		return nil, err
	}
	if c.TickDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightsim_tick_duration_seconds",
		Help:    "Wall time spent computing one simulation tick.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.02, 0.05},
	}), "flightsim_tick_duration_seconds"); err != nil {
		return nil, err
	}

	gauges := []struct {
		dst    **prometheus.GaugeVec
		name   string
		help   string
		labels []string
	}{
		{&c.SpinRate, "flightsim_spin_rate", "Current spin rate of a propulsion unit.", []string{"vehicle", "unit"}},
		{&c.Altitude, "flightsim_altitude_meters", "Altitude of the vehicle above the air-density reference.", []string{"vehicle"}},
		{&c.Airspeed, "flightsim_airspeed_mps", "Magnitude of the vehicle's linear velocity.", []string{"vehicle"}},
		{&c.AirDensity, "flightsim_air_density", "Air density at the vehicle's altitude in kg/m^3.", []string{"vehicle"}},
		{&c.EngineOn, "flightsim_engine_on", "1 while the vehicle's engine is on.", []string{"vehicle"}},
		{&c.SurfaceAngle, "flightsim_surface_angle_degrees", "Current deflection of a control surface.", []string{"vehicle", "surface"}},
		{&c.WingTrail, "flightsim_wing_trail", "1 while the wing-tip trail is showing.", []string{"vehicle"}},
	}
	for _, g := range gauges {
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: g.name, Help: g.help}, g.labels)
		if *g.dst, err = registerGaugeVec(reg, vec, g.name); err != nil {
			return nil, err
		}
	}

	if c.Events, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightsim_events_total",
		Help: "Total number of lifecycle events, labeled by event type.",
	}, []string{"type"}), "flightsim_events_total"); err != nil {
		return nil, err
	}

	return c, nil
}

// RecordTick counts a tick and observes how long it took.
func (c *Collector) RecordTick(d time.Duration) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDuration.Observe(d.Seconds())
}

// RecordVehicle sets the per-vehicle gauges from a controller snapshot.
func (c *Collector) RecordVehicle(s vehicle.Snapshot) {
	if c == nil {
		return
	}
	name := s.Archetype.String()
	for _, u := range s.Units {
		c.SpinRate.WithLabelValues(name, u.Name).Set(u.SpinRate)
	}
	for _, sf := range s.Surfaces {
		c.SurfaceAngle.WithLabelValues(name, sf.Name).Set(sf.Angle)
	}
	c.Altitude.WithLabelValues(name).Set(s.Altitude)
	c.Airspeed.WithLabelValues(name).Set(s.Airspeed)
	c.AirDensity.WithLabelValues(name).Set(s.Density)
	c.EngineOn.WithLabelValues(name).Set(boolGauge(s.EngineOn))
	c.WingTrail.WithLabelValues(name).Set(boolGauge(s.WingTrail))
}

// RecordEvent counts one lifecycle event.
func (c *Collector) RecordEvent(t event.Type) {
	if c == nil {
		return
	}
	c.Events.WithLabelValues(string(t)).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
