// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-aviator/pkg/atmosphere"
	"github.com/opd-ai/go-aviator/pkg/config"
	"github.com/opd-ai/go-aviator/pkg/event"
	"github.com/opd-ai/go-aviator/pkg/logging"
	"github.com/opd-ai/go-aviator/pkg/rigidbody"
	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

// Status is the simulation lifecycle status
type Status int32

const (
	StatusWaiting Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return "waiting"
	}
}

// DefaultMaxCatchUpTicks bounds the ticks one Advance call may run.
const DefaultMaxCatchUpTicks = 5

// DefaultQueueLimit bounds the outbound event queue.
const DefaultQueueLimit = 1024

var (
	// ErrUnknownArchetype is returned for vehicles the simulation does not hold.
	ErrUnknownArchetype = vehicle.ErrUnknownArchetype
	// ErrNotRunning is returned when stepping a simulation that is not running.
	ErrNotRunning = errors.New("simulation is not running")
	// ErrActiveVehicle is returned when removing the selected vehicle.
	ErrActiveVehicle = errors.New("vehicle is active")
)

// Recorder receives per-tick measurements
type Recorder interface {
	RecordTick(duration time.Duration)
	RecordVehicle(s vehicle.Snapshot)
	RecordEvent(t event.Type)
}

// Option configures a Simulation
type Option func(*Simulation)

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Simulation) { s.recorder = r }
}

// WithLogger sets the lifecycle logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithContext sets the context carried by log records, typically one
// holding a session ID.
func WithContext(ctx context.Context) Option {
	return func(s *Simulation) { s.ctx = ctx }
}

// WithMaxCatchUpTicks bounds the ticks one Advance call may run
func WithMaxCatchUpTicks(n int) Option {
	return func(s *Simulation) { s.maxCatchUp = n }
}

// WithQueueLimit bounds the outbound event queue. Zero means unbounded.
func WithQueueLimit(n int) Option {
	return func(s *Simulation) { s.queueLimit = n }
}

// WithClock replaces the wall clock used for tick timing
func WithClock(now func() time.Time) Option {
	return func(s *Simulation) { s.now = now }
}

// Simulation steps a set of vehicles, one of them active, at a fixed rate.
// Enqueue, Select, Running, Active and LastTick are safe to call from other
// goroutines, including event handlers. Step, Advance, Start and Stop are
// serialized and must not be called from handlers.
type Simulation struct {
	cfg  *config.SimulationConfig
	step float64

	world       *ecs.World
	flight      *FlightSystem
	integration *IntegrationSystem
	vehicles    map[vehicle.Archetype]*Vehicle

	bus        *event.Bus
	queue      *event.Queue
	queueLimit int
	sink       event.Sink
	recorder   Recorder
	logger     *logging.Logger
	ctx        context.Context
	now        func() time.Time

	maxCatchUp  int
	accumulator float64

	stepMu sync.Mutex

	cmdMu    sync.Mutex
	commands []vehicle.Command
	selected *vehicle.Archetype

	status   atomic.Int32
	active   atomic.Int32
	tick     atomic.Uint64
	lastTick atomic.Int64
}

// NewSimulation builds one controller and reference body per archetype.
// The configured active vehicle is activated on Start.
func NewSimulation(cfg *config.SimulationConfig, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:        cfg,
		step:       1 / cfg.TickRate,
		world:      &ecs.World{},
		vehicles:   make(map[vehicle.Archetype]*Vehicle),
		bus:        event.NewEventBus(),
		queueLimit: DefaultQueueLimit,
		maxCatchUp: DefaultMaxCatchUpTicks,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.ctx == nil {
		s.ctx = logging.WithSessionID(context.Background(), logging.GenerateSessionID())
	}
	if s.maxCatchUp < 1 {
		s.maxCatchUp = 1
	}

	s.queue = event.NewQueue(s.queueLimit)
	sinks := event.Fanout{s.bus, s.queue}
	if s.recorder != nil {
		sinks = append(sinks, event.SinkFunc(func(e event.Event) { s.recorder.RecordEvent(e.GetType()) }))
	}
	s.sink = sinks

	s.flight = &FlightSystem{step: s.step}
	s.integration = &IntegrationSystem{step: s.step}
	s.world.AddSystem(s.flight)
	s.world.AddSystem(s.integration)

	vopts := vehicle.Options{
		Atmosphere:  atmosphere.Standard(cfg.Gravity),
		LiftCurve:   cfg.LiftCurve,
		InvertPitch: cfg.InvertPitch,
		Sink:        s.sink,
	}
	for _, a := range vehicle.Archetypes() {
		vcfg, err := cfg.Vehicle(a)
		if err != nil {
			return nil, err
		}
		if err := s.addVehicle(a, vcfg, vopts); err != nil {
			return nil, logging.WrapError(err, "failed to create %s", a)
		}
	}

	s.active.Store(int32(cfg.Active))
	return s, nil
}

func (s *Simulation) addVehicle(a vehicle.Archetype, vcfg vehicle.Config, opts vehicle.Options) error {
	controller, err := vehicle.New(a, vcfg, opts)
	if err != nil {
		return err
	}
	body := rigidbody.New(rigidbody.Config{
		Mass:           vcfg.Body.Mass,
		Inertia:        vcfg.Body.Inertia,
		CenterOfMass:   vcfg.Body.CenterOfMass,
		LinearDamping:  vcfg.Body.LinearDamping,
		AngularDamping: vcfg.Body.AngularDamping,
		Gravity:        s.cfg.Gravity,
		Ground:         s.cfg.Ground,
		GroundHeight:   s.cfg.GroundHeight,
	}, vcfg.Spawn.Position, vcfg.Spawn.Rotation())

	v := &Vehicle{BasicEntity: ecs.NewBasic(), Controller: controller, Body: body}
	s.vehicles[a] = v
	s.flight.Add(v)
	s.integration.Add(v)
	return nil
}

// Config returns the simulation configuration
func (s *Simulation) Config() *config.SimulationConfig { return s.cfg }

// Status returns the lifecycle status
func (s *Simulation) Status() Status { return Status(s.status.Load()) }

// Running reports whether the simulation accepts steps
func (s *Simulation) Running() bool { return s.Status() == StatusRunning }

// Active returns the archetype currently driven by input
func (s *Simulation) Active() vehicle.Archetype { return vehicle.Archetype(s.active.Load()) }

// Tick returns the number of completed ticks
func (s *Simulation) Tick() uint64 { return s.tick.Load() }

// LastTick returns when the last tick completed, or the start time before
// the first tick. It is zero before Start.
func (s *Simulation) LastTick() time.Time {
	ns := s.lastTick.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// StepDuration returns the fixed tick length
func (s *Simulation) StepDuration() time.Duration { return s.cfg.Step() }

// Start activates the selected vehicle on first start and begins accepting steps.
func (s *Simulation) Start() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	if s.Running() {
		return
	}
	v := s.vehicles[s.Active()]
	if v.Controller.State() == vehicle.Inactive {
		v.Controller.Activate(v.Body)
	}
	s.status.Store(int32(StatusRunning))
	s.lastTick.Store(s.now().UnixNano())
	s.publish(event.SimulationStarted)
	s.logger.Info(s.ctx, "simulation started",
		"vehicle", s.Active().String(),
		"tick_rate", s.cfg.TickRate,
	)
}

// Stop halts stepping. Vehicle state is kept, so a later Start resumes.
func (s *Simulation) Stop() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	if !s.Running() {
		return
	}
	s.status.Store(int32(StatusStopped))
	s.accumulator = 0
	s.publish(event.SimulationStopped)
	s.logger.Info(s.ctx, "simulation stopped", "ticks", s.Tick())
}

// Enqueue queues a command for the active vehicle at the next tick boundary.
func (s *Simulation) Enqueue(cmd vehicle.Command) {
	s.cmdMu.Lock()
	s.commands = append(s.commands, cmd)
	s.cmdMu.Unlock()
}

// Select requests a hand-off to another vehicle at the next tick boundary.
func (s *Simulation) Select(a vehicle.Archetype) error {
	if _, ok := s.vehicles[a]; !ok {
		return fmt.Errorf("select %d: %w", int(a), ErrUnknownArchetype)
	}
	s.cmdMu.Lock()
	s.selected = &a
	s.cmdMu.Unlock()
	return nil
}

// Controller returns the controller of an archetype. It is owned by the
// step loop and must not be used concurrently with Step.
func (s *Simulation) Controller(a vehicle.Archetype) (*vehicle.Controller, error) {
	v, ok := s.vehicles[a]
	if !ok {
		return nil, fmt.Errorf("controller %d: %w", int(a), ErrUnknownArchetype)
	}
	return v.Controller, nil
}

// Body returns the reference body of an archetype, under the same
// ownership rule as Controller.
func (s *Simulation) Body(a vehicle.Archetype) (*rigidbody.Body, error) {
	v, ok := s.vehicles[a]
	if !ok {
		return nil, fmt.Errorf("body %d: %w", int(a), ErrUnknownArchetype)
	}
	return v.Body, nil
}

// Snapshot returns the state of the active vehicle
func (s *Simulation) Snapshot() vehicle.Snapshot {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return s.vehicles[s.Active()].Controller.Snapshot()
}

// Remove takes a vehicle out of the world. The active vehicle cannot be removed.
func (s *Simulation) Remove(a vehicle.Archetype) error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	v, ok := s.vehicles[a]
	if !ok {
		return fmt.Errorf("remove %d: %w", int(a), ErrUnknownArchetype)
	}
	if a == s.Active() {
		return fmt.Errorf("remove %s: %w", a, ErrActiveVehicle)
	}
	v.Controller.Deactivate()
	s.world.RemoveEntity(v.BasicEntity)
	delete(s.vehicles, a)
	return nil
}

// Events drains the outbound event queue
func (s *Simulation) Events() []event.Event { return s.queue.Drain() }

// Subscribe registers a synchronous handler for one event type.
func (s *Simulation) Subscribe(t event.Type, h event.Handler) *event.Subscription {
	return s.bus.Subscribe(t, h)
}

// Step runs exactly one fixed tick with the given input.
func (s *Simulation) Step(in vehicle.Input) error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return s.stepLocked(in)
}

// Advance adds elapsed wall time to the accumulator and runs as many fixed
// ticks as it covers, at most the catch-up limit. Time beyond the limit is
// dropped except for the sub-tick remainder.
func (s *Simulation) Advance(elapsed time.Duration, in vehicle.Input) (int, error) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	if !s.Running() {
		return 0, ErrNotRunning
	}
	if elapsed > 0 {
		s.accumulator += elapsed.Seconds()
	}

	ticks := 0
	for s.accumulator >= s.step && ticks < s.maxCatchUp {
		if err := s.stepLocked(in); err != nil {
			return ticks, err
		}
		s.accumulator -= s.step
		ticks++
	}
	if s.accumulator >= s.step {
		dropped := int(s.accumulator / s.step)
		s.accumulator = math.Mod(s.accumulator, s.step)
		s.logger.Debug(s.ctx, "dropped ticks behind schedule", "dropped", dropped)
	}
	return ticks, nil
}

func (s *Simulation) stepLocked(in vehicle.Input) error {
	if !s.Running() {
		return ErrNotRunning
	}
	start := s.now()

	cmds, selected := s.takePending()
	if selected != nil {
		s.handOff(*selected)
	}
	active := s.vehicles[s.Active()]
	for _, cmd := range cmds {
		active.Controller.Enqueue(cmd)
	}

	s.flight.input = in
	s.world.Update(float32(s.step))

	s.tick.Add(1)
	end := s.now()
	s.lastTick.Store(end.UnixNano())

	if s.recorder != nil {
		s.recorder.RecordTick(end.Sub(start))
		s.recorder.RecordVehicle(active.Controller.Snapshot())
	}
	return nil
}

func (s *Simulation) takePending() ([]vehicle.Command, *vehicle.Archetype) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	cmds, selected := s.commands, s.selected
	s.commands, s.selected = nil, nil
	return cmds, selected
}

// handOff deactivates the current vehicle and activates the target at the
// same pose with its engine running.
func (s *Simulation) handOff(to vehicle.Archetype) {
	next, ok := s.vehicles[to]
	if !ok || to == s.Active() {
		return
	}
	from := s.vehicles[s.Active()]
	pos, rot := from.Body.Position(), from.Body.Rotation()

	from.Controller.Deactivate()
	next.Controller.Activate(next.Body)
	next.Controller.Move(pos, rot)
	s.active.Store(int32(to))

	s.publish(event.VehicleSelected)
	s.logger.Info(s.ctx, "vehicle selected",
		"vehicle", to.String(),
		"tick", s.Tick(),
	)
}

func (s *Simulation) publish(t event.Type) {
	s.sink.Publish(event.NewSimulationEvent(t, s, s.Tick(), s.Active().String()))
}
