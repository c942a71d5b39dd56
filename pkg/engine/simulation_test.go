// pkg/engine/simulation_test.go
package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-aviator/pkg/config"
	"github.com/opd-ai/go-aviator/pkg/event"
	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingRecorder struct {
	ticks     int
	snapshots []vehicle.Snapshot
	events    []event.Type
}

func (r *recordingRecorder) RecordTick(time.Duration)         { r.ticks++ }
func (r *recordingRecorder) RecordVehicle(s vehicle.Snapshot) { r.snapshots = append(r.snapshots, s) }
func (r *recordingRecorder) RecordEvent(t event.Type)         { r.events = append(r.events, t) }

func newSimulation(t *testing.T, opts ...Option) *Simulation {
	t.Helper()
	sim, err := NewSimulation(config.DefaultConfig(), opts...)
	require.NoError(t, err)
	return sim
}

func eventTypes(events []event.Event) []event.Type {
	out := make([]event.Type, 0, len(events))
	for _, e := range events {
		out = append(out, e.GetType())
	}
	return out
}

func TestNewSimulation_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TickRate = 0

	_, err := NewSimulation(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewSimulation_Defaults(t *testing.T) {
	sim, err := NewSimulation(nil)
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, sim.Status())
	assert.Equal(t, vehicle.Rotorcraft, sim.Active())
	assert.Equal(t, 20*time.Millisecond, sim.StepDuration())
	assert.True(t, sim.LastTick().IsZero())

	for _, a := range vehicle.Archetypes() {
		c, err := sim.Controller(a)
		require.NoError(t, err)
		assert.Equal(t, a, c.Archetype())
		assert.Equal(t, vehicle.Inactive, c.State())
	}
}

func TestSimulation_StepRequiresRunning(t *testing.T) {
	sim := newSimulation(t)

	assert.ErrorIs(t, sim.Step(vehicle.Input{}), ErrNotRunning)
	ticks, err := sim.Advance(time.Second, vehicle.Input{})
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.Zero(t, ticks)
}

func TestSimulation_StartStop(t *testing.T) {
	clock := newFakeClock()
	sim := newSimulation(t, WithClock(clock.now))

	sim.Start()
	sim.Start()
	assert.True(t, sim.Running())
	assert.Equal(t, clock.now(), sim.LastTick())

	c, err := sim.Controller(vehicle.Rotorcraft)
	require.NoError(t, err)
	assert.Equal(t, vehicle.ActiveEngineOff, c.State())
	assert.Equal(t, []event.Type{event.VehicleActivated, event.SimulationStarted}, eventTypes(sim.Events()))

	sim.Stop()
	assert.Equal(t, StatusStopped, sim.Status())
	assert.ErrorIs(t, sim.Step(vehicle.Input{}), ErrNotRunning)

	sim.Start()
	assert.Equal(t, []event.Type{event.SimulationStopped, event.SimulationStarted}, eventTypes(sim.Events()))
}

func TestSimulation_StepTicksAndIntegrates(t *testing.T) {
	clock := newFakeClock()
	sim := newSimulation(t, WithClock(clock.now))
	sim.Start()

	body, err := sim.Body(vehicle.Rotorcraft)
	require.NoError(t, err)
	startY := body.Position().Y()

	for i := 0; i < 10; i++ {
		clock.advance(20 * time.Millisecond)
		require.NoError(t, sim.Step(vehicle.Input{}))
	}

	assert.Equal(t, uint64(10), sim.Tick())
	assert.Equal(t, clock.now(), sim.LastTick())
	assert.Less(t, body.Position().Y(), startY)

	// Inactive vehicles are not integrated.
	idle, err := sim.Body(vehicle.FixedWing)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultFixedWing().Spawn.Position, idle.Position())
}

func TestSimulation_EnqueuedCommandsReachActiveVehicle(t *testing.T) {
	sim := newSimulation(t)
	sim.Start()

	sim.Enqueue(vehicle.ToggleEngineCommand())
	require.NoError(t, sim.Step(vehicle.Input{}))

	c, err := sim.Controller(vehicle.Rotorcraft)
	require.NoError(t, err)
	assert.True(t, c.EngineOn())
	assert.InDelta(t, 1.02, c.SpinRate(), 1e-12)
	assert.True(t, sim.Snapshot().EngineOn)
}

func TestSimulation_SelectHandsOffAtTickBoundary(t *testing.T) {
	sim := newSimulation(t)
	sim.Start()
	for i := 0; i < 5; i++ {
		require.NoError(t, sim.Step(vehicle.Input{}))
	}
	sim.Events()

	require.NoError(t, sim.Select(vehicle.FixedWing))
	assert.Equal(t, vehicle.Rotorcraft, sim.Active())

	rotor, _ := sim.Body(vehicle.Rotorcraft)
	handOffPose := rotor.Position()

	require.NoError(t, sim.Step(vehicle.Input{}))
	assert.Equal(t, vehicle.FixedWing, sim.Active())

	heli, _ := sim.Controller(vehicle.Rotorcraft)
	plane, _ := sim.Controller(vehicle.FixedWing)
	assert.Equal(t, vehicle.Inactive, heli.State())
	assert.Equal(t, vehicle.ActiveEngineOn, plane.State())

	events := sim.Events()
	assert.Equal(t, []event.Type{
		event.VehicleDeactivated,
		event.VehicleActivated,
		event.EngineStarted,
		event.VehicleMoved,
		event.VehicleSelected,
	}, eventTypes(events))

	moved, ok := events[3].(*event.VehicleEvent)
	require.True(t, ok)
	assert.Equal(t, "fixed-wing", moved.Vehicle)
	assert.Equal(t, handOffPose, moved.Position)

	selected, ok := events[4].(*event.SimulationEvent)
	require.True(t, ok)
	assert.Equal(t, "fixed-wing", selected.Vehicle)
	assert.Equal(t, uint64(5), selected.Tick)

	// The deactivated body stays where it was handed off.
	assert.Equal(t, handOffPose, rotor.Position())
}

func TestSimulation_SelectSameVehicleIsNoop(t *testing.T) {
	sim := newSimulation(t)
	sim.Start()
	sim.Events()

	require.NoError(t, sim.Select(vehicle.Rotorcraft))
	require.NoError(t, sim.Step(vehicle.Input{}))
	assert.Empty(t, sim.Events())
}

func TestSimulation_UnknownArchetype(t *testing.T) {
	sim := newSimulation(t)

	assert.ErrorIs(t, sim.Select(vehicle.Archetype(9)), ErrUnknownArchetype)
	_, err := sim.Controller(vehicle.Archetype(9))
	assert.ErrorIs(t, err, ErrUnknownArchetype)
	_, err = sim.Body(vehicle.Archetype(9))
	assert.ErrorIs(t, err, ErrUnknownArchetype)
}

func TestSimulation_Advance(t *testing.T) {
	sim := newSimulation(t)
	sim.Start()

	ticks, err := sim.Advance(50*time.Millisecond, vehicle.Input{})
	require.NoError(t, err)
	assert.Equal(t, 2, ticks)

	ticks, err = sim.Advance(25*time.Millisecond, vehicle.Input{})
	require.NoError(t, err)
	assert.Equal(t, 1, ticks)

	ticks, err = sim.Advance(2*time.Millisecond, vehicle.Input{})
	require.NoError(t, err)
	assert.Equal(t, 0, ticks)

	ticks, err = sim.Advance(time.Second, vehicle.Input{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCatchUpTicks, ticks)
	assert.Equal(t, uint64(3+DefaultMaxCatchUpTicks), sim.Tick())
}

func TestSimulation_AdvanceCustomCatchUp(t *testing.T) {
	sim := newSimulation(t, WithMaxCatchUpTicks(2))
	sim.Start()

	ticks, err := sim.Advance(time.Second, vehicle.Input{})
	require.NoError(t, err)
	assert.Equal(t, 2, ticks)
}

func TestSimulation_Recorder(t *testing.T) {
	rec := &recordingRecorder{}
	sim := newSimulation(t, WithRecorder(rec))
	sim.Start()
	sim.Enqueue(vehicle.ToggleEngineCommand())

	require.NoError(t, sim.Step(vehicle.Input{}))
	require.NoError(t, sim.Step(vehicle.Input{}))

	assert.Equal(t, 2, rec.ticks)
	require.Len(t, rec.snapshots, 2)
	assert.Equal(t, vehicle.Rotorcraft, rec.snapshots[1].Archetype)
	assert.True(t, rec.snapshots[1].EngineOn)
	assert.Equal(t, []event.Type{event.VehicleActivated, event.SimulationStarted, event.EngineStarted}, rec.events)
}

func TestSimulation_SubscribeHandlerMayEnqueue(t *testing.T) {
	sim := newSimulation(t)
	sim.Subscribe(event.EngineStarted, func(event.Event) {
		sim.Enqueue(vehicle.ToggleEngineCommand())
	})
	sim.Start()

	sim.Enqueue(vehicle.ToggleEngineCommand())
	require.NoError(t, sim.Step(vehicle.Input{}))
	c, _ := sim.Controller(vehicle.Rotorcraft)
	assert.True(t, c.EngineOn())

	require.NoError(t, sim.Step(vehicle.Input{}))
	assert.False(t, c.EngineOn())
}

func TestSimulation_Remove(t *testing.T) {
	sim := newSimulation(t)
	sim.Start()

	assert.ErrorIs(t, sim.Remove(vehicle.Rotorcraft), ErrActiveVehicle)
	require.NoError(t, sim.Remove(vehicle.FixedWing))

	assert.ErrorIs(t, sim.Select(vehicle.FixedWing), ErrUnknownArchetype)
	_, err := sim.Controller(vehicle.FixedWing)
	assert.ErrorIs(t, err, ErrUnknownArchetype)
	assert.ErrorIs(t, sim.Remove(vehicle.FixedWing), ErrUnknownArchetype)

	assert.Len(t, sim.flight.entities, 1)
	assert.Len(t, sim.integration.entities, 1)
	assert.NoError(t, sim.Step(vehicle.Input{}))
}

func TestSimulation_Deterministic(t *testing.T) {
	run := func() []mgl64.Vec3 {
		sim := newSimulation(t)
		sim.Start()
		sim.Enqueue(vehicle.ToggleEngineCommand())

		var trace []mgl64.Vec3
		for i := 0; i < 120; i++ {
			if i == 60 {
				require.NoError(t, sim.Select(vehicle.FixedWing))
			}
			in := vehicle.Input{ThrottleUp: 1, Move: mgl64.Vec2{0.2, -0.1}, Right: i%20 < 5}
			require.NoError(t, sim.Step(in))
			trace = append(trace, sim.Snapshot().Position)
		}
		return trace
	}

	assert.Equal(t, run(), run())
}

func TestSimulation_ConcurrentEnqueue(t *testing.T) {
	sim := newSimulation(t)
	sim.Start()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sim.Enqueue(vehicle.FlipCommand())
				_ = sim.Running()
				_ = sim.LastTick()
			}
		}()
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, sim.Step(vehicle.Input{}))
	}
	wg.Wait()
	require.NoError(t, sim.Step(vehicle.Input{}))

	assert.Equal(t, uint64(51), sim.Tick())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "waiting", StatusWaiting.String())
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "stopped", StatusStopped.String())
}
