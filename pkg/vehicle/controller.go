// pkg/vehicle/controller.go
package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/actuator"
	"github.com/opd-ai/go-aviator/pkg/aero"
	"github.com/opd-ai/go-aviator/pkg/atmosphere"
	"github.com/opd-ai/go-aviator/pkg/event"
	"github.com/opd-ai/go-aviator/pkg/physics"
	"github.com/opd-ai/go-aviator/pkg/propulsion"
)

// State is the controller lifecycle state
type State int

const (
	Inactive State = iota
	ActiveEngineOff
	ActiveEngineOn
)

func (s State) String() string {
	switch s {
	case ActiveEngineOff:
		return "active_engine_off"
	case ActiveEngineOn:
		return "active_engine_on"
	default:
		return "inactive"
	}
}

// Dynamics is the per-archetype control-mixing policy a Controller calls
// through each tick.
type Dynamics interface {
	Archetype() Archetype
	// TickPropulsion updates every propulsion unit from the input.
	TickPropulsion(c *Controller, in Input)
	// TickControls drives surfaces or attitude feedback.
	TickControls(c *Controller, in Input, dt float64)
	// ComputeLift applies thrust and aerodynamic forces to the body.
	ComputeLift(c *Controller, in Input, dt float64)

	SetEngineOn(on bool)
	PreSpin()
	Reset()
	Units() []UnitSnapshot
	Surfaces() []SurfaceSnapshot
}

// Options carries the environment shared by all controllers.
type Options struct {
	Atmosphere  atmosphere.Model
	LiftCurve   aero.LiftCurve
	InvertPitch bool
	Sink        event.Sink
}

// UnitSnapshot reports one propulsion unit
type UnitSnapshot struct {
	Name        string
	SpinRate    float64
	MaxSpinRate float64
}

// SurfaceSnapshot reports one control surface
type SurfaceSnapshot struct {
	Name        string
	Kind        actuator.Kind
	State       actuator.State
	Angle       float64
	TargetAngle float64
}

// Snapshot is a read-only view of a controller for HUD and telemetry collaborators.
type Snapshot struct {
	Archetype Archetype
	State     State
	EngineOn  bool
	Position  mgl64.Vec3
	Altitude  float64
	Airspeed  float64
	Density   float64
	Units     []UnitSnapshot
	Surfaces  []SurfaceSnapshot
	WingTrail bool
}

// Controller runs the flight model of one vehicle against an external body.
// It is not safe for concurrent use; one simulation step owns it at a time.
type Controller struct {
	archetype Archetype
	cfg       Config
	opts      Options
	dynamics  Dynamics

	body  Body
	state State

	main    propulsion.Unit
	mainOut propulsion.Output

	altitude  float64
	density   float64
	wingTrail bool

	commands []Command
}

// New creates an inactive controller for an archetype.
func New(archetype Archetype, cfg Config, opts Options) (*Controller, error) {
	if opts.Atmosphere.SeaLevelTemperature == 0 {
		opts.Atmosphere = atmosphere.Standard(opts.Atmosphere.Gravity)
	}
	if opts.Sink == nil {
		opts.Sink = event.Discard
	}

	c := &Controller{
		archetype: archetype,
		cfg:       cfg,
		opts:      opts,
	}

	switch archetype {
	case Rotorcraft:
		c.dynamics = newRotorcraft(&c.cfg, opts.InvertPitch)
	case FixedWing:
		c.dynamics = newFixedWing(&c.cfg)
	default:
		return nil, ErrUnknownArchetype
	}

	c.density = c.opts.Atmosphere.Density(0)
	return c, nil
}

// Archetype returns the vehicle archetype
func (c *Controller) Archetype() Archetype { return c.archetype }

// Config returns the vehicle parameters
func (c *Controller) Config() Config { return c.cfg }

// State returns the lifecycle state
func (c *Controller) State() State { return c.state }

// Body returns the bound body, or nil while inactive.
func (c *Controller) Body() Body { return c.body }

// EngineOn reports whether the engine runs
func (c *Controller) EngineOn() bool { return c.state == ActiveEngineOn }

// SpinRate returns the main propulsion unit's spin rate
func (c *Controller) SpinRate() float64 { return c.main.SpinRate() }

// Altitude returns the (scaled) altitude used by the last tick
func (c *Controller) Altitude() float64 { return c.altitude }

// Density returns the air density used by the last tick
func (c *Controller) Density() float64 { return c.density }

// Activate binds a body and enters ActiveEngineOff with propulsion and
// surfaces reset. Pending commands are discarded.
func (c *Controller) Activate(body Body) {
	if body == nil {
		return
	}
	c.body = body
	c.state = ActiveEngineOff
	c.commands = nil
	c.main.Reset()
	c.mainOut = propulsion.Output{}
	c.dynamics.Reset()
	c.wingTrail = false

	if c.cfg.MaxAngularVelocity > 0 {
		body.SetMaxAngularVelocity(c.cfg.MaxAngularVelocity)
	}
	c.publish(event.VehicleActivated)
}

// Deactivate releases the body and returns to Inactive.
func (c *Controller) Deactivate() {
	if c.state == Inactive {
		return
	}
	c.publish(event.VehicleDeactivated)
	c.state = Inactive
	c.body = nil
	c.commands = nil
}

// Enqueue queues a command for the start of the next tick.
func (c *Controller) Enqueue(cmd Command) {
	c.commands = append(c.commands, cmd)
}

// Pending returns the number of queued commands
func (c *Controller) Pending() int { return len(c.commands) }

// ToggleEngine switches between ActiveEngineOff and ActiveEngineOn. Starting
// a stalled unit bumps its spin rate to the dead-start minimum.
func (c *Controller) ToggleEngine() {
	switch c.state {
	case ActiveEngineOff:
		c.setEngine(true)
	case ActiveEngineOn:
		c.setEngine(false)
	}
}

func (c *Controller) setEngine(on bool) {
	if c.state == Inactive || c.EngineOn() == on {
		return
	}
	c.main.SetEngineOn(on)
	c.dynamics.SetEngineOn(on)
	if on {
		c.state = ActiveEngineOn
		c.publish(event.EngineStarted)
	} else {
		c.state = ActiveEngineOff
		c.publish(event.EngineStopped)
	}
}

// Move teleports the body with zero velocity and the engine running, its
// propulsion pre-spun to the idle ceiling.
func (c *Controller) Move(pos mgl64.Vec3, rot mgl64.Quat) {
	if c.state == Inactive || c.body == nil {
		return
	}
	c.teleport(pos, rot)

	idle := c.cfg.Main.IdleSpinRate
	c.main.Preset(idle, idle)
	c.dynamics.PreSpin()
	c.setEngine(true)
	c.publish(event.VehicleMoved)
}

// Respawn returns the body to its spawn pose with propulsion zeroed and the engine off.
func (c *Controller) Respawn() {
	if c.state == Inactive || c.body == nil {
		return
	}
	c.setEngine(false)
	c.main.Reset()
	c.mainOut = propulsion.Output{}
	c.dynamics.Reset()
	c.teleport(c.cfg.Spawn.Position, c.cfg.Spawn.Rotation())
	c.publish(event.VehicleRespawned)
}

// Flip rights the vehicle when it is nearly stationary and upside down.
// It reports whether the recovery impulse was applied.
func (c *Controller) Flip() bool {
	if c.state == Inactive || c.body == nil {
		return false
	}
	if c.body.LinearVelocity().Len() >= c.cfg.Flip.MaxSpeed {
		return false
	}
	up := physics.Basis(c.body.Rotation(), physics.AxisY, false)
	if up.Dot(physics.WorldUp.Mul(-1)) <= c.cfg.Flip.UpsideDownDot {
		return false
	}

	mass := c.body.Mass()
	c.body.ApplyForceAtPoint(physics.WorldUp.Mul(mass*c.cfg.Flip.LiftPerMass), c.body.CenterOfMass())
	c.body.ApplyRelativeTorque(mgl64.Vec3{0, 0, mass * c.cfg.Flip.TorquePerMass})
	c.publish(event.VehicleFlipped)
	return true
}

func (c *Controller) teleport(pos mgl64.Vec3, rot mgl64.Quat) {
	c.body.Sleep()
	c.body.SetPose(pos, rot)
	c.body.SetAngularVelocity(mgl64.Vec3{})
	c.body.SetLinearVelocity(mgl64.Vec3{})
	c.body.WakeUp()
}

// Tick advances the flight model by dt seconds. It is a no-op while
// inactive; queued commands are applied first.
func (c *Controller) Tick(in Input, dt float64) {
	if c.state == Inactive || c.body == nil {
		return
	}
	c.applyCommands()
	in = in.Clamped()

	scale := c.cfg.AltitudeScale
	if scale == 0 {
		scale = 1
	}
	c.altitude = c.body.Position().Y() * scale
	c.density = c.opts.Atmosphere.Density(c.altitude)

	c.dynamics.TickPropulsion(c, in)
	c.dynamics.TickControls(c, in, dt)
	c.dynamics.ComputeLift(c, in, dt)
}

func (c *Controller) applyCommands() {
	cmds := c.commands
	c.commands = nil
	for _, cmd := range cmds {
		switch cmd.Kind {
		case CommandToggleEngine:
			c.ToggleEngine()
		case CommandMove:
			c.Move(cmd.Position, cmd.Rotation)
		case CommandRespawn:
			c.Respawn()
		case CommandFlip:
			c.Flip()
		}
	}
}

// throttleCeiling maps the throttle input to the main unit's spin ceiling.
func (c *Controller) throttleCeiling(in Input) float64 {
	switch {
	case in.ThrottleUp > 0:
		return c.cfg.Main.AccelSpinRate * in.ThrottleUp
	case in.ThrottleDown > 0:
		return c.cfg.Main.DecelSpinRate
	default:
		return c.cfg.Main.IdleSpinRate
	}
}

func (c *Controller) tickMain(in Input) {
	p := c.cfg.Main
	c.mainOut = c.main.Tick(p.SpinAccel, p.SpinDecel, c.throttleCeiling(in), p.SpinAxis)
}

// worldPoint converts a body-local offset to world space.
func (c *Controller) worldPoint(offset mgl64.Vec3) mgl64.Vec3 {
	return c.body.Position().Add(c.body.Rotation().Rotate(offset))
}

// applyThrust pushes the body along a propeller's thrust axis at its mount
// and returns the thrust magnitude.
func (c *Controller) applyThrust(p PropellerConfig, out propulsion.Output, sign float64) float64 {
	thrust := propulsion.Thrust(c.density, p.Radius, out.Speed(), c.cfg.PowerScaling)
	if thrust == 0 {
		return 0
	}
	dir := physics.Basis(c.body.Rotation(), p.ThrustAxis, p.ReverseThrust)
	c.body.ApplyForceAtPoint(dir.Mul(thrust*sign), c.worldPoint(p.Mount))
	return thrust
}

// applySurface computes and applies the aerodynamic force on a surface at a
// body-local offset whose orientation relative to the body is local.
func (c *Controller) applySurface(surface aero.Surface, offset mgl64.Vec3, local mgl64.Quat, span physics.Axis) aero.Sample {
	rot := c.body.Rotation().Mul(local)
	point := c.worldPoint(offset)
	v := physics.PointVelocity(c.body.LinearVelocity(), c.body.AngularVelocity(), c.body.CenterOfMass(), point)

	sample := aero.ComputeForces(
		c.opts.LiftCurve,
		surface,
		v,
		physics.Basis(rot, physics.AxisZ, false),
		physics.Basis(rot, span, false),
		c.density,
	)
	if f := sample.Force(); f.LenSqr() > 0 {
		c.body.ApplyForceAtPoint(f, point)
	}
	return sample
}

// setWingTrail records the wingtip trail state and reports transitions.
func (c *Controller) setWingTrail(on bool) {
	if on == c.wingTrail {
		return
	}
	c.wingTrail = on
	if on {
		c.publish(event.WingTrailStarted)
	} else {
		c.publish(event.WingTrailStopped)
	}
}

// Snapshot returns the current state for display and telemetry.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Archetype: c.archetype,
		State:     c.state,
		EngineOn:  c.EngineOn(),
		Altitude:  c.altitude,
		Density:   c.density,
		WingTrail: c.wingTrail,
	}
	if c.body != nil {
		s.Position = c.body.Position()
		s.Airspeed = c.body.LinearVelocity().Len()
	}
	s.Units = append([]UnitSnapshot{{
		Name:        "main",
		SpinRate:    c.main.SpinRate(),
		MaxSpinRate: c.main.MaxSpinRate(),
	}}, c.dynamics.Units()...)
	s.Surfaces = c.dynamics.Surfaces()
	return s
}

func (c *Controller) publish(t event.Type) {
	var pos mgl64.Vec3
	rot := mgl64.QuatIdent()
	if c.body != nil {
		pos, rot = c.body.Position(), c.body.Rotation()
	}
	c.opts.Sink.Publish(event.NewVehicleEvent(t, c, c.archetype.String(), pos, rot))
}
