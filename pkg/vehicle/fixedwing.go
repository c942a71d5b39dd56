// pkg/vehicle/fixedwing.go
package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/actuator"
	"github.com/opd-ai/go-aviator/pkg/aero"
	"github.com/opd-ai/go-aviator/pkg/atmosphere"
	"github.com/opd-ai/go-aviator/pkg/physics"
)

// part is one movable surface and where it sits on the airframe.
type part struct {
	name    string
	surface *actuator.Surface
	offset  mgl64.Vec3
	span    physics.Axis
	aero    aero.Surface
}

// wing is a fixed lifting section.
type wing struct {
	name   string
	offset mgl64.Vec3
	aero   aero.Surface
}

// fixedWing flies on its wings and steers with ailerons, elevator, rudder and flaps.
type fixedWing struct {
	cfg      *Config
	ailerons [2]*actuator.Surface
	flaps    [2]*actuator.Surface
	elevator *actuator.Surface
	rudder   *actuator.Surface
	// parts are applied in this order: flaps, ailerons, rudder, elevator.
	parts []part
	wings [2]wing
}

func mirrorX(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{-v.X(), v.Y(), v.Z()}
}

func surfaceLimits(s SurfaceConfig) actuator.Limits {
	if s.MinAngle == 0 {
		return actuator.Symmetric(s.MaxAngle)
	}
	return actuator.Limits{MaxAngle: s.MaxAngle, MinAngle: s.MinAngle}
}

func newSurface(kind actuator.Kind, s SurfaceConfig, mirror float64) *actuator.Surface {
	return actuator.New(actuator.Config{
		Kind:           kind,
		Hinge:          s.Hinge,
		Limits:         surfaceLimits(s),
		Speed:          s.Speed,
		ToNeutralSpeed: s.ToNeutralSpeed,
		Mirror:         mirror,
	}, mgl64.QuatIdent())
}

func newFixedWing(cfg *Config) *fixedWing {
	f := &fixedWing{cfg: cfg}

	surfaceAero := func(s SurfaceConfig) aero.Surface {
		return aero.Surface{
			Area:            s.Area(),
			LiftCoefficient: cfg.LiftCoefficient,
			DragDamping:     cfg.DragDamping,
		}
	}

	f.flaps[0] = newSurface(actuator.Flap, cfg.Flap, 1)
	f.flaps[1] = newSurface(actuator.Flap, cfg.Flap, 1)
	f.ailerons[0] = newSurface(actuator.Aileron, cfg.Aileron, 1)
	f.ailerons[1] = newSurface(actuator.Aileron, cfg.Aileron, -1)
	f.rudder = newSurface(actuator.Rudder, cfg.Rudder, 1)
	f.elevator = newSurface(actuator.Elevator, cfg.Elevator, 1)

	aileronAero := surfaceAero(cfg.Aileron)
	aileronAero.AoAScale = cfg.AileronAoAScale
	rudderAero := surfaceAero(cfg.Rudder)
	rudderAero.LiftAlongChord = cfg.RudderLiftAlongChord

	f.parts = []part{
		{name: "flap_left", surface: f.flaps[0], offset: cfg.Flap.Offset, span: cfg.Flap.SpanAxis, aero: surfaceAero(cfg.Flap)},
		{name: "flap_right", surface: f.flaps[1], offset: mirrorX(cfg.Flap.Offset), span: cfg.Flap.SpanAxis, aero: surfaceAero(cfg.Flap)},
		{name: "aileron_left", surface: f.ailerons[0], offset: cfg.Aileron.Offset, span: cfg.Aileron.SpanAxis, aero: aileronAero},
		{name: "aileron_right", surface: f.ailerons[1], offset: mirrorX(cfg.Aileron.Offset), span: cfg.Aileron.SpanAxis, aero: aileronAero},
		{name: "rudder", surface: f.rudder, offset: cfg.Rudder.Offset, span: cfg.Rudder.SpanAxis, aero: rudderAero},
		{name: "elevator", surface: f.elevator, offset: cfg.Elevator.Offset, span: cfg.Elevator.SpanAxis, aero: surfaceAero(cfg.Elevator)},
	}

	wingAero := aero.Surface{
		Area:            atmosphere.WingAreaPerSection(cfg.Wing.Span, cfg.Wing.RootChord, cfg.Wing.TipChord, cfg.Wing.Sections),
		LiftCoefficient: cfg.LiftCoefficient,
		DragDamping:     cfg.DragDamping,
	}
	f.wings = [2]wing{
		{name: "wing_left", offset: cfg.Wing.Offset, aero: wingAero},
		{name: "wing_right", offset: mirrorX(cfg.Wing.Offset), aero: wingAero},
	}
	return f
}

func (f *fixedWing) Archetype() Archetype { return FixedWing }

func (f *fixedWing) TickPropulsion(c *Controller, in Input) {
	c.tickMain(in)
}

func (f *fixedWing) TickControls(c *Controller, in Input, dt float64) {
	f.updateWingTrail(c)

	// Roll
	for _, a := range f.ailerons {
		a.Update(in.Roll(), dt)
	}

	// Pitch
	pitch := in.Pitch()
	if c.opts.InvertPitch {
		pitch = -pitch
	}
	f.elevator.Update(pitch, dt)

	// Yaw
	f.rudder.Update(in.Yaw(), dt)

	// Flaps
	for _, flap := range f.flaps {
		flap.Update(in.Flap(), dt)
	}
}

func (f *fixedWing) ComputeLift(c *Controller, in Input, dt float64) {
	c.applyThrust(f.cfg.Main, c.mainOut, 1)

	for _, p := range f.parts {
		c.applySurface(p.aero, p.offset, p.surface.Orientation(), p.span)
	}
	for _, w := range f.wings {
		c.applySurface(w.aero, w.offset, mgl64.QuatIdent(), physics.AxisX)
	}
}

// updateWingTrail shows wingtip trails while flying fast and turning hard.
func (f *fixedWing) updateWingTrail(c *Controller) {
	trail := f.cfg.WingTrail
	if trail.Speed <= 0 {
		return
	}
	speed := c.body.LinearVelocity().Len()
	turn := c.body.AngularVelocity().Len()
	c.setWingTrail(speed >= trail.Speed && turn >= trail.AngularSpeed)
}

func (f *fixedWing) SetEngineOn(bool) {}

func (f *fixedWing) PreSpin() {}

func (f *fixedWing) Reset() {
	for _, p := range f.parts {
		p.surface.Reset()
	}
}

func (f *fixedWing) Units() []UnitSnapshot { return nil }

func (f *fixedWing) Surfaces() []SurfaceSnapshot {
	out := make([]SurfaceSnapshot, 0, len(f.parts))
	for _, p := range f.parts {
		out = append(out, SurfaceSnapshot{
			Name:        p.name,
			Kind:        p.surface.Kind(),
			State:       p.surface.State(),
			Angle:       p.surface.Deflection(),
			TargetAngle: p.surface.TargetAngle(),
		})
	}
	return out
}
