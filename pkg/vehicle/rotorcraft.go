// pkg/vehicle/rotorcraft.go
package vehicle

import (
	"github.com/opd-ai/go-aviator/pkg/actuator"
	"github.com/opd-ai/go-aviator/pkg/physics"
	"github.com/opd-ai/go-aviator/pkg/propulsion"
	"github.com/opd-ai/go-aviator/pkg/stabilizer"
)

// rotorcraft lifts on its main rotor, yaws with the tail rotor and relies on
// the stabilizer for roll and pitch.
type rotorcraft struct {
	cfg         *Config
	tail        propulsion.Unit
	tailOut     propulsion.Output
	turningLeft bool
	stab        *stabilizer.Stabilizer
	yaw         actuator.Torque
}

func newRotorcraft(cfg *Config, invertPitch bool) *rotorcraft {
	return &rotorcraft{
		cfg: cfg,
		stab: stabilizer.New(stabilizer.Config{
			GyroPower:             cfg.Gyro.Power,
			GyroAssistStrength:    cfg.Gyro.AssistStrength,
			StabilizationStrength: cfg.Gyro.StabilizationStrength,
			RollDamping:           cfg.Gyro.RollDamping,
			InvertPitch:           invertPitch,
		}),
		yaw: actuator.Torque{Axis: physics.Up, Power: cfg.Gyro.YawTorque},
	}
}

func (r *rotorcraft) Archetype() Archetype { return Rotorcraft }

// tailCeiling opens the tail rotor to its full rate while yawing.
func (r *rotorcraft) tailCeiling(in Input) float64 {
	if in.YawPressed() {
		return r.cfg.Tail.AccelSpinRate
	}
	return r.cfg.Tail.IdleSpinRate
}

func (r *rotorcraft) TickPropulsion(c *Controller, in Input) {
	c.tickMain(in)

	t := r.cfg.Tail
	r.tailOut = r.tail.Tick(t.SpinAccel, t.SpinDecel, r.tailCeiling(in), t.SpinAxis)
	r.turningLeft = in.Left
}

func (r *rotorcraft) TickControls(c *Controller, in Input, dt float64) {
	r.stab.Apply(c.body, in.Roll(), in.Pitch(), dt)
	if r.yaw.Power != 0 {
		if torque := r.yaw.Output(in.Yaw()); torque.LenSqr() > 0 {
			c.body.ApplyRelativeTorque(torque)
		}
	}
}

func (r *rotorcraft) ComputeLift(c *Controller, in Input, dt float64) {
	c.applyThrust(r.cfg.Main, c.mainOut, 1)

	// The tail pushes right to yaw left and left otherwise.
	sign := -1.0
	if r.turningLeft {
		sign = 1
	}
	c.applyThrust(r.cfg.Tail, r.tailOut, sign)
}

func (r *rotorcraft) SetEngineOn(on bool) {
	r.tail.SetEngineOn(on)
}

func (r *rotorcraft) PreSpin() {
	idle := r.cfg.Tail.IdleSpinRate
	r.tail.Preset(idle, idle)
}

func (r *rotorcraft) Reset() {
	r.tail.Reset()
	r.tailOut = propulsion.Output{}
	r.turningLeft = false
}

func (r *rotorcraft) Units() []UnitSnapshot {
	return []UnitSnapshot{{
		Name:        "tail",
		SpinRate:    r.tail.SpinRate(),
		MaxSpinRate: r.tail.MaxSpinRate(),
	}}
}

func (r *rotorcraft) Surfaces() []SurfaceSnapshot { return nil }
