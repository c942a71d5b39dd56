// Package propulsion models a rotor or propeller whose spin rate ramps
// multiplicatively toward a throttle-selected ceiling.
package propulsion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/atmosphere"
	"github.com/opd-ai/go-aviator/pkg/physics"
)

// DeadStartSpinRate is the spin rate an engine is bumped to when started
// from (near) rest. A multiplicative ramp cannot grow from zero.
const DeadStartSpinRate = 1.0

// Output is the result of a single propulsion tick.
type Output struct {
	// Torque is the body-frame torque driving the rotor.
	Torque mgl64.Vec3
	// AngularVelocity is the rotor angular velocity along its spin axis,
	// clamped to the current ceiling.
	AngularVelocity mgl64.Vec3
}

// Speed returns the magnitude of the rotor angular velocity.
func (o Output) Speed() float64 {
	return o.AngularVelocity.Len()
}

// Unit tracks the spin state of a single rotor. The zero value is a stopped
// rotor with the engine off.
type Unit struct {
	spinRate    float64
	maxSpinRate float64
	engineOn    bool
}

// SpinRate returns the current spin rate.
func (u *Unit) SpinRate() float64 { return u.spinRate }

// MaxSpinRate returns the ceiling used by the last tick.
func (u *Unit) MaxSpinRate() float64 { return u.maxSpinRate }

// EngineOn reports whether the unit is powered.
func (u *Unit) EngineOn() bool { return u.engineOn }

// SetEngineOn powers the unit on or off. Starting a unit spinning slower than
// DeadStartSpinRate bumps it to that rate.
func (u *Unit) SetEngineOn(on bool) {
	if on && !u.engineOn && u.spinRate < DeadStartSpinRate {
		u.spinRate = DeadStartSpinRate
	}
	u.engineOn = on
}

// Preset forces the spin rate and ceiling, used when teleporting a vehicle
// with its rotors already turning.
func (u *Unit) Preset(spinRate, maxSpinRate float64) {
	u.maxSpinRate = math.Max(0, maxSpinRate)
	u.spinRate = mgl64.Clamp(spinRate, 0, u.maxSpinRate)
}

// Reset stops the rotor and turns the engine off.
func (u *Unit) Reset() {
	u.spinRate = 0
	u.maxSpinRate = 0
	u.engineOn = false
}

// Tick advances the spin rate by one step. With the engine on the rate grows by
// accel; with it off the rate decays by decel. Either way the result stays in
// [0, maxSpinRate].
func (u *Unit) Tick(accel, decel, maxSpinRate float64, axis physics.Axis) Output {
	u.maxSpinRate = math.Max(0, maxSpinRate)

	if u.engineOn {
		u.spinRate = math.Min(u.spinRate*accel, u.maxSpinRate)
	} else {
		u.spinRate = mgl64.Clamp(u.spinRate-u.spinRate*decel, 0, u.maxSpinRate)
	}

	dir := axis.Unit()
	return Output{
		Torque:          dir.Mul(u.spinRate),
		AngularVelocity: dir.Mul(u.spinRate),
	}
}

// Thrust returns the force magnitude produced by a rotor of the given radius
// turning at angular speed omega in air of the given density.
func Thrust(density, radius, omega, powerScaling float64) float64 {
	return 0.5 * density * atmosphere.BladeArea(radius) * omega * omega * powerScaling
}
