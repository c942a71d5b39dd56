// Package actuator drives movable control surfaces (ailerons, elevator,
// rudder, flaps) toward commanded deflections or back to their rest pose.
package actuator

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/physics"
)

// Kind identifies a control surface type
type Kind int

const (
	Aileron Kind = iota
	Elevator
	Rudder
	Flap
)

func (k Kind) String() string {
	switch k {
	case Aileron:
		return "aileron"
	case Elevator:
		return "elevator"
	case Rudder:
		return "rudder"
	case Flap:
		return "flap"
	default:
		return "unknown"
	}
}

// State is the actuator mode.
type State int

const (
	// NeutralSeeking eases the surface back to its rest pose.
	NeutralSeeking State = iota
	// Commanded eases the surface toward an input-driven deflection.
	Commanded
)

func (s State) String() string {
	if s == Commanded {
		return "commanded"
	}
	return "neutral-seeking"
}

// Limits bounds the deflection of a surface, in degrees. MinAngle is
// normally negative; symmetric surfaces use MinAngle = -MaxAngle.
type Limits struct {
	MaxAngle float64
	MinAngle float64
}

// Symmetric returns limits of ±max degrees.
func Symmetric(max float64) Limits {
	return Limits{MaxAngle: max, MinAngle: -max}
}

// Angle maps a normalized input in [-1, 1] to a bounded deflection in degrees.
// Positive input scales MaxAngle and negative input scales MinAngle.
func (l Limits) Angle(input float64) float64 {
	input = mgl64.Clamp(input, -1, 1)
	var angle float64
	if input >= 0 {
		angle = input * l.MaxAngle
	} else {
		angle = -input * l.MinAngle
	}
	lo, hi := math.Min(l.MinAngle, l.MaxAngle), math.Max(l.MinAngle, l.MaxAngle)
	return mgl64.Clamp(angle, lo, hi)
}

// Config holds the fixed parameters of one surface.
type Config struct {
	Kind   Kind
	Hinge  mgl64.Vec3 // local rotation axis
	Limits Limits
	// Speed is the easing rate toward a commanded target, per second.
	Speed float64
	// ToNeutralSpeed is the easing rate back toward the rest pose, per second.
	ToNeutralSpeed float64
	// Mirror is +1 or -1. Paired surfaces deflect in opposite directions.
	Mirror float64
}

// Surface is a single control surface actuator.
type Surface struct {
	cfg         Config
	neutral     mgl64.Quat
	current     mgl64.Quat
	target      mgl64.Quat
	targetAngle float64
	state       State
}

// New creates a surface resting at neutral. The neutral pose never changes.
func New(cfg Config, neutral mgl64.Quat) *Surface {
	if cfg.Mirror == 0 {
		cfg.Mirror = 1
	}
	if hinge, ok := physics.SafeNormalize(cfg.Hinge); ok {
		cfg.Hinge = hinge
	} else {
		cfg.Hinge = physics.Right
	}
	neutral = neutral.Normalize()
	return &Surface{
		cfg:     cfg,
		neutral: neutral,
		current: neutral,
		target:  neutral,
	}
}

// Kind returns the surface type
func (s *Surface) Kind() Kind { return s.cfg.Kind }

// State returns the current actuator mode
func (s *Surface) State() State { return s.state }

// Neutral returns the rest orientation captured at creation.
func (s *Surface) Neutral() mgl64.Quat { return s.neutral }

// Orientation returns the current local orientation of the surface.
func (s *Surface) Orientation() mgl64.Quat { return s.current }

// Target returns the orientation the surface is easing toward.
func (s *Surface) Target() mgl64.Quat { return s.target }

// TargetAngle returns the commanded deflection in degrees, after limits and mirroring.
// It is zero while neutral-seeking.
func (s *Surface) TargetAngle() float64 { return s.targetAngle }

// Deflection returns how far the surface currently sits from neutral, in degrees.
func (s *Surface) Deflection() float64 {
	return mgl64.RadToDeg(physics.QuatAngle(s.neutral, s.current))
}

// TargetFor returns the bounded, mirrored target angle in degrees for an input.
func (s *Surface) TargetFor(input float64) float64 {
	return s.cfg.Limits.Angle(input) * s.cfg.Mirror
}

// Update advances the surface by dt seconds. A non-zero input commands a
// deflection; zero input lets the surface return to neutral.
func (s *Surface) Update(input, dt float64) {
	if input == 0 {
		s.state = NeutralSeeking
		s.targetAngle = 0
		s.target = s.neutral
		s.current = physics.EaseQuat(s.current, s.neutral, dt*s.cfg.ToNeutralSpeed)
		return
	}

	s.state = Commanded
	s.targetAngle = s.TargetFor(input)
	s.target = s.neutral.Mul(mgl64.QuatRotate(mgl64.DegToRad(s.targetAngle), s.cfg.Hinge))
	s.current = physics.EaseQuat(s.current, s.target, dt*s.cfg.Speed)
}

// Reset snaps the surface back to its rest pose.
func (s *Surface) Reset() {
	s.current = s.neutral
	s.target = s.neutral
	s.targetAngle = 0
	s.state = NeutralSeeking
}

// Torque is a torque-driven actuator: it applies a body-frame torque of fixed
// power about an axis in the direction of the input sign.
type Torque struct {
	Axis  mgl64.Vec3
	Power float64
}

// Output returns the relative torque for an input. Zero input yields no torque.
func (t Torque) Output(input float64) mgl64.Vec3 {
	if input == 0 || t.Power == 0 {
		return mgl64.Vec3{}
	}
	sign := 1.0
	if input < 0 {
		sign = -1
	}
	return t.Axis.Mul(t.Power * sign)
}
