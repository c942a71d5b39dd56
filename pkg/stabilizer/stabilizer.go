// Package stabilizer keeps a rotorcraft flyable: it turns roll/pitch input
// into gyro torque, damps residual spin and pulls the body back upright.
package stabilizer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/physics"
)

// Body is the part of a rigid body the stabilizer reads and drives.
type Body interface {
	Rotation() mgl64.Quat
	AngularVelocity() mgl64.Vec3
	SetAngularVelocity(w mgl64.Vec3)
	ApplyRelativeTorque(t mgl64.Vec3)
}

// Config holds the stabilizer gains.
type Config struct {
	GyroPower             float64
	GyroAssistStrength    float64
	StabilizationStrength float64
	RollDamping           float64
	InvertPitch           bool
}

// Stabilizer applies attitude feedback to a body.
type Stabilizer struct {
	cfg Config
}

// New creates a stabilizer with the given gains.
func New(cfg Config) *Stabilizer {
	return &Stabilizer{cfg: cfg}
}

// Config returns the stabilizer gains
func (s *Stabilizer) Config() Config { return s.cfg }

// GyroTorque returns the body-frame torque for roll (x) and pitch (y) input.
// Roll acts about the forward axis and pitch about the lateral axis.
func (s *Stabilizer) GyroTorque(roll, pitch float64) mgl64.Vec3 {
	sign := 1.0
	if s.cfg.InvertPitch {
		sign = -1
	}
	return mgl64.Vec3{
		pitch * s.cfg.GyroPower * sign,
		0,
		-roll * s.cfg.GyroPower * s.cfg.RollDamping,
	}
}

// AssistedAngularVelocity eases w toward zero by dt·GyroAssistStrength.
func (s *Stabilizer) AssistedAngularVelocity(w mgl64.Vec3, dt float64) mgl64.Vec3 {
	return physics.LerpVec3(w, mgl64.Vec3{}, dt*s.cfg.GyroAssistStrength)
}

// UprightTorque returns the world-frame torque that rotates the body up axis
// toward world up. It vanishes when the body is level.
func (s *Stabilizer) UprightTorque(rot mgl64.Quat) mgl64.Vec3 {
	up := physics.Basis(rot, physics.AxisY, false)
	return up.Cross(physics.WorldUp).Mul(s.cfg.StabilizationStrength)
}

// Apply runs one stabilizer step: manual gyro torque, gyro assist, then the
// upright correction converted into the body frame.
func (s *Stabilizer) Apply(body Body, roll, pitch, dt float64) {
	body.ApplyRelativeTorque(s.GyroTorque(roll, pitch))
	body.SetAngularVelocity(s.AssistedAngularVelocity(body.AngularVelocity(), dt))

	rot := body.Rotation()
	body.ApplyRelativeTorque(physics.ToLocal(rot, s.UprightTorque(rot)))
}
