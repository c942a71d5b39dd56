// Package rigidbody is a small reference integrator for driving flight
// controllers headless and in tests. Games plug in their own physics engine.
package rigidbody

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/physics"
)

// Config contains the mass properties and environment of a body
type Config struct {
	Mass float64
	// Inertia is the diagonal of the body-frame inertia tensor.
	Inertia mgl64.Vec3
	// CenterOfMass is the body-local centre of mass.
	CenterOfMass   mgl64.Vec3
	LinearDamping  float64
	AngularDamping float64
	// Gravity is the downward acceleration magnitude.
	Gravity float64
	// Ground enables a horizontal contact plane at GroundHeight.
	Ground       bool
	GroundHeight float64
	// MaxAngularVelocity caps |ω|. Zero disables the cap.
	MaxAngularVelocity float64
}

// Body tracks the motion state of a rigid body. Forces and torques accumulate
// between calls to Integrate.
type Body struct {
	cfg Config

	position mgl64.Vec3
	rotation mgl64.Quat
	velocity mgl64.Vec3
	angular  mgl64.Vec3

	force  mgl64.Vec3
	torque mgl64.Vec3

	asleep   bool
	grounded bool
}

// New creates a body at the given pose. Non-positive mass and inertia
// components are replaced with 1.
func New(cfg Config, pos mgl64.Vec3, rot mgl64.Quat) *Body {
	if cfg.Mass <= 0 {
		cfg.Mass = 1
	}
	for i := 0; i < 3; i++ {
		if cfg.Inertia[i] <= 0 {
			cfg.Inertia[i] = 1
		}
	}
	return &Body{
		cfg:      cfg,
		position: pos,
		rotation: rot.Normalize(),
	}
}

// Position returns the body origin
func (b *Body) Position() mgl64.Vec3 { return b.position }

// Rotation returns the orientation
func (b *Body) Rotation() mgl64.Quat { return b.rotation }

// LinearVelocity returns the velocity of the centre of mass
func (b *Body) LinearVelocity() mgl64.Vec3 { return b.velocity }

// AngularVelocity returns the world-frame angular velocity
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angular }

// Mass returns the body mass
func (b *Body) Mass() float64 { return b.cfg.Mass }

// CenterOfMass returns the world-space centre of mass
func (b *Body) CenterOfMass() mgl64.Vec3 {
	return b.position.Add(b.rotation.Rotate(b.cfg.CenterOfMass))
}

// Asleep reports whether the body is sleeping
func (b *Body) Asleep() bool { return b.asleep }

// Grounded reports whether the last step ended in ground contact
func (b *Body) Grounded() bool { return b.grounded }

// PendingForce returns the force accumulated since the last step
func (b *Body) PendingForce() mgl64.Vec3 { return b.force }

// PendingTorque returns the world-frame torque accumulated since the last step
func (b *Body) PendingTorque() mgl64.Vec3 { return b.torque }

// ApplyForce adds a force through the centre of mass
func (b *Body) ApplyForce(force mgl64.Vec3) {
	b.force = b.force.Add(force)
}

// ApplyForceAtPoint adds a world-space force acting at a world-space point.
func (b *Body) ApplyForceAtPoint(force, point mgl64.Vec3) {
	b.force = b.force.Add(force)
	b.torque = b.torque.Add(point.Sub(b.CenterOfMass()).Cross(force))
}

// ApplyTorque adds a world-frame torque
func (b *Body) ApplyTorque(torque mgl64.Vec3) {
	b.torque = b.torque.Add(torque)
}

// ApplyRelativeTorque adds a body-frame torque
func (b *Body) ApplyRelativeTorque(torque mgl64.Vec3) {
	b.torque = b.torque.Add(b.rotation.Rotate(torque))
}

// SetAngularVelocity replaces ω, respecting the angular velocity cap.
func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	b.angular = b.clampAngular(w)
}

// SetLinearVelocity replaces the velocity
func (b *Body) SetLinearVelocity(v mgl64.Vec3) {
	b.velocity = v
}

// SetPose moves the body without changing its velocity.
func (b *Body) SetPose(pos mgl64.Vec3, rot mgl64.Quat) {
	b.position = pos
	b.rotation = rot.Normalize()
}

// Sleep freezes the body and discards pending forces until WakeUp.
func (b *Body) Sleep() {
	b.asleep = true
	b.clearAccumulators()
}

// WakeUp resumes integration
func (b *Body) WakeUp() {
	b.asleep = false
}

// SetMaxAngularVelocity caps |ω|. Zero or less removes the cap.
func (b *Body) SetMaxAngularVelocity(max float64) {
	b.cfg.MaxAngularVelocity = math.Max(0, max)
	b.angular = b.clampAngular(b.angular)
}

func (b *Body) clampAngular(w mgl64.Vec3) mgl64.Vec3 {
	max := b.cfg.MaxAngularVelocity
	if max > 0 && w.Len() > max {
		return w.Normalize().Mul(max)
	}
	return w
}

func (b *Body) clearAccumulators() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// damping returns the per-step velocity factor for a damping coefficient.
func damping(coefficient, dt float64) float64 {
	return mgl64.Clamp(1-coefficient*dt, 0, 1)
}

// Integrate advances the body by dt seconds with semi-implicit Euler and
// clears the accumulated force and torque.
func (b *Body) Integrate(dt float64) {
	defer b.clearAccumulators()
	if b.asleep || dt <= 0 {
		return
	}

	// Linear
	accel := b.force.Mul(1 / b.cfg.Mass).Sub(physics.WorldUp.Mul(b.cfg.Gravity))
	b.velocity = b.velocity.Add(accel.Mul(dt)).Mul(damping(b.cfg.LinearDamping, dt))

	// Angular, solved in the body frame with the diagonal inertia
	local := physics.ToLocal(b.rotation, b.torque)
	alpha := mgl64.Vec3{
		local.X() / b.cfg.Inertia.X(),
		local.Y() / b.cfg.Inertia.Y(),
		local.Z() / b.cfg.Inertia.Z(),
	}
	b.angular = b.angular.Add(b.rotation.Rotate(alpha).Mul(dt))
	b.angular = b.clampAngular(b.angular.Mul(damping(b.cfg.AngularDamping, dt)))

	// Pose, rotating about the centre of mass
	com := b.CenterOfMass().Add(b.velocity.Mul(dt))
	spin := mgl64.Quat{W: 0, V: b.angular}.Mul(b.rotation).Scale(0.5 * dt)
	b.rotation = b.rotation.Add(spin).Normalize()
	b.position = com.Sub(b.rotation.Rotate(b.cfg.CenterOfMass))

	b.grounded = false
	if b.cfg.Ground && b.position.Y() < b.cfg.GroundHeight {
		b.position[1] = b.cfg.GroundHeight
		if b.velocity.Y() < 0 {
			b.velocity[1] = 0
		}
		b.grounded = true
	}
}
