// pkg/vehicle/body.go
package vehicle

import "github.com/go-gl/mathgl/mgl64"

// Body is the externally integrated rigid body a controller drives.
// Forces and points are in world space; relative torques are in the body frame.
type Body interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	LinearVelocity() mgl64.Vec3
	AngularVelocity() mgl64.Vec3
	// CenterOfMass returns the world-space centre of mass.
	CenterOfMass() mgl64.Vec3
	Mass() float64

	ApplyForceAtPoint(force, point mgl64.Vec3)
	ApplyRelativeTorque(torque mgl64.Vec3)
	SetAngularVelocity(w mgl64.Vec3)
	SetLinearVelocity(v mgl64.Vec3)
	SetPose(pos mgl64.Vec3, rot mgl64.Quat)
	Sleep()
	WakeUp()
	SetMaxAngularVelocity(max float64)
}
