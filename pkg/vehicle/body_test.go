package vehicle

import "github.com/go-gl/mathgl/mgl64"

type appliedForce struct {
	force mgl64.Vec3
	point mgl64.Vec3
}

// recordingBody is a Body that records what a controller asks of it.
type recordingBody struct {
	pos     mgl64.Vec3
	rot     mgl64.Quat
	vel     mgl64.Vec3
	ang     mgl64.Vec3
	mass    float64
	maxAng  float64
	asleep  bool
	sleeps  int
	wakes   int
	forces  []appliedForce
	torques []mgl64.Vec3
}

func newRecordingBody() *recordingBody {
	return &recordingBody{rot: mgl64.QuatIdent(), mass: 1000}
}

func (b *recordingBody) Position() mgl64.Vec3        { return b.pos }
func (b *recordingBody) Rotation() mgl64.Quat        { return b.rot }
func (b *recordingBody) LinearVelocity() mgl64.Vec3  { return b.vel }
func (b *recordingBody) AngularVelocity() mgl64.Vec3 { return b.ang }
func (b *recordingBody) CenterOfMass() mgl64.Vec3    { return b.pos }
func (b *recordingBody) Mass() float64               { return b.mass }

func (b *recordingBody) ApplyForceAtPoint(force, point mgl64.Vec3) {
	b.forces = append(b.forces, appliedForce{force: force, point: point})
}

func (b *recordingBody) ApplyRelativeTorque(torque mgl64.Vec3) {
	b.torques = append(b.torques, torque)
}

func (b *recordingBody) SetAngularVelocity(w mgl64.Vec3) { b.ang = w }
func (b *recordingBody) SetLinearVelocity(v mgl64.Vec3)  { b.vel = v }

func (b *recordingBody) SetPose(pos mgl64.Vec3, rot mgl64.Quat) {
	b.pos = pos
	b.rot = rot
}

func (b *recordingBody) Sleep() {
	b.asleep = true
	b.sleeps++
}

func (b *recordingBody) WakeUp() {
	b.asleep = false
	b.wakes++
}

func (b *recordingBody) SetMaxAngularVelocity(max float64) { b.maxAng = max }

func (b *recordingBody) reset() {
	b.forces = nil
	b.torques = nil
}
