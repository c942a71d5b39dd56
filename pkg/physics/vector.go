// pkg/physics/vector.go
package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// Local basis vectors. Y is up, Z is forward, X is right.
var (
	Right   = mgl64.Vec3{1, 0, 0}
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
	WorldUp = Up
)

// Axis selects one of the three local basis vectors.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the axis name
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

// Unit returns the local unit vector for the axis
func (a Axis) Unit() mgl64.Vec3 {
	switch a {
	case AxisX:
		return Right
	case AxisY:
		return Up
	default:
		return Forward
	}
}

// AxisFromString converts "x", "y" or "z" to an Axis. Anything else maps to AxisZ.
func AxisFromString(s string) Axis {
	switch s {
	case "x", "X":
		return AxisX
	case "y", "Y":
		return AxisY
	default:
		return AxisZ
	}
}

// MarshalText implements encoding.TextMarshaler
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects anything but x, y or z.
func (a *Axis) UnmarshalText(text []byte) error {
	switch string(text) {
	case "x", "X":
		*a = AxisX
	case "y", "Y":
		*a = AxisY
	case "z", "Z":
		*a = AxisZ
	default:
		return fmt.Errorf("unknown axis %q", text)
	}
	return nil
}

// Basis returns the world direction of a local axis under rotation rot.
// X maps to right, Y to up, anything else to forward.
func Basis(rot mgl64.Quat, axis Axis, flip bool) mgl64.Vec3 {
	dir := rot.Rotate(axis.Unit())
	if flip {
		return dir.Mul(-1)
	}
	return dir
}

// SafeNormalize returns the unit vector and true, or the zero vector and false
// when v is shorter than Epsilon.
func SafeNormalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	length := v.Len()
	if length < Epsilon {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / length), true
}

// Angle returns the unsigned angle between two vectors in radians
func Angle(from, to mgl64.Vec3) float64 {
	denom := math.Sqrt(from.LenSqr() * to.LenSqr())
	if denom < Epsilon {
		return 0
	}
	dot := mgl64.Clamp(from.Dot(to)/denom, -1, 1)
	return math.Acos(dot)
}

// SignedAngle returns the angle from one vector to another in radians, signed
// by the direction of rotation about axis. A zero cross product counts as positive.
func SignedAngle(from, to, axis mgl64.Vec3) float64 {
	angle := Angle(from, to)
	if axis.Dot(from.Cross(to)) < 0 {
		return -angle
	}
	return angle
}

// PointVelocity returns the velocity of a point rigidly attached to a body
// moving with linear velocity v and angular velocity w about centre com.
func PointVelocity(v, w, com, point mgl64.Vec3) mgl64.Vec3 {
	return v.Add(w.Cross(point.Sub(com)))
}

// LerpVec3 interpolates between a and b with t clamped to [0, 1]
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = mgl64.Clamp(t, 0, 1)
	return a.Add(b.Sub(a).Mul(t))
}

// EaseQuat moves current toward target by factor t clamped to [0, 1], taking
// the shorter arc and renormalizing the result.
func EaseQuat(current, target mgl64.Quat, t float64) mgl64.Quat {
	t = mgl64.Clamp(t, 0, 1)
	if current.Dot(target) < 0 {
		target = target.Scale(-1)
	}
	q := mgl64.QuatLerp(current, target, t)
	if q.Len() < Epsilon {
		return target
	}
	return q.Normalize()
}

// QuatAngle returns the rotation angle in radians needed to turn a into b.
func QuatAngle(a, b mgl64.Quat) float64 {
	dot := math.Abs(a.Normalize().Dot(b.Normalize()))
	return 2 * math.Acos(mgl64.Clamp(dot, -1, 1))
}

// ToLocal rotates a world-space vector into the frame described by rot.
func ToLocal(rot mgl64.Quat, v mgl64.Vec3) mgl64.Vec3 {
	return rot.Inverse().Rotate(v)
}
