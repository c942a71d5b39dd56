// pkg/vehicle/input.go
package vehicle

import "github.com/go-gl/mathgl/mgl64"

// Input is one tick's normalized control snapshot.
type Input struct {
	ThrottleUp   float64
	ThrottleDown float64
	// Move holds roll in X and pitch in Y.
	Move    mgl64.Vec2
	Left    bool
	Right   bool
	Brake   bool
	TakeOff bool
}

// Clamped returns the input with throttles in [0, 1] and roll/pitch in [-1, 1].
func (in Input) Clamped() Input {
	in.ThrottleUp = mgl64.Clamp(in.ThrottleUp, 0, 1)
	in.ThrottleDown = mgl64.Clamp(in.ThrottleDown, 0, 1)
	in.Move = mgl64.Vec2{
		mgl64.Clamp(in.Move.X(), -1, 1),
		mgl64.Clamp(in.Move.Y(), -1, 1),
	}
	return in
}

// Roll returns the roll axis value
func (in Input) Roll() float64 { return in.Move.X() }

// Pitch returns the pitch axis value
func (in Input) Pitch() float64 { return in.Move.Y() }

// Yaw returns -1 for left, +1 for right and 0 for neither. Left wins when both are held.
func (in Input) Yaw() float64 {
	switch {
	case in.Left:
		return -1
	case in.Right:
		return 1
	default:
		return 0
	}
}

// YawPressed reports whether either yaw button is held
func (in Input) YawPressed() bool { return in.Left || in.Right }

// Flap returns -1 while braking, +1 for take-off and 0 otherwise. Brake has priority.
func (in Input) Flap() float64 {
	switch {
	case in.Brake:
		return -1
	case in.TakeOff:
		return 1
	default:
		return 0
	}
}
