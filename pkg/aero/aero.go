// Package aero computes lift and drag on aerodynamic surfaces from the
// velocity of the air over them.
package aero

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/physics"
)

// LiftCurve maps the angle of attack to a normalized lift response.
type LiftCurve int

const (
	// LiftSine uses sin(angleOfAttack).
	LiftSine LiftCurve = iota
	// LiftClampedDot uses the chordline/airflow dot product clamped to [-1, 1].
	LiftClampedDot
)

// String returns the configuration name of the curve
func (c LiftCurve) String() string {
	if c == LiftClampedDot {
		return "clamped-dot"
	}
	return "sine"
}

// MarshalText implements encoding.TextMarshaler
func (c LiftCurve) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike LiftCurveFromString
// it rejects unknown names.
func (c *LiftCurve) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sine", "":
		*c = LiftSine
	case "clamped-dot", "clamped_dot", "dot":
		*c = LiftClampedDot
	default:
		return fmt.Errorf("unknown lift curve %q", text)
	}
	return nil
}

// LiftCurveFromString converts "sine" or "clamped-dot" to a LiftCurve.
// Unknown names select LiftSine.
func LiftCurveFromString(s string) LiftCurve {
	switch s {
	case "clamped-dot", "clamped_dot", "dot":
		return LiftClampedDot
	default:
		return LiftSine
	}
}

// Response returns the lift response for a sample.
func (c LiftCurve) Response(s Sample) float64 {
	if c == LiftClampedDot {
		return mgl64.Clamp(s.ChordDotAirflow, -1, 1)
	}
	return math.Sin(s.AngleOfAttack)
}

// Surface describes the planform and coefficients of a lifting surface.
type Surface struct {
	Area            float64
	LiftCoefficient float64
	DragDamping     float64
	// AoAScale scales the angle of attack about its nearest zero-lift
	// reference (0 or ±π). Zero means 1.
	AoAScale float64
	// LiftAlongChord directs lift along the chordline instead of
	// perpendicular to the airflow.
	LiftAlongChord bool
}

// Sample is the per-tick aerodynamic state of one surface.
type Sample struct {
	VelocityAtPoint mgl64.Vec3
	Speed           float64
	Airflow         mgl64.Vec3
	AngleOfAttack   float64
	ChordDotAirflow float64
	Lift            mgl64.Vec3
	Drag            mgl64.Vec3
}

// Force returns the sum of lift and drag
func (s Sample) Force() mgl64.Vec3 {
	return s.Lift.Add(s.Drag)
}

// ComputeForces returns lift and drag for a surface moving with pointVelocity
// through air of the given density. chordline is the surface's forward axis
// and lateral its spanwise axis, both in world space. A surface at rest
// produces no force.
func ComputeForces(curve LiftCurve, surface Surface, pointVelocity, chordline, lateral mgl64.Vec3, density float64) Sample {
	sample := Sample{VelocityAtPoint: pointVelocity}

	speed := pointVelocity.Len()
	dir, ok := physics.SafeNormalize(pointVelocity)
	if !ok {
		return sample
	}
	airflow := dir.Mul(-1)
	sample.Speed = speed
	sample.Airflow = airflow

	aoa := physics.SignedAngle(chordline, airflow, lateral)
	if surface.AoAScale != 0 && surface.AoAScale != 1 {
		aoa = scaleAngleOfAttack(aoa, surface.AoAScale)
	}
	sample.AngleOfAttack = aoa
	if chord, ok := physics.SafeNormalize(chordline); ok {
		sample.ChordDotAirflow = chord.Dot(airflow)
	}

	dynamicPressure := 0.5 * density * speed * speed * surface.Area

	liftMagnitude := surface.LiftCoefficient * dynamicPressure * curve.Response(sample)
	var liftDir mgl64.Vec3
	if surface.LiftAlongChord {
		liftDir, _ = physics.SafeNormalize(chordline)
	} else {
		liftDir, _ = physics.SafeNormalize(airflow.Cross(lateral))
	}
	sample.Lift = liftDir.Mul(liftMagnitude)

	sample.Drag = airflow.Mul(surface.DragDamping * dynamicPressure)

	return sample
}

// scaleAngleOfAttack scales the deviation of aoa from the closest of -π, 0 and π.
// A leading-edge chordline sits near ±π from the airflow in level flight.
func scaleAngleOfAttack(aoa, scale float64) float64 {
	ref := 0.0
	switch {
	case aoa > math.Pi/2:
		ref = math.Pi
	case aoa < -math.Pi/2:
		ref = -math.Pi
	}
	return ref + (aoa-ref)*scale
}
