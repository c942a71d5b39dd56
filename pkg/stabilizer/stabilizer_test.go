package stabilizer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-aviator/pkg/physics"
)

type fakeBody struct {
	rot     mgl64.Quat
	w       mgl64.Vec3
	torques []mgl64.Vec3
}

func (b *fakeBody) Rotation() mgl64.Quat             { return b.rot }
func (b *fakeBody) AngularVelocity() mgl64.Vec3      { return b.w }
func (b *fakeBody) SetAngularVelocity(w mgl64.Vec3)  { b.w = w }
func (b *fakeBody) ApplyRelativeTorque(t mgl64.Vec3) { b.torques = append(b.torques, t) }

func defaultConfig() Config {
	return Config{
		GyroPower:             2000,
		GyroAssistStrength:    0.8,
		StabilizationStrength: 1000,
		RollDamping:           0.4,
		InvertPitch:           true,
	}
}

func TestGyroTorque(t *testing.T) {
	tests := []struct {
		name     string
		invert   bool
		roll     float64
		pitch    float64
		expected mgl64.Vec3
	}{
		{name: "idle", roll: 0, pitch: 0, expected: mgl64.Vec3{}},
		{name: "roll_right", roll: 1, expected: mgl64.Vec3{0, 0, -800}},
		{name: "roll_left_half", roll: -0.5, expected: mgl64.Vec3{0, 0, 400}},
		{name: "pitch_up", pitch: 1, expected: mgl64.Vec3{2000, 0, 0}},
		{name: "pitch_up_inverted", invert: true, pitch: 1, expected: mgl64.Vec3{-2000, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.InvertPitch = tt.invert
			got := New(cfg).GyroTorque(tt.roll, tt.pitch)
			assert.True(t, got.ApproxEqualThreshold(tt.expected, 1e-9), "got %v", got)
		})
	}
}

func TestAssistedAngularVelocity(t *testing.T) {
	s := New(defaultConfig())
	w := mgl64.Vec3{1, 2, 3}

	got := s.AssistedAngularVelocity(w, 0.5)
	assert.True(t, got.ApproxEqualThreshold(w.Mul(0.6), 1e-12), "got %v", got)

	// Factor saturates at one.
	assert.Equal(t, mgl64.Vec3{}, s.AssistedAngularVelocity(w, 10))
}

func TestUprightTorque(t *testing.T) {
	s := New(defaultConfig())

	t.Run("level_is_zero", func(t *testing.T) {
		got := s.UprightTorque(mgl64.QuatIdent())
		assert.InDelta(t, 0, got.Len(), 1e-12)
	})

	t.Run("rolled_body_is_pushed_back", func(t *testing.T) {
		// Rolled 30 degrees about forward; torque must turn it back.
		rot := mgl64.QuatRotate(math.Pi/6, physics.Forward)
		got := s.UprightTorque(rot)
		require.Greater(t, got.Len(), 0.0)
		assert.Less(t, got.Dot(physics.Forward), 0.0)
		assert.InDelta(t, 1000*math.Sin(math.Pi/6), got.Len(), 1e-9)
	})
}

func TestApply_Order(t *testing.T) {
	rot := mgl64.QuatRotate(math.Pi/6, physics.Right)
	body := &fakeBody{rot: rot, w: mgl64.Vec3{0, 1, 0}}
	s := New(defaultConfig())

	s.Apply(body, 0.5, 0, 0.02)

	require.Len(t, body.torques, 2)
	assert.True(t, body.torques[0].ApproxEqualThreshold(mgl64.Vec3{0, 0, -400}, 1e-9))
	assert.InDelta(t, 1-0.02*0.8, body.w.Y(), 1e-12)

	// The upright torque arrives in the body frame.
	world := rot.Rotate(body.torques[1])
	assert.True(t, world.ApproxEqualThreshold(s.UprightTorque(rot), 1e-9), "got %v", world)
}
