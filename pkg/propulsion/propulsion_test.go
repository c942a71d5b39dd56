package propulsion

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-aviator/pkg/physics"
)

func TestUnit_ColdStart(t *testing.T) {
	var u Unit
	require.Equal(t, 0.0, u.SpinRate())
	require.False(t, u.EngineOn())

	u.SetEngineOn(true)
	assert.Equal(t, 1.0, u.SpinRate(), "toggle applies the dead-start bump before any tick")

	u.Tick(1.02, 0.09, 210, physics.AxisY)
	assert.InDelta(t, 1.02, u.SpinRate(), 1e-12)
}

func TestUnit_SetEngineOn_NoBumpWhenSpinning(t *testing.T) {
	var u Unit
	u.Preset(50, 200)

	u.SetEngineOn(true)
	assert.Equal(t, 50.0, u.SpinRate())

	// Already on: a repeated start must not bump again.
	u.Preset(0.5, 200)
	u.SetEngineOn(true)
	assert.Equal(t, 0.5, u.SpinRate())
}

func TestUnit_FullDecelToRest(t *testing.T) {
	var u Unit
	u.Preset(100, 300)

	u.Tick(1.02, 0.5, 300, physics.AxisY)
	assert.Equal(t, 50.0, u.SpinRate())

	for i := 0; i < 10; i++ {
		u.Tick(1.02, 0.5, 300, physics.AxisY)
	}
	assert.Less(t, u.SpinRate(), 0.1)
	assert.GreaterOrEqual(t, u.SpinRate(), 0.0)
}

func TestUnit_Monotonicity(t *testing.T) {
	t.Run("engine_on_never_decreases_below_ceiling", func(t *testing.T) {
		var u Unit
		u.SetEngineOn(true)
		prev := u.SpinRate()
		for i := 0; i < 500; i++ {
			u.Tick(1.02, 0.09, 210, physics.AxisY)
			assert.GreaterOrEqual(t, u.SpinRate(), prev)
			prev = u.SpinRate()
		}
		assert.Equal(t, 210.0, u.SpinRate(), "ramp settles on the ceiling")
	})

	t.Run("engine_off_never_increases", func(t *testing.T) {
		var u Unit
		u.Preset(180, 200)
		prev := u.SpinRate()
		for i := 0; i < 200; i++ {
			u.Tick(1.02, 0.09, 200, physics.AxisY)
			assert.LessOrEqual(t, u.SpinRate(), prev)
			prev = u.SpinRate()
		}
	})
}

func TestUnit_Boundedness(t *testing.T) {
	var u Unit
	ceilings := []float64{300, 200, 150, 600, 0, 30, 300}
	for step := 0; step < 700; step++ {
		ceiling := ceilings[(step/100)%len(ceilings)]
		if step%37 == 0 {
			u.SetEngineOn(!u.EngineOn())
		}
		u.Tick(1.02, 0.09, ceiling, physics.AxisY)

		assert.GreaterOrEqual(t, u.SpinRate(), 0.0, "step %d", step)
		assert.LessOrEqual(t, u.SpinRate(), ceiling, "step %d", step)
	}
}

func TestUnit_NegativeCeilingClampsToZero(t *testing.T) {
	var u Unit
	u.SetEngineOn(true)
	u.Tick(1.02, 0.09, -5, physics.AxisY)
	assert.Equal(t, 0.0, u.SpinRate())
	assert.Equal(t, 0.0, u.MaxSpinRate())
}

func TestUnit_Output(t *testing.T) {
	tests := []struct {
		name string
		axis physics.Axis
		dir  mgl64.Vec3
	}{
		{name: "x_axis", axis: physics.AxisX, dir: physics.Right},
		{name: "y_axis", axis: physics.AxisY, dir: physics.Up},
		{name: "z_axis", axis: physics.AxisZ, dir: physics.Forward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u Unit
			u.Preset(100, 300)
			u.SetEngineOn(true)

			out := u.Tick(1.5, 0.09, 120, tt.axis)

			assert.Equal(t, 120.0, u.SpinRate())
			assert.Equal(t, tt.dir.Mul(120), out.Torque)
			assert.Equal(t, tt.dir.Mul(120), out.AngularVelocity)
			assert.Equal(t, 120.0, out.Speed())
		})
	}
}

func TestUnit_Reset(t *testing.T) {
	var u Unit
	u.Preset(200, 300)
	u.SetEngineOn(true)

	u.Reset()

	assert.Equal(t, 0.0, u.SpinRate())
	assert.Equal(t, 0.0, u.MaxSpinRate())
	assert.False(t, u.EngineOn())
}

func TestThrust(t *testing.T) {
	got := Thrust(1.225, 14, 200, 0.1)
	want := 0.5 * 1.225 * math.Pi * 196 * 40000 * 0.1
	assert.InDelta(t, want, got, 1e-6)

	assert.Equal(t, 0.0, Thrust(1.225, 14, 0, 0.1))
}
