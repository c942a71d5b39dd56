// pkg/vehicle/config.go
package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/physics"
)

// PropellerConfig describes one rotor or propeller.
type PropellerConfig struct {
	Radius float64 `json:"radius" mapstructure:"radius"`
	// SpinAccel multiplies the spin rate each tick while the engine runs; must exceed 1.
	SpinAccel float64 `json:"spinAccel" mapstructure:"spinAccel"`
	// SpinDecel is the fraction of spin lost each tick with the engine off; in (0, 1).
	SpinDecel     float64 `json:"spinDecel" mapstructure:"spinDecel"`
	AccelSpinRate float64 `json:"accelSpinRate" mapstructure:"accelSpinRate"`
	IdleSpinRate  float64 `json:"idleSpinRate" mapstructure:"idleSpinRate"`
	DecelSpinRate float64 `json:"decelSpinRate" mapstructure:"decelSpinRate"`
	// SpinAxis is the local axis the blades turn about.
	SpinAxis physics.Axis `json:"spinAxis" mapstructure:"spinAxis"`
	// ThrustAxis is the local axis thrust acts along, reversed by ReverseThrust.
	ThrustAxis    physics.Axis `json:"thrustAxis" mapstructure:"thrustAxis"`
	ReverseThrust bool         `json:"reverseThrust" mapstructure:"reverseThrust"`
	// Mount is the hub position relative to the body origin.
	Mount mgl64.Vec3 `json:"mount" mapstructure:"mount"`
}

// GyroConfig holds the rotorcraft attitude gains.
type GyroConfig struct {
	Power                 float64 `json:"power" mapstructure:"power"`
	AssistStrength        float64 `json:"assistStrength" mapstructure:"assistStrength"`
	StabilizationStrength float64 `json:"stabilizationStrength" mapstructure:"stabilizationStrength"`
	RollDamping           float64 `json:"rollDamping" mapstructure:"rollDamping"`
	// YawTorque drives a direct body yaw torque from left/right input. Zero disables it.
	YawTorque float64 `json:"yawTorque" mapstructure:"yawTorque"`
}

// SurfaceConfig describes a movable control surface. Offsets of paired
// surfaces are given for the left-hand one; the right is mirrored across X.
type SurfaceConfig struct {
	Offset mgl64.Vec3 `json:"offset" mapstructure:"offset"`
	Span   float64    `json:"span" mapstructure:"span"`
	Chord  float64    `json:"chord" mapstructure:"chord"`
	// MaxAngle and MinAngle bound the deflection in degrees. A zero MinAngle
	// means -MaxAngle.
	MaxAngle       float64 `json:"maxAngle" mapstructure:"maxAngle"`
	MinAngle       float64 `json:"minAngle" mapstructure:"minAngle"`
	Speed          float64 `json:"speed" mapstructure:"speed"`
	ToNeutralSpeed float64 `json:"toNeutralSpeed" mapstructure:"toNeutralSpeed"`
	// Hinge is the local rotation axis; positive angles rotate about it.
	Hinge mgl64.Vec3 `json:"hinge" mapstructure:"hinge"`
	// SpanAxis is the local spanwise axis used as the lateral reference.
	SpanAxis physics.Axis `json:"spanAxis" mapstructure:"spanAxis"`
}

// Area returns span times chord
func (s SurfaceConfig) Area() float64 {
	return s.Span * s.Chord
}

// WingConfig describes the two main wing sections.
type WingConfig struct {
	Span      float64 `json:"span" mapstructure:"span"`
	RootChord float64 `json:"rootChord" mapstructure:"rootChord"`
	TipChord  float64 `json:"tipChord" mapstructure:"tipChord"`
	Sections  int     `json:"sections" mapstructure:"sections"`
	// Offset is the left wing's aerodynamic centre.
	Offset mgl64.Vec3 `json:"offset" mapstructure:"offset"`
}

// BodyConfig describes the reference rigid body built for a vehicle.
type BodyConfig struct {
	Mass           float64    `json:"mass" mapstructure:"mass"`
	Inertia        mgl64.Vec3 `json:"inertia" mapstructure:"inertia"`
	CenterOfMass   mgl64.Vec3 `json:"centerOfMass" mapstructure:"centerOfMass"`
	LinearDamping  float64    `json:"linearDamping" mapstructure:"linearDamping"`
	AngularDamping float64    `json:"angularDamping" mapstructure:"angularDamping"`
}

// SpawnConfig is the pose a vehicle respawns at.
type SpawnConfig struct {
	Position mgl64.Vec3 `json:"position" mapstructure:"position"`
	// Heading is the yaw about world up in degrees.
	Heading float64 `json:"heading" mapstructure:"heading"`
}

// Rotation returns the spawn orientation
func (s SpawnConfig) Rotation() mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(s.Heading), physics.Up)
}

// FlipConfig parameterizes the upside-down recovery command.
type FlipConfig struct {
	MaxSpeed      float64 `json:"maxSpeed" mapstructure:"maxSpeed"`
	UpsideDownDot float64 `json:"upsideDownDot" mapstructure:"upsideDownDot"`
	LiftPerMass   float64 `json:"liftPerMass" mapstructure:"liftPerMass"`
	TorquePerMass float64 `json:"torquePerMass" mapstructure:"torquePerMass"`
}

// WingTrailConfig sets when wingtip trails show.
type WingTrailConfig struct {
	Speed        float64 `json:"speed" mapstructure:"speed"`
	AngularSpeed float64 `json:"angularSpeed" mapstructure:"angularSpeed"`
}

// Config is the immutable parameter set of one vehicle. Rotorcraft use Main,
// Tail and Gyro; fixed-wing vehicles use Main, the wing and the surfaces.
type Config struct {
	Body               BodyConfig  `json:"body" mapstructure:"body"`
	Spawn              SpawnConfig `json:"spawn" mapstructure:"spawn"`
	MaxAngularVelocity float64     `json:"maxAngularVelocity" mapstructure:"maxAngularVelocity"`
	// AltitudeScale multiplies the body height before density lookup. Zero means 1.
	AltitudeScale float64 `json:"altitudeScale" mapstructure:"altitudeScale"`
	PowerScaling  float64 `json:"powerScaling" mapstructure:"powerScaling"`

	Main PropellerConfig `json:"main" mapstructure:"main"`
	Tail PropellerConfig `json:"tail" mapstructure:"tail"`
	Gyro GyroConfig      `json:"gyro" mapstructure:"gyro"`

	LiftCoefficient      float64       `json:"liftCoefficient" mapstructure:"liftCoefficient"`
	DragDamping          float64       `json:"dragDamping" mapstructure:"dragDamping"`
	Wing                 WingConfig    `json:"wing" mapstructure:"wing"`
	Aileron              SurfaceConfig `json:"aileron" mapstructure:"aileron"`
	Elevator             SurfaceConfig `json:"elevator" mapstructure:"elevator"`
	Rudder               SurfaceConfig `json:"rudder" mapstructure:"rudder"`
	Flap                 SurfaceConfig `json:"flap" mapstructure:"flap"`
	AileronAoAScale      float64       `json:"aileronAoAScale" mapstructure:"aileronAoAScale"`
	RudderLiftAlongChord bool          `json:"rudderLiftAlongChord" mapstructure:"rudderLiftAlongChord"`

	Flip      FlipConfig      `json:"flip" mapstructure:"flip"`
	WingTrail WingTrailConfig `json:"wingTrail" mapstructure:"wingTrail"`
}

var (
	trailingEdgeDown = mgl64.Vec3{-1, 0, 0}
	trailingEdgeLeft = mgl64.Vec3{0, -1, 0}
)

func defaultFlip() FlipConfig {
	return FlipConfig{
		MaxSpeed:      1,
		UpsideDownDot: 0.65,
		LiftPerMass:   250,
		TorquePerMass: 100000,
	}
}

// DefaultConfig returns the stock parameters for an archetype
func DefaultConfig(a Archetype) Config {
	switch a {
	case FixedWing:
		return DefaultFixedWingConfig()
	default:
		return DefaultRotorcraftConfig()
	}
}

// DefaultRotorcraftConfig returns the stock helicopter. The body mass lets
// the idle main rotor roughly hold altitude at sea level.
func DefaultRotorcraftConfig() Config {
	return Config{
		Body: BodyConfig{
			Mass:           150000,
			Inertia:        mgl64.Vec3{3000, 200000, 3000},
			LinearDamping:  0.05,
			AngularDamping: 0.05,
		},
		Spawn:              SpawnConfig{Position: mgl64.Vec3{0, 1, 0}},
		MaxAngularVelocity: 7,
		AltitudeScale:      0.75,
		PowerScaling:       0.1,
		Main: PropellerConfig{
			Radius:        14,
			SpinAccel:     1.02,
			SpinDecel:     0.09,
			AccelSpinRate: 300,
			IdleSpinRate:  200,
			DecelSpinRate: 150,
			SpinAxis:      physics.AxisY,
			ThrustAxis:    physics.AxisY,
			Mount:         mgl64.Vec3{0, 2, 0},
		},
		Tail: PropellerConfig{
			Radius:        0.8,
			SpinAccel:     1.02,
			SpinDecel:     0.09,
			AccelSpinRate: 600,
			IdleSpinRate:  30,
			SpinAxis:      physics.AxisX,
			ThrustAxis:    physics.AxisX,
			Mount:         mgl64.Vec3{0, 1, -8},
		},
		Gyro: GyroConfig{
			Power:                 2000,
			AssistStrength:        0.8,
			StabilizationStrength: 1000,
			RollDamping:           0.4,
		},
		Flip: defaultFlip(),
	}
}

// DefaultFixedWingConfig returns the stock aeroplane.
func DefaultFixedWingConfig() Config {
	return Config{
		Body: BodyConfig{
			Mass:           1500,
			Inertia:        mgl64.Vec3{2000, 3000, 1500},
			LinearDamping:  0.1,
			AngularDamping: 0.05,
		},
		Spawn:              SpawnConfig{Position: mgl64.Vec3{0, 2, 0}},
		MaxAngularVelocity: 7,
		AltitudeScale:      1,
		PowerScaling:       0.1,
		Main: PropellerConfig{
			Radius:        1.4,
			SpinAccel:     1.02,
			SpinDecel:     0.09,
			AccelSpinRate: 300,
			IdleSpinRate:  200,
			DecelSpinRate: 150,
			SpinAxis:      physics.AxisZ,
			ThrustAxis:    physics.AxisZ,
			Mount:         mgl64.Vec3{0, 0, 3},
		},
		LiftCoefficient: 1.5,
		DragDamping:     0.05,
		Wing: WingConfig{
			Span:      3.5,
			RootChord: 1.8,
			TipChord:  1.5,
			Sections:  1,
			Offset:    mgl64.Vec3{-2.2, 0, 0},
		},
		Aileron: SurfaceConfig{
			Offset: mgl64.Vec3{-4.2, 0, -0.6}, Span: 0.6, Chord: 0.3,
			MaxAngle: 75, Speed: 1.2, ToNeutralSpeed: 6,
			Hinge: trailingEdgeDown, SpanAxis: physics.AxisX,
		},
		Elevator: SurfaceConfig{
			Offset: mgl64.Vec3{0, 0.4, -5.5}, Span: 3.8, Chord: 0.7,
			MaxAngle: 45, Speed: 1.35, ToNeutralSpeed: 3,
			Hinge: trailingEdgeDown, SpanAxis: physics.AxisX,
		},
		Rudder: SurfaceConfig{
			Offset: mgl64.Vec3{0, 1.2, -5.8}, Span: 1.8, Chord: 0.4,
			MaxAngle: 60, Speed: 5, ToNeutralSpeed: 6,
			Hinge: trailingEdgeLeft, SpanAxis: physics.AxisY,
		},
		Flap: SurfaceConfig{
			Offset: mgl64.Vec3{-1.6, 0, -0.7}, Span: 0.6, Chord: 0.3,
			MaxAngle: 80, MinAngle: -60, Speed: 7.5, ToNeutralSpeed: 3,
			Hinge: trailingEdgeDown, SpanAxis: physics.AxisX,
		},
		AileronAoAScale: 0.5,
		Flip:            defaultFlip(),
		WingTrail:       WingTrailConfig{Speed: 40, AngularSpeed: 0.4},
	}
}
