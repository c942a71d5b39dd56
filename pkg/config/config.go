// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/opd-ai/go-aviator/pkg/aero"
	"github.com/opd-ai/go-aviator/pkg/validation"
	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLIGHTSIM"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// VehicleConfig is the parameter set of one vehicle archetype.
type VehicleConfig = vehicle.Config

// SimulationConfig contains the configuration of a flight simulation
type SimulationConfig struct {
	// TickRate is the number of fixed physics steps per second.
	TickRate    float64           `json:"tickRate" mapstructure:"tickRate"`
	Gravity     float64           `json:"gravity" mapstructure:"gravity"`
	LiftCurve   aero.LiftCurve    `json:"liftCurve" mapstructure:"liftCurve"`
	InvertPitch bool              `json:"invertPitch" mapstructure:"invertPitch"`
	Active      vehicle.Archetype `json:"active" mapstructure:"active"`
	// Ground enables a contact plane at GroundHeight for the reference bodies.
	Ground       bool    `json:"ground" mapstructure:"ground"`
	GroundHeight float64 `json:"groundHeight" mapstructure:"groundHeight"`

	Rotorcraft VehicleConfig `json:"rotorcraft" mapstructure:"rotorcraft"`
	FixedWing  VehicleConfig `json:"fixedWing" mapstructure:"fixedWing"`
}

// envKeys are the top-level keys that can be overridden from the environment.
var envKeys = []string{"tickRate", "gravity", "liftCurve", "active", "invertPitch"}

// DefaultConfig returns a default simulation configuration
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		TickRate:   50,
		Gravity:    9.81,
		LiftCurve:  aero.LiftSine,
		Active:     vehicle.Rotorcraft,
		Ground:     true,
		Rotorcraft: DefaultRotorcraft(),
		FixedWing:  DefaultFixedWing(),
	}
}

// DefaultRotorcraft returns the default rotorcraft parameters
func DefaultRotorcraft() VehicleConfig {
	return vehicle.DefaultRotorcraftConfig()
}

// DefaultFixedWing returns the default fixed-wing parameters
func DefaultFixedWing() VehicleConfig {
	return vehicle.DefaultFixedWingConfig()
}

// Step returns the fixed tick duration
func (c *SimulationConfig) Step() time.Duration {
	if c.TickRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.TickRate)
}

// Vehicle returns the parameters of an archetype.
func (c *SimulationConfig) Vehicle(a vehicle.Archetype) (VehicleConfig, error) {
	switch a {
	case vehicle.Rotorcraft:
		return c.Rotorcraft, nil
	case vehicle.FixedWing:
		return c.FixedWing, nil
	default:
		return VehicleConfig{}, fmt.Errorf("vehicle %d: %w", int(a), vehicle.ErrUnknownArchetype)
	}
}

// Load reads a configuration file over the defaults, applies FLIGHTSIM_
// environment overrides and validates the result. The format follows the
// file extension (json, yaml or toml). An empty path loads defaults and
// environment only.
func Load(path string) (*SimulationConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(cfg, hooks); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves a configuration to a file as indented JSON
func SaveConfig(config *SimulationConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports every violation at once, wrapped around ErrInvalid.
func (c *SimulationConfig) Validate() error {
	r := validation.NewReport()
	r.Positive("tickRate", c.TickRate)
	r.NonNegative("gravity", c.Gravity)
	r.Check(c.LiftCurve == aero.LiftSine || c.LiftCurve == aero.LiftClampedDot, "liftCurve", "is unknown (%d)", int(c.LiftCurve))
	r.Check(c.Active.Valid(), "active", "is not a known vehicle (%d)", int(c.Active))

	validateVehicle(r.Scope("rotorcraft"), vehicle.Rotorcraft, c.Rotorcraft)
	validateVehicle(r.Scope("fixedWing"), vehicle.FixedWing, c.FixedWing)

	return r.Err(ErrInvalid)
}

func validateVehicle(r *validation.Report, a vehicle.Archetype, v VehicleConfig) {
	r.Positive("body.mass", v.Body.Mass)
	for i, name := range []string{"x", "y", "z"} {
		r.Positive("body.inertia."+name, v.Body.Inertia[i])
	}
	r.NonNegative("body.linearDamping", v.Body.LinearDamping)
	r.NonNegative("body.angularDamping", v.Body.AngularDamping)
	r.NonNegative("maxAngularVelocity", v.MaxAngularVelocity)
	r.NonNegative("altitudeScale", v.AltitudeScale)
	r.NonNegative("powerScaling", v.PowerScaling)

	validatePropeller(r.Scope("main"), v.Main)

	switch a {
	case vehicle.Rotorcraft:
		validatePropeller(r.Scope("tail"), v.Tail)
		r.NonNegative("gyro.power", v.Gyro.Power)
		r.NonNegative("gyro.assistStrength", v.Gyro.AssistStrength)
		r.NonNegative("gyro.stabilizationStrength", v.Gyro.StabilizationStrength)
	case vehicle.FixedWing:
		r.NonNegative("liftCoefficient", v.LiftCoefficient)
		r.NonNegative("dragDamping", v.DragDamping)
		r.Positive("wing.span", v.Wing.Span)
		r.NonNegative("wing.rootChord", v.Wing.RootChord)
		r.NonNegative("wing.tipChord", v.Wing.TipChord)
		r.Check(v.Wing.Sections >= 1, "wing.sections", "must be at least 1, got %d", v.Wing.Sections)
		validateSurface(r.Scope("aileron"), v.Aileron)
		validateSurface(r.Scope("elevator"), v.Elevator)
		validateSurface(r.Scope("rudder"), v.Rudder)
		validateSurface(r.Scope("flap"), v.Flap)
	}
}

func validatePropeller(r *validation.Report, p vehicle.PropellerConfig) {
	r.NonNegative("radius", p.Radius)
	r.Greater("spinAccel", p.SpinAccel, 1)
	r.Between("spinDecel", p.SpinDecel, 0, 1)
	r.NonNegative("accelSpinRate", p.AccelSpinRate)
	r.NonNegative("idleSpinRate", p.IdleSpinRate)
	r.NonNegative("decelSpinRate", p.DecelSpinRate)
}

func validateSurface(r *validation.Report, s vehicle.SurfaceConfig) {
	r.NonNegative("span", s.Span)
	r.NonNegative("chord", s.Chord)
	r.NonNegative("maxAngle", s.MaxAngle)
	r.NonPositive("minAngle", s.MinAngle)
	r.NonNegative("speed", s.Speed)
	r.NonNegative("toNeutralSpeed", s.ToNeutralSpeed)
}
