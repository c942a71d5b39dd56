// pkg/vehicle/archetype.go
package vehicle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownArchetype is returned for archetype names or values that do not
// name a supported vehicle.
var ErrUnknownArchetype = errors.New("unknown vehicle archetype")

// Archetype defines the type of vehicle and its control-mixing policy
type Archetype int

const (
	Rotorcraft Archetype = iota
	FixedWing
)

// Archetypes lists the supported archetypes in selection order.
func Archetypes() []Archetype {
	return []Archetype{Rotorcraft, FixedWing}
}

// String returns the configuration name of the archetype
func (a Archetype) String() string {
	switch a {
	case Rotorcraft:
		return "rotorcraft"
	case FixedWing:
		return "fixed-wing"
	default:
		return fmt.Sprintf("archetype(%d)", int(a))
	}
}

// Valid reports whether a is a supported archetype
func (a Archetype) Valid() bool {
	return a == Rotorcraft || a == FixedWing
}

// ParseArchetype converts a name to an Archetype. Matching is
// case-insensitive and accepts the common aliases.
func ParseArchetype(s string) (Archetype, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rotorcraft", "helicopter", "heli":
		return Rotorcraft, nil
	case "fixed-wing", "fixedwing", "fixed_wing", "plane", "aeroplane", "airplane":
		return FixedWing, nil
	default:
		return Rotorcraft, fmt.Errorf("%w: %q", ErrUnknownArchetype, s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (a Archetype) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArchetype, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Archetype) UnmarshalText(text []byte) error {
	parsed, err := ParseArchetype(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
