// Package atmosphere models air density in the troposphere using the
// barometric formula and the ideal gas law.
package atmosphere

import "math"

// Standard atmosphere constants.
const (
	SeaLevelTemperature = 288.15   // K
	LapseRate           = 0.0065   // K/m
	GasConstant         = 287.05   // J/(kg·K), dry air
	SeaLevelPressure    = 101325.0 // Pa
	StandardGravity     = 9.80665  // m/s²

	// MinTemperature keeps the model finite above the altitude where the
	// linear lapse would reach absolute zero.
	MinTemperature = 1.0 // K
)

// Model holds the constants used by Density. The zero value is not useful;
// use Standard or set every field.
type Model struct {
	SeaLevelTemperature float64
	LapseRate           float64
	GasConstant         float64
	SeaLevelPressure    float64
	Gravity             float64
}

// Standard returns the standard atmosphere with the given gravity magnitude.
// A non-positive gravity selects StandardGravity.
func Standard(gravity float64) Model {
	if gravity <= 0 {
		gravity = StandardGravity
	}
	return Model{
		SeaLevelTemperature: SeaLevelTemperature,
		LapseRate:           LapseRate,
		GasConstant:         GasConstant,
		SeaLevelPressure:    SeaLevelPressure,
		Gravity:             gravity,
	}
}

// Temperature returns the air temperature in kelvin at altitude, never below MinTemperature.
func (m Model) Temperature(altitude float64) float64 {
	return math.Max(m.SeaLevelTemperature-m.LapseRate*altitude, MinTemperature)
}

// Pressure returns the barometric pressure in pascals at altitude.
func (m Model) Pressure(altitude float64) float64 {
	t := m.Temperature(altitude)
	exponent := m.Gravity / (m.LapseRate * m.GasConstant)
	return m.SeaLevelPressure * math.Pow(t/m.SeaLevelTemperature, exponent)
}

// Density returns the air density in kg/m³ at altitude.
func (m Model) Density(altitude float64) float64 {
	t := m.Temperature(altitude)
	return m.Pressure(altitude) / (m.GasConstant * t)
}

// Density returns the standard-atmosphere air density at altitude.
func Density(altitude float64) float64 {
	return Standard(StandardGravity).Density(altitude)
}

// BladeArea returns the disc area swept by a rotor of the given radius.
func BladeArea(radius float64) float64 {
	return math.Pi * radius * radius
}

// WingAreaPerSection splits a tapered wing into sections on both sides of the fuselage.
// span is the total wingspan, rootChord and tipChord the chord at the centre and the tip.
func WingAreaPerSection(span, rootChord, tipChord float64, sections int) float64 {
	if sections <= 0 {
		sections = 1
	}
	total := span * ((rootChord + tipChord) / 2)
	return total / float64(sections*2)
}
