package main

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

// leg holds one input until the flight clock reaches until.
type leg struct {
	until time.Duration
	input vehicle.Input
}

// flightPlan spools up, climbs, pulses every axis once, then cruises.
var flightPlan = []leg{
	{until: 2 * time.Second, input: vehicle.Input{}},
	{until: 10 * time.Second, input: vehicle.Input{ThrottleUp: 1, TakeOff: true}},
	{until: 12 * time.Second, input: vehicle.Input{ThrottleUp: 1, Move: mgl64.Vec2{0.5, 0}}},
	{until: 14 * time.Second, input: vehicle.Input{ThrottleUp: 1, Move: mgl64.Vec2{-0.5, 0}}},
	{until: 16 * time.Second, input: vehicle.Input{ThrottleUp: 1, Move: mgl64.Vec2{0, 0.4}}},
	{until: 18 * time.Second, input: vehicle.Input{ThrottleUp: 1, Right: true}},
	{until: 20 * time.Second, input: vehicle.Input{ThrottleUp: 1, Left: true}},
	{until: 24 * time.Second, input: vehicle.Input{ThrottleDown: 0.5, Brake: true}},
	{input: vehicle.Input{ThrottleUp: 0.6}},
}

// scriptedInput returns the pilot input for a point on the flight clock.
// The last leg holds forever.
func scriptedInput(elapsed time.Duration) vehicle.Input {
	for _, l := range flightPlan[:len(flightPlan)-1] {
		if elapsed < l.until {
			return l.input
		}
	}
	return flightPlan[len(flightPlan)-1].input
}
