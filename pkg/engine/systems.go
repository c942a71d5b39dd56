// pkg/engine/systems.go
package engine

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-aviator/pkg/rigidbody"
	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

// System priorities; higher runs first within a world update.
const (
	FlightPriority      = 10
	IntegrationPriority = 0
)

// Vehicle is one entity of the simulation world.
type Vehicle struct {
	ecs.BasicEntity
	Controller *vehicle.Controller
	Body       *rigidbody.Body
}

// vehicleList keeps entities in insertion order.
type vehicleList []*Vehicle

func (l *vehicleList) add(v *Vehicle) {
	*l = append(*l, v)
}

func (l *vehicleList) remove(e ecs.BasicEntity) {
	for i, v := range *l {
		if v.ID() == e.ID() {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return
		}
	}
}

// FlightSystem ticks every controller with the current input. Inactive
// controllers ignore the tick.
type FlightSystem struct {
	step     float64
	input    vehicle.Input
	entities vehicleList
}

// Add registers a vehicle with the system
func (s *FlightSystem) Add(v *Vehicle) { s.entities.add(v) }

// Remove satisfies the ecs.System interface
func (s *FlightSystem) Remove(e ecs.BasicEntity) { s.entities.remove(e) }

// Priority satisfies the ecs.Prioritizer interface
func (*FlightSystem) Priority() int { return FlightPriority }

// Update runs one flight tick. The float32 delta from the world is ignored
// in favour of the fixed float64 step.
func (s *FlightSystem) Update(float32) {
	for _, v := range s.entities {
		v.Controller.Tick(s.input, s.step)
	}
}

// IntegrationSystem advances the bodies of active vehicles.
type IntegrationSystem struct {
	step     float64
	entities vehicleList
}

// Add registers a vehicle with the system
func (s *IntegrationSystem) Add(v *Vehicle) { s.entities.add(v) }

// Remove satisfies the ecs.System interface
func (s *IntegrationSystem) Remove(e ecs.BasicEntity) { s.entities.remove(e) }

// Priority satisfies the ecs.Prioritizer interface
func (*IntegrationSystem) Priority() int { return IntegrationPriority }

// Update integrates each active body by the fixed step
func (s *IntegrationSystem) Update(float32) {
	for _, v := range s.entities {
		if v.Controller.State() == vehicle.Inactive {
			continue
		}
		v.Body.Integrate(s.step)
	}
}
