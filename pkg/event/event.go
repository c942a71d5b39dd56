// pkg/event/event.go
package event

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Type represents the type of event
type Type string

// Flight event types
const (
	VehicleActivated   Type = "vehicle_activated"
	VehicleDeactivated Type = "vehicle_deactivated"
	EngineStarted      Type = "engine_started"
	EngineStopped      Type = "engine_stopped"
	VehicleMoved       Type = "vehicle_moved"
	VehicleRespawned   Type = "vehicle_respawned"
	VehicleFlipped     Type = "vehicle_flipped"
	WingTrailStarted   Type = "wing_trail_started"
	WingTrailStopped   Type = "wing_trail_stopped"
	SimulationStarted  Type = "simulation_started"
	SimulationStopped  Type = "simulation_stopped"
	VehicleSelected    Type = "vehicle_selected"
)

// Types lists every event type in declaration order.
func Types() []Type {
	return []Type{
		VehicleActivated, VehicleDeactivated,
		EngineStarted, EngineStopped,
		VehicleMoved, VehicleRespawned, VehicleFlipped,
		WingTrailStarted, WingTrailStopped,
		SimulationStarted, SimulationStopped, VehicleSelected,
	}
}

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Sink receives outbound events.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(Event)

// Publish calls f(event)
func (f SinkFunc) Publish(event Event) { f(event) }

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id == id {
			b.handlers[eventType] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := append([]registration(nil), b.handlers[event.GetType()]...)
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// Queue buffers events until drained. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	limit   int
	dropped uint64
}

// NewQueue creates a queue holding at most limit events; older events are
// dropped first once full. A limit of zero or less means unbounded.
func NewQueue(limit int) *Queue {
	return &Queue{limit: limit}
}

// Publish appends an event
func (q *Queue) Publish(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && len(q.pending) >= q.limit {
		q.pending = q.pending[1:]
		q.dropped++
	}
	q.pending = append(q.pending, event)
}

// Drain returns the buffered events in publish order and empties the queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of buffered events
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Dropped returns how many events were discarded because the queue was full.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Fanout publishes every event to each sink in order.
type Fanout []Sink

// Publish forwards the event to every non-nil sink.
func (f Fanout) Publish(event Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(event)
		}
	}
}

// Discard is a sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// VehicleEvent describes a state change of one vehicle
type VehicleEvent struct {
	BaseEvent
	Vehicle  string
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewVehicleEvent creates a new vehicle event
func NewVehicleEvent(eventType Type, source interface{}, vehicle string, pos mgl64.Vec3, rot mgl64.Quat) *VehicleEvent {
	return &VehicleEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Vehicle:  vehicle,
		Position: pos,
		Rotation: rot,
	}
}

// SimulationEvent describes a simulation lifecycle change
type SimulationEvent struct {
	BaseEvent
	Tick    uint64
	Vehicle string
}

// NewSimulationEvent creates a new simulation event
func NewSimulationEvent(eventType Type, source interface{}, tick uint64, vehicle string) *SimulationEvent {
	return &SimulationEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Tick:    tick,
		Vehicle: vehicle,
	}
}
