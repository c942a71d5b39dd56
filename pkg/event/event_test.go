// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()

	require.NotNil(t, bus)
	assert.NotNil(t, bus.handlers)
	assert.Equal(t, uint64(1), bus.nextID)
}

func TestBaseEvent_GetType_ReturnsCorrectType(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
	}{
		{name: "EngineStarted event", eventType: EngineStarted, source: "rotorcraft"},
		{name: "VehicleFlipped event", eventType: VehicleFlipped, source: 123},
		{name: "Empty source", eventType: SimulationStarted, source: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &BaseEvent{EventType: tt.eventType, Source: tt.source}
			assert.Equal(t, tt.eventType, e.GetType())
			assert.Equal(t, tt.source, e.GetSource())
		})
	}
}

func TestBusSubscribe_MultipleHandlers_UniqueIDs(t *testing.T) {
	bus := NewEventBus()
	noop := func(Event) {}

	sub1 := bus.Subscribe(EngineStarted, noop)
	sub2 := bus.Subscribe(EngineStarted, noop)
	_ = bus.Subscribe(VehicleMoved, noop)

	require.NotNil(t, sub1.Cancel)
	assert.NotZero(t, sub1.ID)
	assert.NotEqual(t, sub1.ID, sub2.ID)
	assert.Equal(t, EngineStarted, sub1.Type)

	bus.mu.RLock()
	defer bus.mu.RUnlock()
	assert.Len(t, bus.handlers[EngineStarted], 2)
	assert.Len(t, bus.handlers[VehicleMoved], 1)
}

func TestBusPublish_RoutesByType(t *testing.T) {
	bus := NewEventBus()
	var got []Type

	bus.Subscribe(EngineStarted, func(e Event) { got = append(got, e.GetType()) })
	bus.Subscribe(EngineStopped, func(e Event) { got = append(got, e.GetType()) })

	bus.Publish(&BaseEvent{EventType: EngineStarted})
	bus.Publish(&BaseEvent{EventType: VehicleFlipped})
	bus.Publish(&BaseEvent{EventType: EngineStopped})

	assert.Equal(t, []Type{EngineStarted, EngineStopped}, got)
}

func TestSubscriptionCancel_RemovesOnlyThatHandler(t *testing.T) {
	bus := NewEventBus()
	var first, second int

	sub := bus.Subscribe(VehicleRespawned, func(Event) { first++ })
	bus.Subscribe(VehicleRespawned, func(Event) { second++ })

	sub.Cancel()
	bus.Publish(&BaseEvent{EventType: VehicleRespawned})

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	// Cancelling twice is harmless.
	sub.Cancel()
	bus.Publish(&BaseEvent{EventType: VehicleRespawned})
	assert.Equal(t, 2, second)
}

func TestSubscriptionCancel_DuringPublish(t *testing.T) {
	bus := NewEventBus()
	calls := 0

	var sub *Subscription
	sub = bus.Subscribe(WingTrailStarted, func(Event) {
		calls++
		sub.Cancel()
	})

	bus.Publish(&BaseEvent{EventType: WingTrailStarted})
	bus.Publish(&BaseEvent{EventType: WingTrailStarted})
	assert.Equal(t, 1, calls)
}

func TestBus_ConcurrentAccess_ThreadSafe(t *testing.T) {
	bus := NewEventBus()
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	handler := func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}

	const subscribers = 10
	wg.Add(subscribers)
	for i := 0; i < subscribers; i++ {
		go func() {
			defer wg.Done()
			bus.Subscribe(EngineStarted, handler)
		}()
	}
	wg.Wait()

	wg.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer wg.Done()
			bus.Publish(&BaseEvent{EventType: EngineStarted})
		}()
	}
	wg.Wait()

	assert.Equal(t, subscribers*3, count)
}

func TestQueue_DrainPreservesOrder(t *testing.T) {
	q := NewQueue(0)
	q.Publish(&BaseEvent{EventType: EngineStarted})
	q.Publish(&BaseEvent{EventType: VehicleMoved})
	assert.Equal(t, 2, q.Len())

	events := q.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, EngineStarted, events[0].GetType())
	assert.Equal(t, VehicleMoved, events[1].GetType())

	assert.Empty(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Publish(&BaseEvent{EventType: EngineStarted})
	q.Publish(&BaseEvent{EventType: EngineStopped})
	q.Publish(&BaseEvent{EventType: VehicleFlipped})

	events := q.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, EngineStopped, events[0].GetType())
	assert.Equal(t, VehicleFlipped, events[1].GetType())
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestFanout_PublishesToEverySink(t *testing.T) {
	bus := NewEventBus()
	q := NewQueue(0)
	seen := 0
	bus.Subscribe(VehicleSelected, func(Event) { seen++ })

	var types []Type
	fn := SinkFunc(func(e Event) { types = append(types, e.GetType()) })

	Fanout{bus, nil, q, Discard, fn}.Publish(&BaseEvent{EventType: VehicleSelected})

	assert.Equal(t, 1, seen)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, []Type{VehicleSelected}, types)
}

func TestNewVehicleEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	pos := mgl64.Vec3{1, 2, 3}
	rot := mgl64.QuatIdent()

	e := NewVehicleEvent(VehicleMoved, "src", "fixed-wing", pos, rot)

	assert.Equal(t, VehicleMoved, e.GetType())
	assert.Equal(t, "src", e.GetSource())
	assert.Equal(t, "fixed-wing", e.Vehicle)
	assert.Equal(t, pos, e.Position)
	assert.Equal(t, rot, e.Rotation)
}

func TestNewSimulationEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	e := NewSimulationEvent(VehicleSelected, nil, 42, "rotorcraft")

	assert.Equal(t, VehicleSelected, e.GetType())
	assert.Equal(t, uint64(42), e.Tick)
	assert.Equal(t, "rotorcraft", e.Vehicle)
}

func TestEventTypes_AllDistinct(t *testing.T) {
	seen := make(map[Type]bool)
	for _, typ := range Types() {
		assert.NotEmpty(t, string(typ))
		assert.False(t, seen[typ], "duplicate type %s", typ)
		seen[typ] = true
	}
	assert.Len(t, seen, 12)
}
