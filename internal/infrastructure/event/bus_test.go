package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, tenantID shared.TenantID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", shared.NewID(), tenantID),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

type panicHandler struct{}

func (panicHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	panic("boom")
}

func (panicHandler) EventTypes() []string { return []string{"TestEvent"} }

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	event := newTestEvent("TestEvent", 1)
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_PreservesOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler()
	bus.Subscribe(handler)

	first := newTestEvent("First", 1)
	second := newTestEvent("Second", 1)
	third := newTestEvent("Third", 1)
	require.NoError(t, bus.Publish(context.Background(), first, second, third))

	handled := handler.getHandled()
	require.Len(t, handled, 3)
	assert.Equal(t, "First", handled[0].EventType())
	assert.Equal(t, "Second", handled[1].EventType())
	assert.Equal(t, "Third", handled[2].EventType())
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler1 := newTestHandler("TestEvent")
	handler2 := newTestHandler("TestEvent")
	bus.Subscribe(handler1)
	bus.Subscribe(handler2)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent", 1)))

	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
	assert.Equal(t, 2, bus.HandlerCount("TestEvent"))
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcard := newTestHandler()
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("AnyEventType", 1)))
	assert.Len(t, wildcard.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("TestEvent")
	failing.setError(errors.New("handler error"))
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("TestEvent", 1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler error")
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1, "later handlers still run")
}

func TestInMemoryEventBus_Publish_HandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bus.Subscribe(panicHandler{})
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("TestEvent", 1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NilEvent(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	err := bus.Publish(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("OtherEvent")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent", 1)))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("TestEvent", 1))
	assert.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("TestEvent", 1))
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, 0, bus.HandlerCount("TestEvent"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent", 1)))
	assert.Len(t, handler.getHandled(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	err := bus.Publish(context.Background(), newTestEvent("TestEvent", 2))
	assert.ErrorIs(t, err, ErrBusStopped)
	assert.True(t, shared.IsKind(err, shared.KindStateTransition))
	assert.Len(t, handler.getHandled(), 1)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent", 3)))
	assert.Len(t, handler.getHandled(), 2)
}
