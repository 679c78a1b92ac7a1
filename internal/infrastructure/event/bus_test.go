package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func testEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Product", uuid.New())
	return &evt
}

func TestInMemoryEventBus_DeliversByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	stockHandler := &recordingHandler{types: []string{catalog.EventTypeStockDecreased}}
	createdHandler := &recordingHandler{types: []string{catalog.EventTypeProductCreated}}
	bus.Subscribe(stockHandler)
	bus.Subscribe(createdHandler)

	require.NoError(t, bus.Publish(context.Background(),
		testEvent(catalog.EventTypeStockDecreased),
		testEvent(catalog.EventTypeStockDecreased),
	))

	assert.Equal(t, 2, stockHandler.count())
	assert.Equal(t, 0, createdHandler.count())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{catalog.EventTypeStockDecreased}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{catalog.EventTypeStockDecreased}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), testEvent(catalog.EventTypeStockDecreased)))

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{catalog.EventTypeStockIncreased}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), testEvent(catalog.EventTypeStockIncreased)))
	assert.Equal(t, 0, handler.count())
}

type invalidatorSpy struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (s *invalidatorSpy) Invalidate(_ context.Context, productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, productID)
}

func TestDetailCacheInvalidationHandler(t *testing.T) {
	spy := &invalidatorSpy{}
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewDetailCacheInvalidationHandler(spy, zap.NewNop()))

	decreased := testEvent(catalog.EventTypeStockDecreased)
	require.NoError(t, bus.Publish(context.Background(), decreased))
	require.NoError(t, bus.Publish(context.Background(), testEvent(catalog.EventTypeProductCreated)))

	require.Len(t, spy.ids, 1)
	assert.Equal(t, decreased.AggregateID(), spy.ids[0])
}
