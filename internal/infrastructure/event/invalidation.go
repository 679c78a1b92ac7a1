package event

import (
	"context"

	"go.uber.org/zap"

	appcatalog "github.com/store/backend/internal/application/catalog"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// DetailCacheInvalidationHandler drops the cached product detail view
// whenever a stock mutation changes what the detail endpoint would
// return. Seller-side edits invalidate inline; stock moves flow
// through here so the inventory service stays unaware of the cache.
type DetailCacheInvalidationHandler struct {
	invalidator appcatalog.DetailCacheInvalidator
	logger      *zap.Logger
}

func NewDetailCacheInvalidationHandler(invalidator appcatalog.DetailCacheInvalidator, logger *zap.Logger) *DetailCacheInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailCacheInvalidationHandler{invalidator: invalidator, logger: logger}
}

func (h *DetailCacheInvalidationHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.invalidator.Invalidate(ctx, evt.AggregateID())
	h.logger.Debug("product detail cache invalidated",
		zap.String("event_type", evt.EventType()),
		zap.String("product_id", evt.AggregateID().String()),
	)
	return nil
}

func (h *DetailCacheInvalidationHandler) EventTypes() []string {
	return []string{
		catalog.EventTypeStockDecreased,
		catalog.EventTypeStockIncreased,
	}
}

var _ shared.EventHandler = (*DetailCacheInvalidationHandler)(nil)
