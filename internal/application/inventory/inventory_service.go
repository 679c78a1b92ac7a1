package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// InventoryService coordinates stock mutations on products. Each call
// picks a locking strategy: pessimistic takes a bounded row lock before
// reading, optimistic reads freely and relies on a version check at
// write time. Both run inside a transaction scope so the read and the
// write commit together.
type InventoryService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope TransactionScope, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{scope: scope, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// DecreaseStock removes qty units from the product's stock. The caller
// chooses the lock mode; an empty mode defaults to pessimistic. When
// the last unit is taken the product flips to sold_out in the same
// transaction.
func (s *InventoryService) DecreaseStock(ctx context.Context, productID uuid.UUID, qty int, mode catalog.LockMode) (*StockResponse, error) {
	return s.adjust(ctx, productID, mode, func(p *catalog.Product) error {
		return p.DecreaseStock(qty)
	})
}

// IncreaseStock adds qty units to the product's stock. A sold_out
// product becomes active again on any restock.
func (s *InventoryService) IncreaseStock(ctx context.Context, productID uuid.UUID, qty int, mode catalog.LockMode) (*StockResponse, error) {
	return s.adjust(ctx, productID, mode, func(p *catalog.Product) error {
		return p.IncreaseStock(qty)
	})
}

// GetStock returns the current stock state of a product
func (s *InventoryService) GetStock(ctx context.Context, productID uuid.UUID) (*StockResponse, error) {
	var response StockResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		response = ToStockResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *InventoryService) adjust(ctx context.Context, productID uuid.UUID, mode catalog.LockMode, apply func(*catalog.Product) error) (*StockResponse, error) {
	if mode == "" {
		mode = catalog.LockPessimistic
	}
	if !mode.Valid() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Unknown lock mode: "+mode.String())
	}

	var product *catalog.Product
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.ProductRepo()

		var err error
		if mode == catalog.LockPessimistic {
			product, err = repo.FindByIDLocked(ctx, productID)
		} else {
			product, err = repo.FindByID(ctx, productID)
		}
		if err != nil {
			return err
		}

		if err := apply(product); err != nil {
			return err
		}

		if mode == catalog.LockPessimistic {
			// The row lock already serializes writers.
			return repo.Save(ctx, product)
		}
		return repo.SaveWithVersionCheck(ctx, product)
	})
	if err != nil {
		s.logger.Debug("stock adjustment rejected",
			zap.String("product_id", productID.String()),
			zap.String("lock_mode", mode.String()),
			zap.Error(err))
		return nil, err
	}

	s.publishDomainEvents(ctx, product)

	response := ToStockResponse(product)
	return &response, nil
}

// publishDomainEvents publishes pending events after the transaction commits
func (s *InventoryService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock events", zap.Error(err))
	}
	product.ClearDomainEvents()
}
