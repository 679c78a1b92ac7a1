package order

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinv "github.com/store/backend/internal/application/inventory"
	"github.com/store/backend/internal/domain/order"
	"github.com/store/backend/internal/domain/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderService turns carts into orders and back. Checkout runs in one
// transaction: every cart line's stock is decremented under a row
// lock, name and price are snapshotted into the order, and the cart is
// cleared. Any failure rolls the whole checkout back.
type OrderService struct {
	scope     appinv.TransactionScope
	orderRepo order.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(scope appinv.TransactionScope, orderRepo order.OrderRepository, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		scope:     scope,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// PlaceFromCart places an order for everything in the member's cart
func (s *OrderService) PlaceFromCart(ctx context.Context, memberID uuid.UUID) (*OrderResponse, error) {
	var placed *order.Order

	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		memberCart, err := repos.CartRepo().FindByMemberID(ctx, memberID)
		if err != nil {
			return err
		}

		items, err := repos.CartItemRepo().FindByCartID(ctx, memberCart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return shared.NewDomainError("INVALID_ARGUMENT", "Cart is empty")
		}

		// Lock products in a stable order so two concurrent checkouts
		// with overlapping carts cannot deadlock.
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductID.String() < items[j].ProductID.String()
		})

		productRepo := repos.ProductRepo()
		lines := make([]order.Line, 0, len(items))
		for i := range items {
			item := &items[i]

			product, err := productRepo.FindByIDLocked(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.IsDeleted() {
				return shared.NewDomainError("NOT_FOUND", "Product is no longer available: "+product.Name)
			}
			if err := product.DecreaseStock(item.Quantity); err != nil {
				return err
			}
			if err := productRepo.Save(ctx, product); err != nil {
				return err
			}

			lines = append(lines, order.Line{
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       product.Price,
				Quantity:    item.Quantity,
			})
		}

		placed, err = order.NewOrder(memberID, lines)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, placed); err != nil {
			return err
		}

		return repos.CartItemRepo().DeleteByCartID(ctx, memberCart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("member_id", memberID.String()),
		zap.Int("lines", len(placed.Items)))

	return ToOrderResponse(placed), nil
}

// ListByMember lists the member's orders, newest first
func (s *OrderService) ListByMember(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]OrderResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	orders, total, err := s.orderRepo.FindByMemberID(ctx, memberID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// GetByID returns one order. Only its owner may read it.
func (s *OrderService) GetByID(ctx context.Context, memberID, orderID uuid.UUID) (*OrderResponse, error) {
	found, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !found.IsOwnedBy(memberID) {
		return nil, shared.ErrForbidden
	}
	return ToOrderResponse(found), nil
}

// Cancel cancels an order and returns its units to stock in the same
// transaction. Cancelled is terminal.
func (s *OrderService) Cancel(ctx context.Context, memberID, orderID uuid.UUID) (*OrderResponse, error) {
	var cancelled *order.Order

	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !found.IsOwnedBy(memberID) {
			return shared.ErrForbidden
		}
		if err := found.Cancel(); err != nil {
			return err
		}

		productRepo := repos.ProductRepo()
		for _, item := range found.Items {
			product, err := productRepo.FindByIDLocked(ctx, item.ProductID)
			if err != nil {
				return err
			}
			// Restock reactivates sold_out products; deleted products
			// keep the units for bookkeeping but stay deleted.
			if err := product.IncreaseStock(item.Quantity); err != nil {
				return err
			}
			if err := productRepo.Save(ctx, product); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().Save(ctx, found); err != nil {
			return err
		}
		cancelled = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", cancelled.ID.String()),
		zap.String("member_id", memberID.String()))

	return ToOrderResponse(cancelled), nil
}
