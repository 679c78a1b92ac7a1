package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/store/backend/internal/domain/cart"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// CartService manages a member's shopping cart. Carts are created
// lazily, repeated adds of the same product merge into one line at the
// storage layer, and every item operation is checked against the
// stored cart ownership, never against caller-supplied ids.
type CartService struct {
	cartRepo     cart.CartRepository
	cartItemRepo cart.CartItemRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo cart.CartRepository,
	cartItemRepo cart.CartItemRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// AddItem puts qty units of a product into the member's cart. The
// cart is created on first use, and adding a product that is already
// in the cart merges into the existing line atomically.
func (s *CartService) AddItem(ctx context.Context, memberID uuid.UUID, req AddItemRequest) (*CartItemResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, shared.ErrNotFound
	}

	memberCart, err := s.cartRepo.GetOrCreate(ctx, memberID)
	if err != nil {
		return nil, err
	}

	item, err := cart.NewCartItem(memberCart.ID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	merged, err := s.cartItemRepo.Upsert(ctx, item)
	if err != nil {
		return nil, err
	}

	response := ToCartItemResponse(merged, product)
	return &response, nil
}

// UpdateItem overwrites a line's quantity with an absolute value.
// Only the cart's owner may touch the line.
func (s *CartService) UpdateItem(ctx context.Context, memberID, itemID uuid.UUID, req UpdateItemRequest) (*CartItemResponse, error) {
	item, err := s.ownedItem(ctx, memberID, itemID)
	if err != nil {
		return nil, err
	}

	if err := item.SetQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartItemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	response := ToCartItemResponse(item, product)
	return &response, nil
}

// RemoveItem deletes a line from the member's cart
func (s *CartService) RemoveItem(ctx context.Context, memberID, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, memberID, itemID)
	if err != nil {
		return err
	}
	return s.cartItemRepo.Delete(ctx, item.ID)
}

// GetCart returns the member's cart with every product re-resolved so
// names, prices and totals reflect the catalog right now, not the
// moment of adding. Lines whose product no longer exists or has been
// deleted are dropped from the view.
func (s *CartService) GetCart(ctx context.Context, memberID uuid.UUID) (*CartResponse, error) {
	memberCart, err := s.cartRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	items, err := s.cartItemRepo.FindByCartID(ctx, memberCart.ID)
	if err != nil {
		return nil, err
	}

	response := &CartResponse{
		CartID:     memberCart.ID,
		MemberID:   memberCart.MemberID,
		Items:      make([]CartItemResponse, 0, len(items)),
		TotalPrice: decimal.Zero,
	}

	for i := range items {
		item := &items[i]
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			s.logger.Warn("cart line references unresolvable product",
				zap.String("cart_item_id", item.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
			continue
		}
		if product.IsDeleted() {
			continue
		}

		line := ToCartItemResponse(item, product)
		response.Items = append(response.Items, line)
		response.TotalItems += line.Quantity
		response.TotalPrice = response.TotalPrice.Add(line.LineTotal)
	}

	return response, nil
}

// ownedItem loads a cart line and verifies it belongs to the member's
// cart. The stored cart id decides ownership.
func (s *CartService) ownedItem(ctx context.Context, memberID, itemID uuid.UUID) (*cart.CartItem, error) {
	memberCart, err := s.cartRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartItemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.BelongsTo(memberCart.ID) {
		return nil, shared.ErrForbidden
	}
	return item, nil
}
