package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/store/backend/internal/domain/shared"
)

// CartItem is one line in a cart. At most one line exists per
// (cart, product) pair: repeated adds for the same product merge into
// the existing line by summing quantities, enforced by an atomic
// upsert against a unique index at the storage layer.
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_cart_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_cart_product,priority:2"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCartItem creates a cart line for a product
func NewCartItem(cartID, productID uuid.UUID, quantity int) (*CartItem, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Cart item quantity must be positive")
	}

	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     cartID,
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// SetQuantity overwrites the quantity with an absolute value
func (i *CartItem) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Cart item quantity must be positive")
	}

	i.Quantity = quantity
	i.UpdatedAt = time.Now()

	return nil
}

// BelongsTo returns true if the line is owned by the given cart.
// Ownership is checked against the stored cart id, never against
// caller-supplied data.
func (i *CartItem) BelongsTo(cartID uuid.UUID) bool {
	return i.CartID == cartID
}
