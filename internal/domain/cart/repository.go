package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByMemberID finds a member's cart
	FindByMemberID(ctx context.Context, memberID uuid.UUID) (*Cart, error)

	// GetOrCreate returns the member's cart, creating it on first use.
	// Concurrent first adds for the same member must converge on a
	// single cart row.
	GetOrCreate(ctx context.Context, memberID uuid.UUID) (*Cart, error)
}

// CartItemRepository defines the interface for cart line persistence
type CartItemRepository interface {
	// FindByID finds a cart item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CartItem, error)

	// FindByCartID lists all lines of a cart
	FindByCartID(ctx context.Context, cartID uuid.UUID) ([]CartItem, error)

	// Upsert inserts the line or, when a line for the same
	// (cart, product) pair already exists, atomically adds the quantity
	// onto it. Returns the resulting line. The merge must not race: two
	// concurrent adds for the same product yield one line with the
	// summed quantity.
	Upsert(ctx context.Context, item *CartItem) (*CartItem, error)

	// Save updates an existing line
	Save(ctx context.Context, item *CartItem) error

	// Delete removes a line
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByCartID removes every line of a cart, used on checkout
	DeleteByCartID(ctx context.Context, cartID uuid.UUID) error
}
