package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByMemberID lists a member's orders, newest first
	FindByMemberID(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]Order, int64, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, order *Order) error
}
