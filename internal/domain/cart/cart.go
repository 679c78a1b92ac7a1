package cart

import (
	"github.com/google/uuid"

	"github.com/store/backend/internal/domain/shared"
)

// Cart is a member's shopping cart. Every member has at most one cart,
// created lazily on the first add. The cart itself carries no totals:
// lines store only product id and quantity, and prices are resolved
// live at read time.
type Cart struct {
	shared.BaseEntity
	MemberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates a cart for a member
func NewCart(memberID uuid.UUID) *Cart {
	return &Cart{
		BaseEntity: shared.NewBaseEntity(),
		MemberID:   memberID,
	}
}

// IsOwnedBy returns true if the cart belongs to the given member
func (c *Cart) IsOwnedBy(memberID uuid.UUID) bool {
	return c.MemberID == memberID
}
