package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/store/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a placed checkout. Unlike cart lines, order lines snapshot
// the product name and unit price at the moment of purchase, so later
// price changes never rewrite history.
type Order struct {
	shared.BaseAggregateRoot
	MemberID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status     OrderStatus     `gorm:"type:varchar(20);not null;default:'ordered'"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one purchased line with price and name snapshots
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Line describes one purchase used to build an order
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

// NewOrder creates an order from purchased lines and computes the total
func NewOrder(memberID uuid.UUID, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Order must contain at least one line")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MemberID:          memberID,
		Status:            OrderStatusOrdered,
		TotalPrice:        decimal.Zero,
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ARGUMENT", "Order line quantity must be positive")
		}
		item := OrderItem{
			BaseEntity:  shared.NewBaseEntity(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
		}
		order.Items = append(order.Items, item)
		order.TotalPrice = order.TotalPrice.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return order, nil
}

// Cancel marks the order cancelled. Stock restoration is the caller's
// job; the aggregate only guards the state transition.
func (o *Order) Cancel() error {
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("CONFLICT", "Order is already cancelled")
	}

	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// IsOwnedBy returns true if the order belongs to the given member
func (o *Order) IsOwnedBy(memberID uuid.UUID) bool {
	return o.MemberID == memberID
}
