package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/store/backend/internal/domain/cart"
	"github.com/store/backend/internal/domain/catalog"
)

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// UpdateItemRequest overwrites a cart line's quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// CartItemResponse is one cart line with live product data resolved
type CartItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductStatus string          `json:"product_status"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// CartResponse is the member's cart with totals computed from live prices
type CartResponse struct {
	CartID     uuid.UUID          `json:"cart_id"`
	MemberID   uuid.UUID          `json:"member_id"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

// ToCartItemResponse builds a line view from the stored line and the
// product it references
func ToCartItemResponse(item *cart.CartItem, product *catalog.Product) CartItemResponse {
	return CartItemResponse{
		ID:            item.ID,
		ProductID:     item.ProductID,
		ProductName:   product.Name,
		ProductStatus: string(product.Status),
		Price:         product.Price,
		Quantity:      item.Quantity,
		LineTotal:     product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
	}
}
