package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/store/backend/internal/domain/catalog"
)

// StockAdjustmentRequest describes a stock change request
type StockAdjustmentRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	LockMode string `json:"lock_mode" binding:"omitempty,oneof=pessimistic optimistic"`
}

// StockResponse is the product stock state after an adjustment
type StockResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Status        string          `json:"status"`
	Version       int             `json:"version"`
}

// ToStockResponse converts a product to its stock view
func ToStockResponse(p *catalog.Product) StockResponse {
	return StockResponse{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
		Version:       p.Version,
	}
}
