package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/store/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive  ProductStatus = "active"
	ProductStatusSoldOut ProductStatus = "sold_out"
	ProductStatusDeleted ProductStatus = "deleted"
)

// Product represents a sellable product in the catalog.
// It is the aggregate root for product and inventory operations: stock
// and status change only through its methods, so the status machine
// (active to sold_out when stock hits zero, sold_out back to active on
// restock, deleted as terminal) cannot be bypassed.
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active';index"`
	SellerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(sellerID uuid.UUID, name, description string, price decimal.Decimal, stock int, categoryID *uuid.UUID) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Product price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Product stock cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Price:             price,
		StockQuantity:     stock,
		Status:            ProductStatusActive,
		SellerID:          sellerID,
		CategoryID:        categoryID,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// DecreaseStock removes qty units from stock. Stock never goes
// negative: a request for more than is available fails and leaves the
// product untouched. Reaching exactly zero flips status to sold_out.
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Decrease quantity must be positive")
	}
	if p.Status == ProductStatusDeleted {
		return shared.NewDomainError("CONFLICT", "Cannot decrease stock of a deleted product")
	}
	if qty > p.StockQuantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Requested %d units but only %d available", qty, p.StockQuantity))
	}

	p.StockQuantity -= qty
	if p.StockQuantity == 0 {
		p.Status = ProductStatusSoldOut
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockDecreasedEvent(p, qty))

	return nil
}

// IncreaseStock adds qty units to stock. Any restock reactivates a
// sold_out product. A deleted product keeps its stock adjustable for
// bookkeeping but its status never leaves deleted.
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Increase quantity must be positive")
	}

	p.StockQuantity += qty
	if p.Status == ProductStatusSoldOut {
		p.Status = ProductStatusActive
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockIncreasedEvent(p, qty))

	return nil
}

// UpdateInfo overwrites the administrative fields of the product.
// Stock set through here is an absolute correction, not a delta; the
// sold_out flag is realigned with the new stock level.
func (p *Product) UpdateInfo(name, description string, price decimal.Decimal, stock int) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_ARGUMENT", "Product price cannot be negative")
	}
	if stock < 0 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Product stock cannot be negative")
	}
	if p.Status == ProductStatusDeleted {
		return shared.NewDomainError("CONFLICT", "Cannot update a deleted product")
	}

	p.Name = name
	p.Description = description
	p.Price = price
	p.StockQuantity = stock
	if stock == 0 {
		p.Status = ProductStatusSoldOut
	} else {
		p.Status = ProductStatusActive
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetCategory assigns the product to a category, or detaches it when nil
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// Delete soft-deletes the product. The deleted status is terminal.
func (p *Product) Delete() error {
	if p.Status == ProductStatusDeleted {
		return shared.NewDomainError("CONFLICT", "Product is already deleted")
	}

	p.Status = ProductStatusDeleted
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductDeletedEvent(p))

	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsDeleted returns true if the product is soft-deleted
func (p *Product) IsDeleted() bool {
	return p.Status == ProductStatusDeleted
}

// IsOwnedBy returns true if the product belongs to the given seller
func (p *Product) IsOwnedBy(sellerID uuid.UUID) bool {
	return p.SellerID == sellerID
}

// HasCategory returns true if the product has a category assigned
func (p *Product) HasCategory() bool {
	return p.CategoryID != nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ARGUMENT", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Product name cannot exceed 200 characters")
	}
	return nil
}
