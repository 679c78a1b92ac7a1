package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/store/backend/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest represents a request to rename or move a category.
// ParentID moves the category under a new parent; MoveToRoot promotes it
// to a root. Setting both is rejected.
type UpdateCategoryRequest struct {
	Name       *string    `json:"name" binding:"omitempty,min=1,max=100"`
	ParentID   *uuid.UUID `json:"parent_id"`
	MoveToRoot bool       `json:"move_to_root"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Depth     int        `json:"depth"`
	ParentID  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// CategoryTreeResponse is a category with its children, nested
type CategoryTreeResponse struct {
	ID       uuid.UUID               `json:"id"`
	Name     string                  `json:"name"`
	Depth    int                     `json:"depth"`
	ParentID *uuid.UUID              `json:"parent_id"`
	Children []*CategoryTreeResponse `json:"children"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Depth:     c.Depth,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

// UpdateProductRequest overwrites the product's administrative fields.
// All values are absolute, not deltas. ClearCategory detaches the
// product from its category.
type UpdateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   string          `json:"description" binding:"max=2000"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	Stock         int             `json:"stock" binding:"min=0"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	ClearCategory bool            `json:"clear_category"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Status        string          `json:"status"`
	SellerID      uuid.UUID       `json:"seller_id"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ProductDetailResponse is a product with its category name resolved
type ProductDetailResponse struct {
	ProductResponse
	CategoryName string `json:"category_name"`
}

// ProductListResponse is the compact product representation for listings
type ProductListResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Status        string          `json:"status"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SearchRequest represents a paginated product search
type SearchRequest struct {
	Keyword    string           `form:"keyword"`
	CategoryID *uuid.UUID       `form:"category_id"`
	SellerID   *uuid.UUID       `form:"seller_id"`
	MinPrice   *decimal.Decimal `form:"min_price"`
	MaxPrice   *decimal.Decimal `form:"max_price"`
	SortBy     string           `form:"sort_by" binding:"omitempty,oneof=price created_at"`
	SortDir    string           `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
	Page       int              `form:"page" binding:"omitempty,min=1"`
	PageSize   int              `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
		SellerID:      p.SellerID,
		CategoryID:    p.CategoryID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToProductListResponse converts a domain Product to ProductListResponse
func ToProductListResponse(p *catalog.Product) ProductListResponse {
	return ProductListResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
		CategoryID:    p.CategoryID,
		CreatedAt:     p.CreatedAt,
	}
}

// ToProductListResponses converts a slice of domain Products
func ToProductListResponses(products []catalog.Product) []ProductListResponse {
	responses := make([]ProductListResponse, len(products))
	for i := range products {
		responses[i] = ToProductListResponse(&products[i])
	}
	return responses
}
