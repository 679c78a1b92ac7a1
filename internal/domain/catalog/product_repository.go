package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSortField selects the ordering column for product search
type ProductSortField string

const (
	ProductSortByPrice     ProductSortField = "price"
	ProductSortByCreatedAt ProductSortField = "created_at"
	// ProductSortDefault orders by id descending, which tracks insertion
	// order, so the newest products come first.
	ProductSortDefault ProductSortField = ""
)

// SearchCriteria describes a paginated product search.
// Only active products are ever returned.
type SearchCriteria struct {
	Keyword    string
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     ProductSortField
	SortAsc    bool
	Page       int
	PageSize   int
}

// ProductRepository defines the interface for product persistence.
// Stock mutations need the two row-locking primitives: FindByIDLocked
// for pessimistic serialization and SaveWithVersionCheck for optimistic
// version-token writes.
type ProductRepository interface {
	// FindByID finds a product by its ID without locking
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDLocked finds a product and acquires an exclusive row lock
	// on it. Must run inside a transaction. Blocks until the lock is
	// granted or the configured lock wait bound expires, in which case
	// it returns shared.ErrLockTimeout.
	FindByIDLocked(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save creates or updates a product unconditionally
	Save(ctx context.Context, product *Product) error

	// SaveWithVersionCheck updates a product only if its stored version
	// still matches the version the aggregate was loaded with. Returns
	// shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithVersionCheck(ctx context.Context, product *Product) error

	// FindActiveByCategory lists active products in a category, newest first
	FindActiveByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) ([]Product, int64, error)

	// Search runs a paginated, filtered product search
	Search(ctx context.Context, criteria SearchCriteria) ([]Product, int64, error)

	// CountByCategory counts products referencing a category, any status
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}
