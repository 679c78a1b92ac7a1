package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// pgLockNotAvailable is the Postgres error code raised when a
// lock_timeout expires while waiting for a row lock.
const pgLockNotAvailable = "55P03"

// DefaultLockWait bounds how long a pessimistic decrement waits on a
// contended row before surfacing a retryable lock timeout.
const DefaultLockWait = 3 * time.Second

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db       *gorm.DB
	lockWait time.Duration
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db, lockWait: DefaultLockWait}
}

// NewGormProductRepositoryWithLockWait creates a repository with a custom lock wait bound
func NewGormProductRepositoryWithLockWait(db *gorm.DB, lockWait time.Duration) *GormProductRepository {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &GormProductRepository{db: db, lockWait: lockWait}
}

// FindByID finds a product by its ID without locking
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDLocked acquires an exclusive row lock on the product before
// reading it, so concurrent decrements serialize in lock-acquisition
// order. The wait is bounded by lockWait via SET LOCAL lock_timeout,
// which only takes effect when the repository runs inside a
// transaction scope.
func (r *GormProductRepository) FindByIDLocked(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if err := r.db.WithContext(ctx).
		Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockWait.Milliseconds())).Error; err != nil {
		return nil, err
	}

	var product catalog.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return nil, shared.ErrLockTimeout
		}
		return nil, err
	}
	return &product, nil
}

// Save creates or updates a product unconditionally
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// SaveWithVersionCheck updates the product only if the stored version
// still matches the version the aggregate was loaded with. The domain
// mutation has already incremented the in-memory version, so the match
// runs against version-1. Zero affected rows means another writer
// committed in between.
func (r *GormProductRepository) SaveWithVersionCheck(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(product).
		Where("id = ? AND version = ?", product.ID, product.Version-1).
		Updates(map[string]interface{}{
			"name":           product.Name,
			"description":    product.Description,
			"price":          product.Price,
			"stock_quantity": product.StockQuantity,
			"status":         product.Status,
			"category_id":    product.CategoryID,
			"version":        product.Version,
			"updated_at":     product.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindActiveByCategory lists active products in a category, newest first
func (r *GormProductRepository) FindActiveByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("category_id = ? AND status = ?", categoryID, catalog.ProductStatusActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	if err := query.
		Order("id DESC").
		Offset(pageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search runs a paginated, filtered product search over active products
func (r *GormProductRepository) Search(ctx context.Context, criteria catalog.SearchCriteria) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("status = ?", catalog.ProductStatusActive)

	if criteria.Keyword != "" {
		pattern := "%" + criteria.Keyword + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if criteria.CategoryID != nil {
		query = query.Where("category_id = ?", *criteria.CategoryID)
	}
	if criteria.SellerID != nil {
		query = query.Where("seller_id = ?", *criteria.SellerID)
	}
	if criteria.MinPrice != nil {
		query = query.Where("price >= ?", *criteria.MinPrice)
	}
	if criteria.MaxPrice != nil {
		query = query.Where("price <= ?", *criteria.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	if err := query.
		Order(searchOrder(criteria)).
		Offset(pageOffset(criteria.Page, criteria.PageSize)).
		Limit(criteria.PageSize).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// CountByCategory counts products referencing a category, any status
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// searchOrder builds the ORDER BY clause for a search, defaulting to
// newest first by identifier.
func searchOrder(criteria catalog.SearchCriteria) string {
	field := ValidateSortField(string(criteria.SortBy), ProductSortFields, "id")
	if field == "id" {
		return "id DESC"
	}
	dir := "DESC"
	if criteria.SortAsc {
		dir = "ASC"
	}
	return field + " " + dir
}

func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
