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

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db       *gorm.DB
	lockWait time.Duration
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db, lockWait: DefaultLockWait}
}

// NewGormCategoryRepositoryWithLockWait creates a GormCategoryRepository
// with an explicit bound on how long locked reads wait for a row lock
func NewGormCategoryRepositoryWithLockWait(db *gorm.DB, lockWait time.Duration) *GormCategoryRepository {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &GormCategoryRepository{db: db, lockWait: lockWait}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindByIDLocked acquires an exclusive row lock on the category before
// reading it. Category moves lock the moving row and the proposed
// parent so two overlapping moves serialize instead of racing the
// descendant check. The wait is bounded by lockWait via SET LOCAL
// lock_timeout, which only takes effect inside a transaction scope.
func (r *GormCategoryRepository) FindByIDLocked(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	if err := r.db.WithContext(ctx).
		Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockWait.Milliseconds())).Error; err != nil {
		return nil, err
	}

	var category catalog.Category
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&category, "id = ?", id).Error
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
	return &category, nil
}

// FindAll returns every category ordered by depth so parents come first
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Order("depth ASC, created_at ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// HasChildren checks if a category has any direct children
func (r *GormCategoryRepository) HasChildren(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Category{}).
		Where("parent_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete deletes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
