package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/store/backend/internal/domain/cart"
	"github.com/store/backend/internal/domain/shared"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByMemberID finds a member's cart
func (r *GormCartRepository) FindByMemberID(ctx context.Context, memberID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).First(&c, "member_id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetOrCreate returns the member's cart, creating it on first use.
// ON CONFLICT on the member_id unique index makes concurrent first
// adds converge on a single row.
func (r *GormCartRepository) GetOrCreate(ctx context.Context, memberID uuid.UUID) (*cart.Cart, error) {
	c := cart.NewCart(memberID)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoNothing: true,
		}).
		Create(c)
	if result.Error != nil {
		return nil, result.Error
	}

	// The insert lost the race, fetch the winner's row
	if result.RowsAffected == 0 {
		return r.FindByMemberID(ctx, memberID)
	}
	return c, nil
}

// Ensure GormCartRepository implements CartRepository
var _ cart.CartRepository = (*GormCartRepository)(nil)

// GormCartItemRepository implements CartItemRepository using GORM
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewGormCartItemRepository creates a new GormCartItemRepository
func NewGormCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// FindByID finds a cart item by its ID
func (r *GormCartItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCartID lists all lines of a cart, oldest first
func (r *GormCartItemRepository) FindByCartID(ctx context.Context, cartID uuid.UUID) ([]cart.CartItem, error) {
	var items []cart.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert inserts the line or atomically merges the quantity onto the
// existing line for the same (cart, product) pair. The merge happens
// in the database via ON CONFLICT, so the existence check and the
// update cannot race: two concurrent adds yield one line with the
// summed quantity.
func (r *GormCartItemRepository) Upsert(ctx context.Context, item *cart.CartItem) (*cart.CartItem, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(item).Error
	if err != nil {
		return nil, err
	}

	// Re-read to observe the merged quantity when the insert hit an
	// existing line.
	var merged cart.CartItem
	if err := r.db.WithContext(ctx).
		First(&merged, "cart_id = ? AND product_id = ?", item.CartID, item.ProductID).Error; err != nil {
		return nil, err
	}
	return &merged, nil
}

// Save updates an existing line
func (r *GormCartItemRepository) Save(ctx context.Context, item *cart.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes a line
func (r *GormCartItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&cart.CartItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByCartID removes every line of a cart
func (r *GormCartItemRepository) DeleteByCartID(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&cart.CartItem{}, "cart_id = ?", cartID).Error
}

// Ensure GormCartItemRepository implements CartItemRepository
var _ cart.CartItemRepository = (*GormCartItemRepository)(nil)
