package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	appinv "github.com/store/backend/internal/application/inventory"
	"github.com/store/backend/internal/domain/cart"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/order"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations. Row
// locks taken inside the scope, including the bounded pessimistic
// product lock, are released when the transaction commits or rolls back.
type GormTransactionScope struct {
	db       *gorm.DB
	lockWait time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, lockWait time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, lockWait: lockWait}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, lockWait: s.lockWait}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to repositories bound
// to one transaction.
type gormTransactionalRepositories struct {
	tx       *gorm.DB
	lockWait time.Duration
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepositoryWithLockWait(r.tx, r.lockWait)
}

// CategoryRepo returns the category repository scoped to the current transaction
func (r *gormTransactionalRepositories) CategoryRepo() catalog.CategoryRepository {
	return NewGormCategoryRepositoryWithLockWait(r.tx, r.lockWait)
}

// CartRepo returns the cart repository scoped to the current transaction
func (r *gormTransactionalRepositories) CartRepo() cart.CartRepository {
	return NewGormCartRepository(r.tx)
}

// CartItemRepo returns the cart item repository scoped to the current transaction
func (r *gormTransactionalRepositories) CartItemRepo() cart.CartItemRepository {
	return NewGormCartItemRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
