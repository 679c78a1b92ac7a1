package inventory

import (
	"context"

	"github.com/store/backend/internal/domain/cart"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories a
// stock mutation or checkout touches. When a function is executed within
// a scope, all repository operations are part of the same database
// transaction and commit or roll back atomically. Row locks acquired
// inside the scope are held until it ends.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories bound to one
// transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - ProductRepo: Product is the aggregate root for stock. All stock
//     changes go through it, either under a row lock or a version check.
//   - CategoryRepo: category moves lock the moving row and the proposed
//     parent before the cycle check, so overlapping moves serialize.
//   - CartRepo / CartItemRepo: Cart and its items are persisted through
//     separate repositories because item upserts bypass the aggregate
//     for atomic merge semantics.
//   - OrderRepo: Order owns its items; they are saved through the root.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// CategoryRepo returns the category repository scoped to the current transaction
	CategoryRepo() catalog.CategoryRepository
	// CartRepo returns the cart repository scoped to the current transaction
	CartRepo() cart.CartRepository
	// CartItemRepo returns the cart item repository scoped to the current transaction
	CartItemRepo() cart.CartItemRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
}

// NoOpTransactionScope runs the function against fixed repositories
// without a real transaction. Useful in tests.
type NoOpTransactionScope struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	cartRepo     cart.CartRepository
	cartItemRepo cart.CartItemRepository
	orderRepo    order.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	cartRepo cart.CartRepository,
	cartItemRepo cart.CartItemRepository,
	orderRepo order.OrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		orderRepo:    orderRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// CategoryRepo returns the category repository.
func (s *NoOpTransactionScope) CategoryRepo() catalog.CategoryRepository {
	return s.categoryRepo
}

// CartRepo returns the cart repository.
func (s *NoOpTransactionScope) CartRepo() cart.CartRepository {
	return s.cartRepo
}

// CartItemRepo returns the cart item repository.
func (s *NoOpTransactionScope) CartItemRepo() cart.CartItemRepository {
	return s.cartItemRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
