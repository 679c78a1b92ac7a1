package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// MockEventPublisher collects published domain events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// memProductRepo is a stateful in-memory product repository. Reads hand
// out copies so aggregate mutations only become visible on save, which
// mirrors how the version check behaves against a real database.
type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product

	// lockErr is returned by FindByIDLocked when set
	lockErr error
	// beforeVersionedSave runs before SaveWithVersionCheck applies,
	// used to simulate a concurrent writer committing first
	beforeVersionedSave func(r *memProductRepo)
}

func newMemProductRepo(products ...*catalog.Product) *memProductRepo {
	repo := &memProductRepo{products: make(map[uuid.UUID]catalog.Product)}
	for _, p := range products {
		repo.products[p.ID] = *p
	}
	return repo
}

func (r *memProductRepo) get(id uuid.UUID) (*catalog.Product, error) {
	stored, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := stored
	clone.ClearDomainEvents()
	return &clone, nil
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memProductRepo) FindByIDLocked(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	return r.get(id)
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *memProductRepo) SaveWithVersionCheck(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	if hook := r.beforeVersionedSave; hook != nil {
		r.beforeVersionedSave = nil
		r.mu.Unlock()
		hook(r)
		r.mu.Lock()
	}
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.products[product.ID] = *product
	return nil
}

func (r *memProductRepo) FindActiveByCategory(context.Context, uuid.UUID, int, int) ([]catalog.Product, int64, error) {
	return nil, 0, nil
}

func (r *memProductRepo) Search(context.Context, catalog.SearchCriteria) ([]catalog.Product, int64, error) {
	return nil, 0, nil
}

func (r *memProductRepo) CountByCategory(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

var _ catalog.ProductRepository = (*memProductRepo)(nil)

func newTestProduct(t *testing.T, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), "Mechanical Keyboard", "87 keys", decimal.NewFromInt(59), stock, nil)
	require.NoError(t, err)
	product.ClearDomainEvents()
	return product
}

func newTestService(repo *memProductRepo) (*InventoryService, *MockEventPublisher) {
	scope := NewNoOpTransactionScope(repo, nil, nil, nil, nil)
	svc := NewInventoryService(scope, nil)
	publisher := NewMockEventPublisher()
	svc.SetEventPublisher(publisher)
	return svc, publisher
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestInventoryService_DecreaseStock(t *testing.T) {
	ctx := context.Background()

	t.Run("pessimistic decrease", func(t *testing.T) {
		product := newTestProduct(t, 10)
		repo := newMemProductRepo(product)
		svc, publisher := newTestService(repo)

		resp, err := svc.DecreaseStock(ctx, product.ID, 3, catalog.LockPessimistic)
		require.NoError(t, err)
		assert.Equal(t, 7, resp.StockQuantity)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, 2, resp.Version)

		events := publisher.GetEventsByType(catalog.EventTypeStockDecreased)
		require.Len(t, events, 1)
	})

	t.Run("empty mode defaults to pessimistic", func(t *testing.T) {
		product := newTestProduct(t, 10)
		repo := newMemProductRepo(product)
		repo.lockErr = shared.ErrLockTimeout
		svc, _ := newTestService(repo)

		_, err := svc.DecreaseStock(ctx, product.ID, 1, "")
		assertDomainCode(t, err, "LOCK_TIMEOUT")
	})

	t.Run("taking the last unit flips sold_out", func(t *testing.T) {
		product := newTestProduct(t, 2)
		repo := newMemProductRepo(product)
		svc, _ := newTestService(repo)

		resp, err := svc.DecreaseStock(ctx, product.ID, 2, catalog.LockPessimistic)
		require.NoError(t, err)
		assert.Equal(t, 0, resp.StockQuantity)
		assert.Equal(t, "sold_out", resp.Status)
	})

	t.Run("second buyer of the last unit is rejected", func(t *testing.T) {
		product := newTestProduct(t, 1)
		repo := newMemProductRepo(product)
		svc, _ := newTestService(repo)

		_, err := svc.DecreaseStock(ctx, product.ID, 1, catalog.LockPessimistic)
		require.NoError(t, err)

		_, err = svc.DecreaseStock(ctx, product.ID, 1, catalog.LockPessimistic)
		assertDomainCode(t, err, "INSUFFICIENT_STOCK")

		stored, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.StockQuantity)
	})

	t.Run("optimistic decrease succeeds without contention", func(t *testing.T) {
		product := newTestProduct(t, 5)
		repo := newMemProductRepo(product)
		svc, _ := newTestService(repo)

		resp, err := svc.DecreaseStock(ctx, product.ID, 2, catalog.LockOptimistic)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.StockQuantity)
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("optimistic decrease loses the race", func(t *testing.T) {
		product := newTestProduct(t, 5)
		repo := newMemProductRepo(product)
		svc, _ := newTestService(repo)

		// A competing writer commits its own decrement between this
		// request's read and its version-checked write.
		repo.beforeVersionedSave = func(r *memProductRepo) {
			winner, err := r.FindByID(ctx, product.ID)
			require.NoError(t, err)
			require.NoError(t, winner.DecreaseStock(3))
			require.NoError(t, r.Save(ctx, winner))
		}

		_, err := svc.DecreaseStock(ctx, product.ID, 3, catalog.LockOptimistic)
		assertDomainCode(t, err, "CONCURRENT_MODIFICATION")

		// Only the winner's write landed.
		stored, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.StockQuantity)
		assert.Equal(t, 2, stored.Version)

		// A retry sees the fresh state and plays by the normal rules.
		_, err = svc.DecreaseStock(ctx, product.ID, 3, catalog.LockOptimistic)
		assertDomainCode(t, err, "INSUFFICIENT_STOCK")
	})

	t.Run("lock wait bound exceeded", func(t *testing.T) {
		product := newTestProduct(t, 5)
		repo := newMemProductRepo(product)
		repo.lockErr = shared.ErrLockTimeout
		svc, _ := newTestService(repo)

		_, err := svc.DecreaseStock(ctx, product.ID, 1, catalog.LockPessimistic)
		assertDomainCode(t, err, "LOCK_TIMEOUT")

		// Optimistic reads are not affected by the row lock.
		_, err = svc.DecreaseStock(ctx, product.ID, 1, catalog.LockOptimistic)
		require.NoError(t, err)
	})

	t.Run("unknown lock mode", func(t *testing.T) {
		product := newTestProduct(t, 5)
		svc, _ := newTestService(newMemProductRepo(product))

		_, err := svc.DecreaseStock(ctx, product.ID, 1, catalog.LockMode("hopeful"))
		assertDomainCode(t, err, "INVALID_ARGUMENT")
	})

	t.Run("deleted product", func(t *testing.T) {
		product := newTestProduct(t, 5)
		require.NoError(t, product.Delete())
		product.ClearDomainEvents()
		svc, _ := newTestService(newMemProductRepo(product))

		_, err := svc.DecreaseStock(ctx, product.ID, 1, catalog.LockPessimistic)
		assertDomainCode(t, err, "CONFLICT")
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _ := newTestService(newMemProductRepo())

		_, err := svc.DecreaseStock(ctx, uuid.New(), 1, catalog.LockPessimistic)
		assertDomainCode(t, err, "NOT_FOUND")
	})
}

func TestInventoryService_IncreaseStock(t *testing.T) {
	ctx := context.Background()

	t.Run("restock reactivates sold_out product", func(t *testing.T) {
		product := newTestProduct(t, 1)
		repo := newMemProductRepo(product)
		svc, publisher := newTestService(repo)

		_, err := svc.DecreaseStock(ctx, product.ID, 1, catalog.LockPessimistic)
		require.NoError(t, err)

		resp, err := svc.IncreaseStock(ctx, product.ID, 4, catalog.LockPessimistic)
		require.NoError(t, err)
		assert.Equal(t, 4, resp.StockQuantity)
		assert.Equal(t, "active", resp.Status)

		events := publisher.GetEventsByType(catalog.EventTypeStockIncreased)
		require.Len(t, events, 1)
	})

	t.Run("optimistic restock", func(t *testing.T) {
		product := newTestProduct(t, 2)
		repo := newMemProductRepo(product)
		svc, _ := newTestService(repo)

		resp, err := svc.IncreaseStock(ctx, product.ID, 3, catalog.LockOptimistic)
		require.NoError(t, err)
		assert.Equal(t, 5, resp.StockQuantity)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		product := newTestProduct(t, 2)
		svc, _ := newTestService(newMemProductRepo(product))

		_, err := svc.IncreaseStock(ctx, product.ID, 0, catalog.LockPessimistic)
		assertDomainCode(t, err, "INVALID_ARGUMENT")
	})
}

func TestInventoryService_GetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("returns current state", func(t *testing.T) {
		product := newTestProduct(t, 7)
		svc, _ := newTestService(newMemProductRepo(product))

		resp, err := svc.GetStock(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, resp.ProductID)
		assert.Equal(t, 7, resp.StockQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _ := newTestService(newMemProductRepo())

		_, err := svc.GetStock(ctx, uuid.New())
		assertDomainCode(t, err, "NOT_FOUND")
	})
}
