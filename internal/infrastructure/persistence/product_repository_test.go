package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func productColumns() []string {
	return []string{"id", "created_at", "updated_at", "version", "name", "description", "price", "stock_quantity", "status", "seller_id", "category_id"}
}

func productRow(id uuid.UUID, stock int, version int) []driverValue {
	now := time.Now()
	return []driverValue{id, now, now, version, "Keyboard", "Mechanical keyboard", "50000", stock, "active", uuid.New(), nil}
}

type driverValue = driver.Value

func addProductRow(rows *sqlmock.Rows, values []driverValue) *sqlmock.Rows {
	return rows.AddRow(values...)
}

func TestGormProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		rows := addProductRow(sqlmock.NewRows(productColumns()), productRow(id, 10, 1))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.Equal(t, 10, product.StockQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		_, err := repo.FindByID(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindByIDLocked(t *testing.T) {
	t.Run("bounds the wait and locks the row for update", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`SET LOCAL lock_timeout`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		rows := addProductRow(sqlmock.NewRows(productColumns()), productRow(id, 5, 1))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .* FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		product, err := repo.FindByIDLocked(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("translates lock_timeout expiry into ErrLockTimeout", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`SET LOCAL lock_timeout`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .* FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnError(&pgconn.PgError{Code: pgLockNotAvailable, Message: "canceling statement due to lock timeout"})

		_, err := repo.FindByIDLocked(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrLockTimeout)
	})

	t.Run("returns ErrNotFound for missing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`SET LOCAL lock_timeout`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .* FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		_, err := repo.FindByIDLocked(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_SaveWithVersionCheck(t *testing.T) {
	newVersionedProduct := func(t *testing.T) *catalog.Product {
		t.Helper()
		product, err := catalog.NewProduct(uuid.New(), "Keyboard", "Mechanical keyboard", decimal.NewFromInt(50000), 10, nil)
		require.NoError(t, err)
		return product
	}

	t.Run("updates when stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newVersionedProduct(t)
		require.NoError(t, product.DecreaseStock(3)) // version 1 -> 2

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithVersionCheck(context.Background(), product)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrConcurrencyConflict when another writer won", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newVersionedProduct(t)
		require.NoError(t, product.DecreaseStock(3))

		// Zero rows affected: the WHERE version = n-1 predicate missed
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithVersionCheck(context.Background(), product)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newVersionedProduct(t)
		require.NoError(t, product.DecreaseStock(3))

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnError(assert.AnError)

		err := repo.SaveWithVersionCheck(context.Background(), product)
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormProductRepository_Search(t *testing.T) {
	t.Run("filters to active products and counts", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE status = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		rows := addProductRow(sqlmock.NewRows(productColumns()), productRow(uuid.New(), 10, 1))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 ORDER BY id DESC`).
			WillReturnRows(rows)

		products, total, err := repo.Search(context.Background(), catalog.SearchCriteria{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies keyword and price range filters", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		minPrice := decimal.NewFromInt(1000)
		maxPrice := decimal.NewFromInt(90000)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE status = \$1 AND \(name ILIKE \$2 OR description ILIKE \$3\) AND price >= \$4 AND price <= \$5`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1`).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		_, total, err := repo.Search(context.Background(), catalog.SearchCriteria{
			Keyword:  "keyboard",
			MinPrice: &minPrice,
			MaxPrice: &maxPrice,
			Page:     1,
			PageSize: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("orders by price ascending when requested", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 ORDER BY price ASC`).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		_, _, err := repo.Search(context.Background(), catalog.SearchCriteria{
			SortBy:   catalog.ProductSortByPrice,
			SortAsc:  true,
			Page:     1,
			PageSize: 20,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSearchOrder(t *testing.T) {
	t.Run("defaults to id descending", func(t *testing.T) {
		assert.Equal(t, "id DESC", searchOrder(catalog.SearchCriteria{}))
	})

	t.Run("rejects unlisted sort fields", func(t *testing.T) {
		assert.Equal(t, "id DESC", searchOrder(catalog.SearchCriteria{SortBy: catalog.ProductSortField("seller_id; DROP TABLE products")}))
	})

	t.Run("honors price and created_at", func(t *testing.T) {
		assert.Equal(t, "price ASC", searchOrder(catalog.SearchCriteria{SortBy: catalog.ProductSortByPrice, SortAsc: true}))
		assert.Equal(t, "created_at DESC", searchOrder(catalog.SearchCriteria{SortBy: catalog.ProductSortByCreatedAt}))
	})
}
