package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/store/backend/internal/domain/cart"
	"github.com/store/backend/internal/domain/shared"
)

func newMockCartRepos(t *testing.T) (*GormCartRepository, *GormCartItemRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormCartRepository(gormDB), NewGormCartItemRepository(gormDB), mock, mockDB
}

func cartItemColumns() []string {
	return []string{"id", "created_at", "updated_at", "cart_id", "product_id", "quantity"}
}

func TestGormCartRepository_GetOrCreate(t *testing.T) {
	t.Run("creates cart on first use", func(t *testing.T) {
		repo, _, mock, mockDB := newMockCartRepos(t)
		defer mockDB.Close()

		memberID := uuid.New()
		mock.ExpectExec(`INSERT INTO "carts" .* ON CONFLICT \("member_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, err := repo.GetOrCreate(context.Background(), memberID)
		require.NoError(t, err)
		assert.Equal(t, memberID, c.MemberID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("losing the insert race falls back to the existing cart", func(t *testing.T) {
		repo, _, mock, mockDB := newMockCartRepos(t)
		defer mockDB.Close()

		memberID := uuid.New()
		existingID := uuid.New()
		now := time.Now()

		mock.ExpectExec(`INSERT INTO "carts" .* ON CONFLICT \("member_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "carts" WHERE member_id = \$1`).
			WithArgs(memberID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "member_id"}).
				AddRow(existingID, now, now, memberID))

		c, err := repo.GetOrCreate(context.Background(), memberID)
		require.NoError(t, err)
		assert.Equal(t, existingID, c.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartItemRepository_Upsert(t *testing.T) {
	t.Run("merges quantity in the database on conflict", func(t *testing.T) {
		_, repo, mock, mockDB := newMockCartRepos(t)
		defer mockDB.Close()

		cartID := uuid.New()
		productID := uuid.New()
		item, err := cart.NewCartItem(cartID, productID, 3)
		require.NoError(t, err)

		now := time.Now()
		mock.ExpectExec(`INSERT INTO "cart_items" .* ON CONFLICT \("cart_id","product_id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// The merged line already held 2 units, so the re-read sees 5
		mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2`).
			WithArgs(cartID, productID, 1).
			WillReturnRows(sqlmock.NewRows(cartItemColumns()).
				AddRow(uuid.New(), now, now, cartID, productID, 5))

		merged, err := repo.Upsert(context.Background(), item)
		require.NoError(t, err)
		assert.Equal(t, 5, merged.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartItemRepository_Delete(t *testing.T) {
	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		_, repo, mock, mockDB := newMockCartRepos(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`DELETE FROM "cart_items" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deletes existing line", func(t *testing.T) {
		_, repo, mock, mockDB := newMockCartRepos(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`DELETE FROM "cart_items" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), id))
	})
}
