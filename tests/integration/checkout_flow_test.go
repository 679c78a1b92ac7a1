package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cartapp "github.com/store/backend/internal/application/cart"
	memberapp "github.com/store/backend/internal/application/member"
	orderapp "github.com/store/backend/internal/application/order"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/member"
	"github.com/store/backend/internal/domain/shared"
	"github.com/store/backend/internal/infrastructure/auth"
	"github.com/store/backend/internal/infrastructure/config"
	"github.com/store/backend/internal/infrastructure/persistence"
)

type storeServices struct {
	members *memberapp.MemberService
	carts   *cartapp.CartService
	orders  *orderapp.OrderService
}

func newStoreServices(tdb *TestDB) storeServices {
	log := zap.NewNop()
	productRepo := persistence.NewGormProductRepository(tdb.DB)
	cartRepo := persistence.NewGormCartRepository(tdb.DB)
	cartItemRepo := persistence.NewGormCartItemRepository(tdb.DB)
	orderRepo := persistence.NewGormOrderRepository(tdb.DB)
	memberRepo := persistence.NewGormMemberRepository(tdb.DB)
	scope := persistence.NewGormTransactionScope(tdb.DB, persistence.DefaultLockWait)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-test-secret-key-0123456789",
		AccessTokenExpiration: time.Hour,
		Issuer:                "store-backend-test",
	})

	return storeServices{
		members: memberapp.NewMemberService(memberRepo, jwtService, log),
		carts:   cartapp.NewCartService(cartRepo, cartItemRepo, productRepo, log),
		orders:  orderapp.NewOrderService(scope, orderRepo, log),
	}
}

// Full buyer journey: register, fill the cart, check out, cancel.
func TestCheckoutFlow(t *testing.T) {
	tdb := NewTestDB(t)
	svcs := newStoreServices(tdb)
	ctx := context.Background()

	seller := tdb.SeedMember("flow-seller@example.com", string(member.RoleSeller))
	keyboard := tdb.SeedProduct(seller.ID, "Keyboard", "49.90", 10)
	mouse := tdb.SeedProduct(seller.ID, "Mouse", "19.90", 5)

	buyer, err := svcs.members.Register(ctx, memberapp.RegisterRequest{
		Email:    "flow-buyer@example.com",
		Password: "buyer-password-1",
		Name:     "Flow Buyer",
	})
	require.NoError(t, err)

	login, err := svcs.members.Login(ctx, memberapp.LoginRequest{
		Email:    "flow-buyer@example.com",
		Password: "buyer-password-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	// two adds of the same product merge into one line
	_, err = svcs.carts.AddItem(ctx, buyer.ID, cartapp.AddItemRequest{ProductID: keyboard.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svcs.carts.AddItem(ctx, buyer.ID, cartapp.AddItemRequest{ProductID: keyboard.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svcs.carts.AddItem(ctx, buyer.ID, cartapp.AddItemRequest{ProductID: mouse.ID, Quantity: 3})
	require.NoError(t, err)

	cart, err := svcs.carts.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.TotalPrice.Equal(decimal.RequireFromString("159.50")))

	placed, err := svcs.orders.PlaceFromCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "ordered", placed.Status)
	assert.True(t, placed.TotalPrice.Equal(decimal.RequireFromString("159.50")))
	require.Len(t, placed.Items, 2)

	// checkout emptied the cart and decremented stock
	cart, err = svcs.carts.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var stocked catalog.Product
	require.NoError(t, tdb.DB.First(&stocked, "id = ?", keyboard.ID).Error)
	assert.Equal(t, 8, stocked.StockQuantity)

	cancelled, err := svcs.orders.Cancel(ctx, buyer.ID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	require.NoError(t, tdb.DB.First(&stocked, "id = ?", keyboard.ID).Error)
	assert.Equal(t, 10, stocked.StockQuantity)

	// cancel is terminal
	_, err = svcs.orders.Cancel(ctx, buyer.ID, placed.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

// Two buyers racing for the last units. Whoever commits second must be
// rejected atomically with the cart left intact.
func TestCheckout_ConcurrentLastUnits(t *testing.T) {
	tdb := NewTestDB(t)
	svcs := newStoreServices(tdb)
	ctx := context.Background()

	seller := tdb.SeedMember("race-seller@example.com", string(member.RoleSeller))
	product := tdb.SeedProduct(seller.ID, "Limited Edition", "99.00", 3)

	buyerA := tdb.SeedMember("race-buyer-a@example.com", string(member.RoleBuyer))
	buyerB := tdb.SeedMember("race-buyer-b@example.com", string(member.RoleBuyer))

	_, err := svcs.carts.AddItem(ctx, buyerA.ID, cartapp.AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svcs.carts.AddItem(ctx, buyerB.ID, cartapp.AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, buyer := range []*member.Member{buyerA, buyerB} {
		wg.Add(1)
		go func(m *member.Member) {
			defer wg.Done()
			_, err := svcs.orders.PlaceFromCart(ctx, m.ID)
			results <- err
		}(buyer)
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		rejected++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	var stocked catalog.Product
	require.NoError(t, tdb.DB.First(&stocked, "id = ?", product.ID).Error)
	assert.Equal(t, 1, stocked.StockQuantity)
}
