package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingInvalidator records invalidated product ids
type countingInvalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (c *countingInvalidator) Invalidate(_ context.Context, productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, productID)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("creates active product", func(t *testing.T) {
		repo := newMemCatalogProductRepo()
		svc := NewProductService(repo, newMemCategoryRepo(), nil)

		resp, err := svc.Create(ctx, sellerID, CreateProductRequest{
			Name:  "Phone X",
			Price: decimal.NewFromInt(499),
			Stock: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, sellerID, resp.SellerID)
		assert.Equal(t, 10, resp.StockQuantity)
		assert.Nil(t, resp.CategoryID)
	})

	t.Run("category must exist", func(t *testing.T) {
		repo := newMemCatalogProductRepo()
		svc := NewProductService(repo, newMemCategoryRepo(), nil)

		missing := uuid.New()
		_, err := svc.Create(ctx, sellerID, CreateProductRequest{
			Name:       "Phone X",
			Price:      decimal.NewFromInt(499),
			CategoryID: &missing,
		})
		requireDomainCode(t, err, "NOT_FOUND")
	})

	t.Run("negative price rejected", func(t *testing.T) {
		svc := NewProductService(newMemCatalogProductRepo(), newMemCategoryRepo(), nil)

		_, err := svc.Create(ctx, sellerID, CreateProductRequest{
			Name:  "Phone X",
			Price: decimal.NewFromInt(-1),
		})
		requireDomainCode(t, err, "INVALID_ARGUMENT")
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("owner overwrites fields", func(t *testing.T) {
		product := mustProduct(t, sellerID, "Phone X", 499, 10, nil)
		repo := newMemCatalogProductRepo(product)
		svc := NewProductService(repo, newMemCategoryRepo(), nil)

		resp, err := svc.Update(ctx, sellerID, product.ID, UpdateProductRequest{
			Name:        "Phone X Pro",
			Description: "Now with more phone",
			Price:       decimal.NewFromInt(599),
			Stock:       5,
		})
		require.NoError(t, err)
		assert.Equal(t, "Phone X Pro", resp.Name)
		assert.Equal(t, 5, resp.StockQuantity)
		assert.True(t, decimal.NewFromInt(599).Equal(resp.Price))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		product := mustProduct(t, sellerID, "Phone X", 499, 10, nil)
		repo := newMemCatalogProductRepo(product)
		svc := NewProductService(repo, newMemCategoryRepo(), nil)

		_, err := svc.Update(ctx, uuid.New(), product.ID, UpdateProductRequest{
			Name:  "Hijacked",
			Price: decimal.NewFromInt(1),
		})
		requireDomainCode(t, err, "FORBIDDEN")
	})

	t.Run("moves between categories", func(t *testing.T) {
		electronics := mustRootCategory(t, "Electronics")
		product := mustProduct(t, sellerID, "Phone X", 499, 10, nil)
		repo := newMemCatalogProductRepo(product)
		svc := NewProductService(repo, newMemCategoryRepo(electronics), nil)

		resp, err := svc.Update(ctx, sellerID, product.ID, UpdateProductRequest{
			Name:       "Phone X",
			Price:      decimal.NewFromInt(499),
			Stock:      10,
			CategoryID: &electronics.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.CategoryID)
		assert.Equal(t, electronics.ID, *resp.CategoryID)

		resp, err = svc.Update(ctx, sellerID, product.ID, UpdateProductRequest{
			Name:          "Phone X",
			Price:         decimal.NewFromInt(499),
			Stock:         10,
			ClearCategory: true,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.CategoryID)
	})

	t.Run("invalidates cached detail", func(t *testing.T) {
		product := mustProduct(t, sellerID, "Phone X", 499, 10, nil)
		repo := newMemCatalogProductRepo(product)
		svc := NewProductService(repo, newMemCategoryRepo(), nil)
		invalidator := &countingInvalidator{}
		svc.SetDetailCacheInvalidator(invalidator)

		_, err := svc.Update(ctx, sellerID, product.ID, UpdateProductRequest{
			Name:  "Phone X",
			Price: decimal.NewFromInt(450),
			Stock: 10,
		})
		require.NoError(t, err)
		require.Len(t, invalidator.ids, 1)
		assert.Equal(t, product.ID, invalidator.ids[0])
	})
}

func TestProductService_SoftDelete(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("marks deleted and stays deleted", func(t *testing.T) {
		product := mustProduct(t, sellerID, "Phone X", 499, 10, nil)
		repo := newMemCatalogProductRepo(product)
		svc := NewProductService(repo, newMemCategoryRepo(), nil)

		require.NoError(t, svc.SoftDelete(ctx, sellerID, product.ID))

		stored, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsDeleted())

		// Repeating the call is a no-op, not an error.
		require.NoError(t, svc.SoftDelete(ctx, sellerID, product.ID))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		product := mustProduct(t, sellerID, "Phone X", 499, 10, nil)
		repo := newMemCatalogProductRepo(product)
		svc := NewProductService(repo, newMemCategoryRepo(), nil)

		err := svc.SoftDelete(ctx, uuid.New(), product.ID)
		requireDomainCode(t, err, "FORBIDDEN")
	})

	t.Run("deleted product cannot be updated", func(t *testing.T) {
		product := mustProduct(t, sellerID, "Phone X", 499, 10, nil)
		repo := newMemCatalogProductRepo(product)
		svc := NewProductService(repo, newMemCategoryRepo(), nil)

		require.NoError(t, svc.SoftDelete(ctx, sellerID, product.ID))

		_, err := svc.Update(ctx, sellerID, product.ID, UpdateProductRequest{
			Name:  "Phone X",
			Price: decimal.NewFromInt(499),
		})
		requireDomainCode(t, err, "CONFLICT")
	})
}
