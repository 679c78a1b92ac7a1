package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// DetailCacheInvalidator drops the cached detail view of a product.
// Mutations call it so readers never serve stale product state longer
// than one cache round trip.
type DetailCacheInvalidator interface {
	Invalidate(ctx context.Context, productID uuid.UUID)
}

// ProductService is the seller-facing administrative surface for
// products. Every mutation checks that the caller owns the product.
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	eventPublisher shared.EventPublisher
	detailCache    DetailCacheInvalidator
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDetailCacheInvalidator wires the product detail cache
func (s *ProductService) SetDetailCacheInvalidator(invalidator DetailCacheInvalidator) {
	s.detailCache = invalidator
}

// Create creates a new active product owned by the given seller
func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	product, err := catalog.NewProduct(sellerID, req.Name, req.Description, req.Price, req.Stock, req.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)

	return ToProductResponse(product), nil
}

// GetByID retrieves a product regardless of status, for its owner
func (s *ProductService) GetByID(ctx context.Context, sellerID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(sellerID) {
		return nil, shared.ErrForbidden
	}
	return ToProductResponse(product), nil
}

// Update overwrites the product's administrative fields. Only the
// owning seller may update, and the write is version checked so a
// racing stock mutation is not silently clobbered.
func (s *ProductService) Update(ctx context.Context, sellerID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(sellerID) {
		return nil, shared.ErrForbidden
	}

	if err := product.UpdateInfo(req.Name, req.Description, req.Price, req.Stock); err != nil {
		return nil, err
	}

	switch {
	case req.ClearCategory:
		product.SetCategory(nil)
	case req.CategoryID != nil:
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}

	if err := s.productRepo.SaveWithVersionCheck(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateDetail(ctx, product.ID)
	s.publishDomainEvents(ctx, product)

	return ToProductResponse(product), nil
}

// SoftDelete marks the product deleted. Deleted is terminal, and
// repeating the call is a no-op.
func (s *ProductService) SoftDelete(ctx context.Context, sellerID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsOwnedBy(sellerID) {
		return shared.ErrForbidden
	}
	if product.IsDeleted() {
		return nil
	}

	if err := product.Delete(); err != nil {
		return err
	}
	if err := s.productRepo.SaveWithVersionCheck(ctx, product); err != nil {
		return err
	}

	s.invalidateDetail(ctx, product.ID)
	s.publishDomainEvents(ctx, product)

	return nil
}

func (s *ProductService) invalidateDetail(ctx context.Context, productID uuid.UUID) {
	if s.detailCache != nil {
		s.detailCache.Invalidate(ctx, productID)
	}
}

func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Error(err))
	}
	product.ClearDomainEvents()
}
