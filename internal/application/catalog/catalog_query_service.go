package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

const uncategorizedLabel = "uncategorized"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductDetailCache caches assembled product detail views. The cache
// is best effort: a miss or a broken cache degrades to a repository
// read, never to an error.
type ProductDetailCache interface {
	Get(ctx context.Context, productID uuid.UUID) (*ProductDetailResponse, bool)
	Set(ctx context.Context, productID uuid.UUID, detail *ProductDetailResponse)
	Invalidate(ctx context.Context, productID uuid.UUID)
}

// CatalogQueryService is the buyer-facing read surface over the
// catalog: category listings, product detail with category name
// resolution, and paginated search.
type CatalogQueryService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	detailCache  ProductDetailCache
	logger       *zap.Logger
}

// NewCatalogQueryService creates a new CatalogQueryService
func NewCatalogQueryService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	logger *zap.Logger,
) *CatalogQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogQueryService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// SetDetailCache wires the product detail cache
func (s *CatalogQueryService) SetDetailCache(cache ProductDetailCache) {
	s.detailCache = cache
}

// ListByCategory lists active products in a category, newest first
func (s *CatalogQueryService) ListByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) ([]ProductListResponse, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	products, total, err := s.productRepo.FindActiveByCategory(ctx, categoryID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return ToProductListResponses(products), total, nil
}

// GetDetail returns one product with its category name resolved.
// Products without a category, or whose category cannot be resolved,
// carry the "uncategorized" label; a failed lookup is logged, not
// surfaced. Deleted products are not visible here.
func (s *CatalogQueryService) GetDetail(ctx context.Context, productID uuid.UUID) (*ProductDetailResponse, error) {
	if s.detailCache != nil {
		if detail, ok := s.detailCache.Get(ctx, productID); ok {
			return detail, nil
		}
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, shared.ErrNotFound
	}

	detail := &ProductDetailResponse{
		ProductResponse: *ToProductResponse(product),
		CategoryName:    s.resolveCategoryName(ctx, product.CategoryID),
	}

	if s.detailCache != nil {
		s.detailCache.Set(ctx, productID, detail)
	}
	return detail, nil
}

// Search runs a paginated, filtered search over active products
func (s *CatalogQueryService) Search(ctx context.Context, req SearchRequest) ([]ProductListResponse, int64, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	criteria := catalog.SearchCriteria{
		Keyword:    req.Keyword,
		CategoryID: req.CategoryID,
		SellerID:   req.SellerID,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		SortAsc:    req.SortDir == "asc",
		Page:       page,
		PageSize:   pageSize,
	}

	switch req.SortBy {
	case "price":
		criteria.SortBy = catalog.ProductSortByPrice
	case "created_at":
		criteria.SortBy = catalog.ProductSortByCreatedAt
	default:
		criteria.SortBy = catalog.ProductSortDefault
	}

	products, total, err := s.productRepo.Search(ctx, criteria)
	if err != nil {
		return nil, 0, err
	}
	return ToProductListResponses(products), total, nil
}

func (s *CatalogQueryService) resolveCategoryName(ctx context.Context, categoryID *uuid.UUID) string {
	if categoryID == nil {
		return uncategorizedLabel
	}
	category, err := s.categoryRepo.FindByID(ctx, *categoryID)
	if err != nil {
		s.logger.Warn("failed to resolve product category",
			zap.String("category_id", categoryID.String()),
			zap.Error(err))
		return uncategorizedLabel
	}
	return category.Name
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
