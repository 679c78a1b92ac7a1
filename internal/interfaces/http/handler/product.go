package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/store/backend/internal/application/catalog"
	inventoryapp "github.com/store/backend/internal/application/inventory"
	"github.com/store/backend/internal/domain/catalog"
)

// ProductHandler handles the seller-facing product endpoints together
// with stock adjustments
type ProductHandler struct {
	BaseHandler
	productService   *catalogapp.ProductService
	inventoryService *inventoryapp.InventoryService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, inventoryService *inventoryapp.InventoryService) *ProductHandler {
	return &ProductHandler{
		productService:   productService,
		inventoryService: inventoryService,
	}
}

// Create godoc
// @Summary      Create a product
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product data"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	sellerID, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.productService.Create(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get one of the seller's products
// @Tags         seller
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	sellerID, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	resp, err := h.productService.GetByID(c.Request.Context(), sellerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update a product
// @Description  Overwrites the administrative fields with absolute values
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.UpdateProductRequest true "Product data"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	sellerID, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.productService.Update(c.Request.Context(), sellerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Soft delete; the product leaves the catalog permanently
// @Tags         seller
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      204 "No Content"
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	sellerID, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.SoftDelete(c.Request.Context(), sellerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DecreaseStock godoc
// @Summary      Decrease product stock
// @Description  Reaching zero marks the product sold out; lock_mode picks the concurrency strategy
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body inventoryapp.StockAdjustmentRequest true "Quantity and lock mode"
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id}/stock/decrease [post]
func (h *ProductHandler) DecreaseStock(c *gin.Context) {
	h.adjustStock(c, h.inventoryService.DecreaseStock)
}

// IncreaseStock godoc
// @Summary      Increase product stock
// @Description  Restocking a sold out product reactivates it
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body inventoryapp.StockAdjustmentRequest true "Quantity and lock mode"
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id}/stock/increase [post]
func (h *ProductHandler) IncreaseStock(c *gin.Context) {
	h.adjustStock(c, h.inventoryService.IncreaseStock)
}

// GetStock godoc
// @Summary      Current stock state
// @Tags         seller
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id}/stock [get]
func (h *ProductHandler) GetStock(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	resp, err := h.inventoryService.GetStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type stockAdjustFunc func(ctx context.Context, productID uuid.UUID, qty int, mode catalog.LockMode) (*inventoryapp.StockResponse, error)

func (h *ProductHandler) adjustStock(c *gin.Context, adjust stockAdjustFunc) {
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req inventoryapp.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := adjust(c.Request.Context(), id, req.Quantity, catalog.LockMode(req.LockMode))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CatalogHandler handles the buyer-facing catalog read endpoints
type CatalogHandler struct {
	BaseHandler
	queryService *catalogapp.CatalogQueryService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(queryService *catalogapp.CatalogQueryService) *CatalogHandler {
	return &CatalogHandler{queryService: queryService}
}

// ListByCategory godoc
// @Summary      Active products in a category
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse,meta=dto.Meta}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id}/products [get]
func (h *CatalogHandler) ListByCategory(c *gin.Context) {
	categoryID, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := h.queryService.ListByCategory(c.Request.Context(), categoryID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// GetDetail godoc
// @Summary      Product detail
// @Description  Product with its category name resolved; uncategorized products say so
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalogapp.ProductDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *CatalogHandler) GetDetail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	detail, err := h.queryService.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Search godoc
// @Summary      Search active products
// @Description  Keyword, category, seller and price range filters; newest first by default
// @Tags         catalog
// @Produce      json
// @Param        keyword query string false "Substring matched on name and description"
// @Param        category_id query string false "Category filter"
// @Param        seller_id query string false "Seller filter"
// @Param        min_price query number false "Minimum price"
// @Param        max_price query number false "Maximum price"
// @Param        sort_by query string false "Sort field" Enums(price, created_at)
// @Param        sort_dir query string false "Sort direction" Enums(asc, desc)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	var req catalogapp.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	products, total, err := h.queryService.Search(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, products, total, page, pageSize)
}
