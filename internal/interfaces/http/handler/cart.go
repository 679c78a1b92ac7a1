package handler

import (
	"github.com/gin-gonic/gin"

	cartapp "github.com/store/backend/internal/application/cart"
)

// CartHandler handles the authenticated member's cart endpoints
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
// @Summary      Get the current cart
// @Description  Cart lines with totals computed from live prices
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.cartService.GetCart(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
// @Summary      Add a product to the cart
// @Description  Repeated adds for the same product merge into one line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.AddItemRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	id, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req cartapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.cartService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem godoc
// @Summary      Overwrite a cart line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Cart item ID"
// @Param        request body cartapp.UpdateItemRequest true "New quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	itemID, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid cart item ID")
		return
	}

	var req cartapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.cartService.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        id path string true "Cart item ID"
// @Success      204 "No Content"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	itemID, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid cart item ID")
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), id, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
