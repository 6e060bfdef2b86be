package handlers

import (
	"net/http"
	"strconv"

	"golang-food-storefront/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	cartService CartServiceInterface
	log         *zap.Logger
}

func NewCartHandler(cartService CartServiceInterface, log *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log,
	}
}

// RegisterRoutes registers the routes for cart management
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.EmptyCart)
		cart.POST("/items", h.AddToCart)
		cart.DELETE("/items/:product_id", h.RemoveFromCart)
		cart.POST("/packs", h.AddPack)
		cart.DELETE("/packs/:index", h.RemovePack)
	}
}

// GetCart godoc
// @Summary Get the session's cart
// @Description Packs in order, the flattened entries and per-product quantities
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.log, "Failed to get cart", err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddToCart godoc
// @Summary Add one unit of an item
// @Description Adds to the addressed pack (default pack when omitted)
// @Tags cart
// @Accept json
// @Produce json
// @Param item body services.AddToCartRequest true "Item"
// @Success 200 {object} services.CartResponse
// @Failure 400 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req services.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	cart, err := h.cartService.AddToCart(c.Request.Context(), sessionID, &req)
	if err != nil {
		respondError(c, h.log, "Failed to add item to cart", err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveFromCart godoc
// @Summary Remove one unit of an item
// @Description Removing an item that is not in the cart changes nothing
// @Tags cart
// @Produce json
// @Param product_id path string true "Product ID"
// @Param pack query int false "Pack index"
// @Success 200 {object} services.CartResponse
// @Router /cart/items/{product_id} [delete]
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	packIndex := -1
	if raw := c.Query("pack"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid pack",
				Message: "pack must be a number",
			})
			return
		}
		packIndex = idx
	}

	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveFromCart(c.Request.Context(), sessionID, c.Param("product_id"), packIndex)
	if err != nil {
		respondError(c, h.log, "Failed to remove item from cart", err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddPack godoc
// @Summary Open a new pack
// @Tags cart
// @Produce json
// @Success 201 {object} services.CartResponse
// @Router /cart/packs [post]
func (h *CartHandler) AddPack(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	cart, err := h.cartService.AddPack(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.log, "Failed to add pack", err)
		return
	}

	c.JSON(http.StatusCreated, cart)
}

// RemovePack godoc
// @Summary Remove a pack and everything in it
// @Tags cart
// @Produce json
// @Param index path int true "Pack index"
// @Success 200 {object} services.CartResponse
// @Router /cart/packs/{index} [delete]
func (h *CartHandler) RemovePack(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid pack",
			Message: "index must be a number",
		})
		return
	}

	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	cart, err := h.cartService.RemovePack(c.Request.Context(), sessionID, index)
	if err != nil {
		respondError(c, h.log, "Failed to remove pack", err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// EmptyCart godoc
// @Summary Empty the cart
// @Tags cart
// @Success 204 "No Content"
// @Router /cart [delete]
func (h *CartHandler) EmptyCart(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.cartService.EmptyCart(c.Request.Context(), sessionID); err != nil {
		respondError(c, h.log, "Failed to empty cart", err)
		return
	}

	c.Status(http.StatusNoContent)
}
