package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang-food-storefront/internal/middleware"
	"golang-food-storefront/internal/models"
	"golang-food-storefront/internal/repositories"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	checkoutService CheckoutServiceInterface
	log             *zap.Logger
}

func NewCheckoutHandler(checkoutService CheckoutServiceInterface, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		log:             log,
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkout := router.Group("/checkout")
	{
		checkout.GET("/status", h.GetStatus)
		checkout.GET("/last-order", h.GetLastOrder)
		checkout.GET("/:slug/quote", h.GetQuote)
		checkout.POST("/:slug", h.Submit)
	}
}

// CheckoutRequest is the delivery details form
type CheckoutRequest struct {
	Name     string `json:"name" form:"name"`
	Phone    string `json:"phone" form:"phone"`
	Address  string `json:"address" form:"address"`
	Location string `json:"location" form:"location"`
	Email    string `json:"email" form:"email"`
}

// GetQuote godoc
// @Summary Priced breakdown of the cart for a vendor
// @Tags checkout
// @Produce json
// @Param slug path string true "Vendor slug"
// @Param location query string false "Delivery location"
// @Success 200 {object} services.QuoteResponse
// @Failure 502 {object} ErrorResponse
// @Router /checkout/{slug}/quote [get]
func (h *CheckoutHandler) GetQuote(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), sessionID, c.Param("slug"), c.Query("location"))
	if err != nil {
		respondError(c, h.log, "Failed to price checkout", err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// Submit godoc
// @Summary Start payment for the cart
// @Description Validates the delivery details, initializes payment with the
// @Description backend and redirects to the payment provider. JSON clients
// @Description get the link in the body instead.
// @Tags checkout
// @Accept json
// @Produce json
// @Param slug path string true "Vendor slug"
// @Param details body CheckoutRequest true "Delivery details"
// @Success 200 {object} services.SubmitResult
// @Success 303 "Redirect to payment"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /checkout/{slug} [post]
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Session not found",
		})
		return
	}

	details := models.DeliveryDetails{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Location: req.Location,
		Email:    req.Email,
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), session, c.Param("slug"), details)
	if err != nil {
		respondError(c, h.log, "Checkout failed", err)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, result)
		return
	}
	c.Redirect(http.StatusSeeOther, result.PaymentLink)
}

// GetStatus godoc
// @Summary State of the session's checkout attempt
// @Tags checkout
// @Produce json
// @Success 200 {object} services.AttemptStatus
// @Router /checkout/status [get]
func (h *CheckoutHandler) GetStatus(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.checkoutService.Status(sessionID))
}

// GetLastOrder godoc
// @Summary Last order payload handed to the backend
// @Tags checkout
// @Produce json
// @Success 200 {object} models.OrderPayload
// @Failure 404 {object} ErrorResponse
// @Router /checkout/last-order [get]
func (h *CheckoutHandler) GetLastOrder(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	payload, err := h.checkoutService.LastOrder(c.Request.Context(), sessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Not found",
			Message: "No order has been submitted in this session",
		})
		return
	}
	if err != nil {
		respondError(c, h.log, "Failed to load last order", err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
