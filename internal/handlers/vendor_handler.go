package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VendorHandler struct {
	vendorService VendorServiceInterface
	log           *zap.Logger
}

func NewVendorHandler(vendorService VendorServiceInterface, log *zap.Logger) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
		log:           log,
	}
}

func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	vendors := router.Group("/vendors")
	{
		vendors.GET("", h.ListVendors)
		vendors.GET("/:slug", h.GetVendor)
	}
}

// ListVendors godoc
// @Summary Vendor directory
// @Tags vendors
// @Produce json
// @Success 200 {array} models.Vendor
// @Failure 502 {object} ErrorResponse
// @Router /vendors [get]
func (h *VendorHandler) ListVendors(c *gin.Context) {
	vendors, err := h.vendorService.ListVendors(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "Failed to load vendors", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

// GetVendor godoc
// @Summary Vendor and its delivery locations, for the menu page
// @Tags vendors
// @Produce json
// @Param slug path string true "Vendor slug"
// @Success 200 {object} services.VendorPage
// @Failure 502 {object} ErrorResponse
// @Router /vendors/{slug} [get]
func (h *VendorHandler) GetVendor(c *gin.Context) {
	page, err := h.vendorService.GetVendorPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, "Failed to load vendor", err)
		return
	}

	c.JSON(http.StatusOK, page)
}
