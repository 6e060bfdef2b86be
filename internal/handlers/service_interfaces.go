package handlers

import (
	"context"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/internal/services"
)

// CartServiceInterface defines the contract for cart service
type CartServiceInterface interface {
	GetCart(ctx context.Context, sessionID string) (*services.CartResponse, error)
	AddToCart(ctx context.Context, sessionID string, req *services.AddToCartRequest) (*services.CartResponse, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string, packIndex int) (*services.CartResponse, error)
	AddPack(ctx context.Context, sessionID string) (*services.CartResponse, error)
	RemovePack(ctx context.Context, sessionID string, index int) (*services.CartResponse, error)
	EmptyCart(ctx context.Context, sessionID string) error
}

// VendorServiceInterface defines the contract for vendor service
type VendorServiceInterface interface {
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	GetVendorPage(ctx context.Context, slug string) (*services.VendorPage, error)
}

// CheckoutServiceInterface defines the contract for checkout service
type CheckoutServiceInterface interface {
	Quote(ctx context.Context, sessionID, slug, location string) (*services.QuoteResponse, error)
	Submit(ctx context.Context, session models.Session, slug string, details models.DeliveryDetails) (*services.SubmitResult, error)
	Status(sessionID string) services.AttemptStatus
	LastOrder(ctx context.Context, sessionID string) (*models.OrderPayload, error)
}
