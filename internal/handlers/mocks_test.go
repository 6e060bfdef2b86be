package handlers

import (
	"context"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, sessionID string) (*services.CartResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CartResponse), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, sessionID string, req *services.AddToCartRequest) (*services.CartResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CartResponse), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, sessionID, productID string, packIndex int) (*services.CartResponse, error) {
	args := m.Called(ctx, sessionID, productID, packIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CartResponse), args.Error(1)
}

func (m *MockCartService) AddPack(ctx context.Context, sessionID string) (*services.CartResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CartResponse), args.Error(1)
}

func (m *MockCartService) RemovePack(ctx context.Context, sessionID string, index int) (*services.CartResponse, error) {
	args := m.Called(ctx, sessionID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CartResponse), args.Error(1)
}

func (m *MockCartService) EmptyCart(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockVendorService struct {
	mock.Mock
}

func (m *MockVendorService) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vendor), args.Error(1)
}

func (m *MockVendorService) GetVendorPage(ctx context.Context, slug string) (*services.VendorPage, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VendorPage), args.Error(1)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Quote(ctx context.Context, sessionID, slug, location string) (*services.QuoteResponse, error) {
	args := m.Called(ctx, sessionID, slug, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.QuoteResponse), args.Error(1)
}

func (m *MockCheckoutService) Submit(ctx context.Context, session models.Session, slug string, details models.DeliveryDetails) (*services.SubmitResult, error) {
	args := m.Called(ctx, session, slug, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitResult), args.Error(1)
}

func (m *MockCheckoutService) Status(sessionID string) services.AttemptStatus {
	args := m.Called(sessionID)
	return args.Get(0).(services.AttemptStatus)
}

func (m *MockCheckoutService) LastOrder(ctx context.Context, sessionID string) (*models.OrderPayload, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderPayload), args.Error(1)
}
