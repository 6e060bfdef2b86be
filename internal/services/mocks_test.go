package services

import (
	"context"
	"sync"

	"golang-food-storefront/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockMarketplaceAPI struct {
	mock.Mock
}

func (m *MockMarketplaceAPI) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vendor), args.Error(1)
}

func (m *MockMarketplaceAPI) GetVendorBySlug(ctx context.Context, slug string) (*models.Vendor, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockMarketplaceAPI) GetLocationsByVendor(ctx context.Context, vendorID string) (models.DeliveryLocations, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.DeliveryLocations), args.Error(1)
}

func (m *MockMarketplaceAPI) InitPayment(ctx context.Context, token string, payload *models.OrderPayload) (*models.PaymentInitResponse, error) {
	args := m.Called(ctx, token, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentInitResponse), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	values []interface{}
	ctxs   []context.Context
	block  bool
}

// Publish records the event. With block set it behaves like an unreachable
// broker and only returns once ctx is done.
func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.values = append(p.values, value)
	p.ctxs = append(p.ctxs, ctx)
	return nil
}

type recordingCheckoutLog struct {
	mu      sync.Mutex
	entries []*models.CheckoutLog
}

func (r *recordingCheckoutLog) Create(ctx context.Context, entry *models.CheckoutLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingCheckoutLog) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Outcome)
	}
	return out
}
