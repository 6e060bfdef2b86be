package repositories

import (
	"context"
	"errors"
	"time"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/pkg/cache"
)

const (
	cartPrefix = "cart"
	// lastOrderKey is the fixed key the last order payload lives under
	lastOrderKey = "lastOrder"
)

// Cart Repository
type cartRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewCartRepository(c cache.Cache, ttl time.Duration) CartRepository {
	return &cartRepository{cache: c, ttl: ttl}
}

func (r *cartRepository) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.cache.Get(ctx, cache.Key(cartPrefix, sessionID), &cart)
	if errors.Is(err, cache.ErrCacheMiss) {
		return &models.Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Save(ctx context.Context, sessionID string, cart *models.Cart) error {
	return r.cache.Set(ctx, cache.Key(cartPrefix, sessionID), cart, r.ttl)
}

func (r *cartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.cache.Delete(ctx, cache.Key(cartPrefix, sessionID))
}

// Order Draft Repository
type orderDraftRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewOrderDraftRepository(c cache.Cache, ttl time.Duration) OrderDraftRepository {
	return &orderDraftRepository{cache: c, ttl: ttl}
}

func (r *orderDraftRepository) SaveLastOrder(ctx context.Context, sessionID string, payload *models.OrderPayload) error {
	return r.cache.Set(ctx, cache.Key(sessionID, lastOrderKey), payload, r.ttl)
}

func (r *orderDraftRepository) GetLastOrder(ctx context.Context, sessionID string) (*models.OrderPayload, error) {
	var payload models.OrderPayload
	err := r.cache.Get(ctx, cache.Key(sessionID, lastOrderKey), &payload)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payload, nil
}
