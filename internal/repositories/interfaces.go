package repositories

import (
	"context"
	"errors"

	"golang-food-storefront/internal/models"
)

var ErrNotFound = errors.New("not found")

// CartRepository stores one cart per shopper session
type CartRepository interface {
	// Get returns an empty cart when the session has none
	Get(ctx context.Context, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, sessionID string, cart *models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// OrderDraftRepository is the session-scoped storage the last assembled
// order payload is written to before the shopper is redirected.
type OrderDraftRepository interface {
	SaveLastOrder(ctx context.Context, sessionID string, payload *models.OrderPayload) error
	GetLastOrder(ctx context.Context, sessionID string) (*models.OrderPayload, error)
}

// CheckoutLogRepository keeps an audit trail of checkout attempts
type CheckoutLogRepository interface {
	Create(ctx context.Context, entry *models.CheckoutLog) error
}
