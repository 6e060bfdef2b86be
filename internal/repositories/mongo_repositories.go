package repositories

import (
	"context"
	"time"

	"golang-food-storefront/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Checkout Log Repository
type checkoutLogRepository struct {
	collection *mongo.Collection
}

// NewCheckoutLogRepository returns a Mongo-backed log, or a no-op one when
// db is nil.
func NewCheckoutLogRepository(db *mongo.Database) CheckoutLogRepository {
	if db == nil {
		return noopCheckoutLog{}
	}
	return &checkoutLogRepository{
		collection: db.Collection("checkout_logs"),
	}
}

func (r *checkoutLogRepository) Create(ctx context.Context, entry *models.CheckoutLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

type noopCheckoutLog struct{}

func (noopCheckoutLog) Create(context.Context, *models.CheckoutLog) error { return nil }
