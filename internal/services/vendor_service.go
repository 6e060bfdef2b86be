package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/pkg/backend"
	"golang-food-storefront/pkg/cache"

	"go.uber.org/zap"
)

// MarketplaceAPI is the part of the marketplace backend the storefront uses
type MarketplaceAPI interface {
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	GetVendorBySlug(ctx context.Context, slug string) (*models.Vendor, error)
	GetLocationsByVendor(ctx context.Context, vendorID string) (models.DeliveryLocations, error)
	InitPayment(ctx context.Context, token string, payload *models.OrderPayload) (*models.PaymentInitResponse, error)
}

type VendorService struct {
	api   MarketplaceAPI
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewVendorService(api MarketplaceAPI, c cache.Cache, ttl time.Duration, log *zap.Logger) *VendorService {
	return &VendorService{
		api:   api,
		cache: c,
		ttl:   ttl,
		log:   log,
	}
}

// VendorPage is what the menu and checkout pages need about a vendor
type VendorPage struct {
	Vendor    *models.Vendor           `json:"vendor"`
	Locations models.DeliveryLocations `json:"locations"`
}

func (s *VendorService) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	vendors, err := s.api.ListVendors(ctx)
	if err != nil {
		return nil, &NetworkError{Op: "list vendors", Err: err}
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	return vendors, nil
}

// GetVendor resolves a vendor by slug, from cache when possible
func (s *VendorService) GetVendor(ctx context.Context, slug string) (*models.Vendor, error) {
	if slug == "" {
		return nil, invalid("slug", "is required")
	}

	cacheKey := cache.Key("vendor", slug)
	var cached models.Vendor
	err := s.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("vendor cache read failed", zap.String("slug", slug), zap.Error(err))
	}

	vendor, err := s.api.GetVendorBySlug(ctx, slug)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrVendorNotFound, slug)
	}
	if err != nil {
		return nil, &NetworkError{Op: "load vendor", Err: err}
	}

	if err := s.cache.Set(ctx, cacheKey, vendor, s.ttl); err != nil {
		s.log.Warn("vendor cache write failed", zap.String("slug", slug), zap.Error(err))
	}
	return vendor, nil
}

// GetLocations fetches the vendor's delivery locations. A failure degrades
// to no locations rather than an error.
func (s *VendorService) GetLocations(ctx context.Context, vendorID string) models.DeliveryLocations {
	locations, err := s.api.GetLocationsByVendor(ctx, vendorID)
	if err != nil {
		s.log.Warn("delivery locations unavailable", zap.String("vendor_id", vendorID), zap.Error(err))
		return models.DeliveryLocations{}
	}
	if locations == nil {
		return models.DeliveryLocations{}
	}
	return locations
}

// GetVendorPage loads the vendor and then its locations
func (s *VendorService) GetVendorPage(ctx context.Context, slug string) (*VendorPage, error) {
	vendor, err := s.GetVendor(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &VendorPage{
		Vendor:    vendor,
		Locations: s.GetLocations(ctx, vendor.ID),
	}, nil
}
