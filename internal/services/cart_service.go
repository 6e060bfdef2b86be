package services

import (
	"context"
	"errors"
	"strings"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/internal/repositories"

	"go.uber.org/zap"
)

// CartService owns the cart of every shopper session. Mutations on one
// session's cart never interleave.
type CartService struct {
	cartRepo repositories.CartRepository
	locks    *keyedMutex
	log      *zap.Logger
}

func NewCartService(cartRepo repositories.CartRepository, log *zap.Logger) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		locks:    newKeyedMutex(),
		log:      log,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VendorID  string `json:"vendor_id"`
	Name      string `json:"name" binding:"required"`
	Price     int64  `json:"price" binding:"gte=0"`
	Image     string `json:"image"`
	// Pack addresses the pack by index; nil means the default pack
	Pack *int `json:"pack"`
}

type CartResponse struct {
	Packs      []models.Pack      `json:"packs"`
	Entries    []models.CartEntry `json:"entries"`
	Quantities map[string]int     `json:"quantities"`
	ItemCount  int                `json:"item_count"`
	Subtotal   int64              `json:"subtotal"`
	// PackIndex is the pack touched by the last mutation, -1 otherwise
	PackIndex int `json:"pack_index"`
}

func newCartResponse(cart *models.Cart, packIndex int) *CartResponse {
	resp := &CartResponse{
		Packs:      cart.Packs,
		Entries:    cart.Entries(),
		Quantities: cart.Quantities(),
		ItemCount:  cart.ItemCount(),
		PackIndex:  packIndex,
	}
	if resp.Packs == nil {
		resp.Packs = []models.Pack{}
	}
	if resp.Entries == nil {
		resp.Entries = []models.CartEntry{}
	}
	for _, e := range resp.Entries {
		resp.Subtotal += e.LineTotal()
	}
	return resp
}

// Snapshot returns a copy of the session's cart
func (s *CartService) Snapshot(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (*CartResponse, error) {
	cart, err := s.cartRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return newCartResponse(cart, -1), nil
}

func (s *CartService) AddToCart(ctx context.Context, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, invalid("product_id", "is required")
	}
	if req.Price < 0 {
		return nil, invalid("price", "must not be negative")
	}

	packIndex := -1
	if req.Pack != nil {
		packIndex = *req.Pack
	}
	item := models.CartItem{
		ProductID: req.ProductID,
		VendorID:  req.VendorID,
		Name:      req.Name,
		Price:     req.Price,
		Image:     req.Image,
	}

	return s.mutate(ctx, sessionID, func(cart *models.Cart) (int, bool) {
		return cart.AddItem(item, packIndex), true
	})
}

// RemoveFromCart takes one unit out; removing something absent is a no-op
func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, productID string, packIndex int) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(cart *models.Cart) (int, bool) {
		return packIndex, cart.RemoveItem(productID, packIndex)
	})
}

func (s *CartService) AddPack(ctx context.Context, sessionID string) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(cart *models.Cart) (int, bool) {
		return cart.AddPack(), true
	})
}

func (s *CartService) RemovePack(ctx context.Context, sessionID string, index int) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(cart *models.Cart) (int, bool) {
		return -1, cart.RemovePack(index)
	})
}

func (s *CartService) EmptyCart(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.cartRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Debug("cart emptied", zap.String("session_id", sessionID))
	return nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*models.Cart) (int, bool)) (*CartResponse, error) {
	if sessionID == "" {
		return nil, errors.New("missing session")
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cart, err := s.cartRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	packIndex, changed := fn(cart)
	if changed {
		if err := s.cartRepo.Save(ctx, sessionID, cart); err != nil {
			return nil, err
		}
	}
	return newCartResponse(cart, packIndex), nil
}
