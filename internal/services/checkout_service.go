package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/internal/repositories"
	"golang-food-storefront/pkg/messaging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPublishTimeout = 2 * time.Second

// AttemptState is where a session's checkout attempt currently is
type AttemptState string

const (
	AttemptIdle        AttemptState = "idle"
	AttemptValidating  AttemptState = "validating"
	AttemptSubmitting  AttemptState = "submitting"
	AttemptRedirecting AttemptState = "redirecting"
)

// AttemptStatus describes the current checkout attempt of a session.
// A failed attempt returns the session to idle and keeps the reason.
type AttemptStatus struct {
	State          AttemptState `json:"state"`
	LastError      string       `json:"last_error,omitempty"`
	TransactionRef string       `json:"transaction_ref,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (s AttemptStatus) inFlight() bool {
	return s.State == AttemptValidating || s.State == AttemptSubmitting
}

// attemptTracker keeps the checkout attempt of each session. Entries live
// as long as the session they belong to and are swept on begin.
type attemptTracker struct {
	mu        sync.Mutex
	attempts  map[string]AttemptStatus
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newAttemptTracker(ttl time.Duration, now func() time.Time) *attemptTracker {
	return &attemptTracker{
		attempts:  make(map[string]AttemptStatus),
		ttl:       ttl,
		lastSweep: now(),
		now:       now,
	}
}

func (t *attemptTracker) begin(sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweep(now)

	if st, ok := t.attempts[sessionID]; ok && !t.expired(st, now) && st.inFlight() {
		return ErrCheckoutInFlight
	}
	t.attempts[sessionID] = AttemptStatus{State: AttemptValidating, UpdatedAt: now}
	return nil
}

func (t *attemptTracker) advance(sessionID string, state AttemptState, txRef string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts[sessionID] = AttemptStatus{State: state, TransactionRef: txRef, UpdatedAt: t.now()}
}

func (t *attemptTracker) fail(sessionID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.attempts[sessionID]
	t.attempts[sessionID] = AttemptStatus{
		State:          AttemptIdle,
		LastError:      err.Error(),
		TransactionRef: prev.TransactionRef,
		UpdatedAt:      t.now(),
	}
}

func (t *attemptTracker) status(sessionID string) AttemptStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.attempts[sessionID]
	if !ok {
		return AttemptStatus{State: AttemptIdle}
	}
	if t.expired(st, t.now()) {
		delete(t.attempts, sessionID)
		return AttemptStatus{State: AttemptIdle}
	}
	return st
}

func (t *attemptTracker) expired(st AttemptStatus, now time.Time) bool {
	return t.ttl > 0 && now.Sub(st.UpdatedAt) >= t.ttl
}

// sweep drops expired entries, at most once per interval. Callers hold mu.
func (t *attemptTracker) sweep(now time.Time) {
	if t.ttl <= 0 || now.Sub(t.lastSweep) < min(t.ttl, time.Minute) {
		return
	}
	for id, st := range t.attempts {
		if t.expired(st, now) {
			delete(t.attempts, id)
		}
	}
	t.lastSweep = now
}

// EventPublisher publishes checkout events
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CheckoutService struct {
	carts          *CartService
	vendors        *VendorService
	api            MarketplaceAPI
	pricing        *PricingEngine
	drafts         repositories.OrderDraftRepository
	checkoutLog    repositories.CheckoutLogRepository
	events         EventPublisher
	publishTimeout time.Duration
	txPrefix       string
	attempts       *attemptTracker
	now            func() time.Time
	log            *zap.Logger
}

// NewCheckoutService wires the checkout flow. events may be nil. Attempt
// state is forgotten after attemptTTL, which should match the session TTL.
func NewCheckoutService(
	carts *CartService,
	vendors *VendorService,
	api MarketplaceAPI,
	pricing *PricingEngine,
	drafts repositories.OrderDraftRepository,
	checkoutLog repositories.CheckoutLogRepository,
	events EventPublisher,
	txPrefix string,
	attemptTTL time.Duration,
	log *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:          carts,
		vendors:        vendors,
		api:            api,
		pricing:        pricing,
		drafts:         drafts,
		checkoutLog:    checkoutLog,
		events:         events,
		publishTimeout: defaultPublishTimeout,
		txPrefix:       txPrefix,
		attempts:       newAttemptTracker(attemptTTL, time.Now),
		now:            time.Now,
		log:            log,
	}
}

type QuoteResponse struct {
	Vendor           *models.Vendor           `json:"vendor"`
	Locations        models.DeliveryLocations `json:"locations"`
	SelectedLocation string                   `json:"selected_location,omitempty"`
	Cart             *CartResponse            `json:"cart"`
	Breakdown        Breakdown                `json:"breakdown"`
}

type SubmitResult struct {
	PaymentLink    string    `json:"payment_link"`
	TransactionRef string    `json:"transaction_ref"`
	Breakdown      Breakdown `json:"breakdown"`
}

// Quote prices the session's cart for the vendor's checkout page. An
// unknown or unset location prices with a zero delivery fee.
func (s *CheckoutService) Quote(ctx context.Context, sessionID, slug, location string) (*QuoteResponse, error) {
	page, err := s.vendors.GetVendorPage(ctx, slug)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &QuoteResponse{
		Vendor:    page.Vendor,
		Locations: page.Locations,
		Cart:      newCartResponse(cart, -1),
		Breakdown: s.pricing.Quote(cart.Entries(), page.Locations.FeeFor(location)),
	}
	if loc, ok := page.Locations.Find(location); ok {
		resp.SelectedLocation = loc.Location
	}
	return resp, nil
}

// Assemble validates the checkout inputs and builds the payment-initiation
// payload. vendor is nil while it has not loaded.
func (s *CheckoutService) Assemble(session models.Session, cart *models.Cart, vendor *models.Vendor, locations models.DeliveryLocations, details models.DeliveryDetails) (*models.OrderPayload, Breakdown, error) {
	if vendor == nil || vendor.ID == "" {
		return nil, Breakdown{}, invalid("vendor", "has not loaded yet")
	}
	if cart == nil || cart.IsEmpty() {
		return nil, Breakdown{}, invalid("cart", "is empty")
	}
	if cart.HasItemsOutside(vendor.ID) {
		return nil, Breakdown{}, invalid("cart", "holds items from another vendor")
	}

	// a session without a user id cannot be attached as a customer
	authenticated := session.Authenticated && session.UserID != ""

	name := strings.TrimSpace(details.Name)
	email := strings.TrimSpace(details.Email)
	if authenticated {
		if n := strings.TrimSpace(session.Name); n != "" {
			name = n
		}
		if e := strings.TrimSpace(session.Email); e != "" {
			email = e
		}
	}
	phone := strings.TrimSpace(details.Phone)
	address := strings.TrimSpace(details.Address)

	switch {
	case name == "":
		return nil, Breakdown{}, invalid("name", "is required")
	case phone == "":
		return nil, Breakdown{}, invalid("phone", "is required")
	case address == "":
		return nil, Breakdown{}, invalid("address", "is required")
	case strings.TrimSpace(details.Location) == "":
		return nil, Breakdown{}, invalid("location", "is required")
	}

	location, ok := locations.Find(details.Location)
	if !ok {
		return nil, Breakdown{}, invalid("location", "is not served by this vendor")
	}

	if !authenticated && email == "" {
		return nil, Breakdown{}, invalid("email", "is required for guest orders")
	}

	breakdown := s.pricing.Quote(cart.Entries(), location.Price)

	var items []models.OrderLineItem
	for packIndex, pack := range cart.Packs {
		for _, e := range pack.Entries {
			items = append(items, models.OrderLineItem{
				Product:  e.ProductID,
				Name:     e.Name,
				Quantity: e.Quantity,
				Price:    e.Price,
				Image:    e.Image,
				Pack:     packIndex,
			})
		}
	}

	payload := &models.OrderPayload{
		Vendor:           vendor.ID,
		Items:            items,
		DeliveryMethod:   models.DeliveryMethodDelivery,
		DeliveryAddress:  address,
		DeliveryLocation: location.Location,
		Phone:            phone,
		Total:            breakdown.GrandTotal,
		PaymentStatus:    models.PaymentStatusPending,
		TransactionRef:   s.newTransactionRef(),
	}
	if authenticated {
		payload.Customer = session.UserID
	} else {
		payload.GuestInfo = &models.GuestInfo{
			Name:    name,
			Email:   email,
			Phone:   phone,
			Address: address,
		}
	}

	return payload, breakdown, nil
}

// Submit runs one checkout attempt for the session: validate, hand the
// payload to the backend, store it and return the payment link. The cart
// is left as it is whatever the outcome.
func (s *CheckoutService) Submit(ctx context.Context, session models.Session, slug string, details models.DeliveryDetails) (result *SubmitResult, err error) {
	if err := s.attempts.begin(session.ID); err != nil {
		return nil, err
	}

	var payload *models.OrderPayload
	defer func() {
		if err != nil {
			s.attempts.fail(session.ID, err)
			s.record(session, payload, "failed", err.Error())
			s.log.Info("checkout failed", zap.String("session_id", session.ID), zap.Error(err))
		}
	}()

	page, err := s.vendors.GetVendorPage(ctx, slug)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Snapshot(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	payload, breakdown, err := s.Assemble(session, cart, page.Vendor, page.Locations, details)
	if err != nil {
		return nil, err
	}

	s.attempts.advance(session.ID, AttemptSubmitting, payload.TransactionRef)

	resp, err := s.api.InitPayment(ctx, session.Token, payload)
	if err != nil {
		return nil, &NetworkError{Op: "initialize payment", Err: err}
	}
	if !resp.Success || resp.PaymentLink == "" {
		return nil, &IntegrationError{Op: "initialize payment", Message: resp.Message}
	}

	if err := s.drafts.SaveLastOrder(ctx, session.ID, payload); err != nil {
		s.log.Warn("could not store last order", zap.String("session_id", session.ID), zap.Error(err))
	}
	s.publish(session, payload)
	s.record(session, payload, "redirected", "")
	s.attempts.advance(session.ID, AttemptRedirecting, payload.TransactionRef)

	s.log.Info("checkout redirected to payment",
		zap.String("session_id", session.ID),
		zap.String("transaction_ref", payload.TransactionRef),
		zap.Int64("total", payload.Total),
		zap.Bool("guest", payload.IsGuest()),
	)

	return &SubmitResult{
		PaymentLink:    resp.PaymentLink,
		TransactionRef: payload.TransactionRef,
		Breakdown:      breakdown,
	}, nil
}

// Status reports the session's checkout attempt state
func (s *CheckoutService) Status(sessionID string) AttemptStatus {
	return s.attempts.status(sessionID)
}

// LastOrder returns the payload stored by the session's last successful checkout
func (s *CheckoutService) LastOrder(ctx context.Context, sessionID string) (*models.OrderPayload, error) {
	return s.drafts.GetLastOrder(ctx, sessionID)
}

func (s *CheckoutService) newTransactionRef() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", s.txPrefix, s.now().UnixMilli(), suffix)
}

func (s *CheckoutService) publish(session models.Session, payload *models.OrderPayload) {
	if s.events == nil {
		return
	}

	itemCount := 0
	for _, item := range payload.Items {
		itemCount += item.Quantity
	}
	event := messaging.CheckoutEvent{
		Type:           "checkout.submitted",
		SessionID:      session.ID,
		VendorID:       payload.Vendor,
		TransactionRef: payload.TransactionRef,
		CustomerID:     payload.Customer,
		Guest:          payload.IsGuest(),
		Total:          payload.Total,
		ItemCount:      itemCount,
		OccurredAt:     s.now(),
	}
	// detached from the request and bounded by publishTimeout
	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, messaging.TopicCheckoutSubmitted, payload.TransactionRef, event); err != nil {
		s.log.Warn("checkout event not published", zap.String("transaction_ref", payload.TransactionRef), zap.Error(err))
	}
}

func (s *CheckoutService) record(session models.Session, payload *models.OrderPayload, outcome, reason string) {
	entry := &models.CheckoutLog{
		SessionID: session.ID,
		Guest:     !session.Authenticated,
		Outcome:   outcome,
		Reason:    reason,
		Payload:   payload,
		CreatedAt: s.now(),
	}
	if payload != nil {
		entry.VendorID = payload.Vendor
		entry.TransactionRef = payload.TransactionRef
		entry.Total = payload.Total
	}

	// the request context may already be gone on failure paths
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.checkoutLog.Create(ctx, entry); err != nil {
		s.log.Warn("checkout log write failed", zap.String("session_id", session.ID), zap.Error(err))
	}
}
