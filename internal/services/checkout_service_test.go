package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/internal/repositories"
	"golang-food-storefront/pkg/cache"
	"golang-food-storefront/pkg/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkoutFixture struct {
	svc       *CheckoutService
	carts     *CartService
	api       *MockMarketplaceAPI
	drafts    repositories.OrderDraftRepository
	events    *recordingPublisher
	attempts  *recordingCheckoutLog
	vendor    *models.Vendor
	locations models.DeliveryLocations
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := cache.NewMemoryCache()
	log := zap.NewNop()

	f := &checkoutFixture{
		api:       new(MockMarketplaceAPI),
		drafts:    repositories.NewOrderDraftRepository(store, time.Hour),
		events:    &recordingPublisher{},
		attempts:  &recordingCheckoutLog{},
		vendor:    &models.Vendor{ID: "v1", Slug: "mama-put", BusinessName: "Mama Put"},
		locations: models.DeliveryLocations{{Location: "Yaba", Price: 1000}, {Location: "Lekki", Price: 2500}},
	}
	f.carts = NewCartService(repositories.NewCartRepository(store, time.Hour), log)
	vendors := NewVendorService(f.api, store, time.Minute, log)
	f.svc = NewCheckoutService(f.carts, vendors, f.api, NewPricingEngine(DefaultFeeSchedule()),
		f.drafts, f.attempts, f.events, "storefront", time.Hour, log)

	f.api.On("GetVendorBySlug", mock.Anything, "mama-put").Return(f.vendor, nil).Maybe()
	f.api.On("GetLocationsByVendor", mock.Anything, "v1").Return(f.locations, nil).Maybe()
	return f
}

func (f *checkoutFixture) fillCart(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, sessionID, &AddToCartRequest{ProductID: "a", Name: "Amala", Price: 2500, Image: "amala.png"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = f.carts.AddToCart(ctx, sessionID, &AddToCartRequest{ProductID: "b", Name: "Puff-puff", Price: 800, Pack: intPtr(1)})
		require.NoError(t, err)
	}
}

var guestSession = models.Session{ID: "guest-1"}

var guestDetails = models.DeliveryDetails{
	Name:     "Chidi Okeke",
	Phone:    "08030000000",
	Address:  "12 Herbert Macaulay Way",
	Location: "yaba",
	Email:    "chidi@example.com",
}

func TestCheckoutService_SubmitGuest(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, guestSession.ID)

	var sent *models.OrderPayload
	f.api.On("InitPayment", mock.Anything, "", mock.AnythingOfType("*models.OrderPayload")).
		Run(func(args mock.Arguments) { sent = args.Get(2).(*models.OrderPayload) }).
		Return(&models.PaymentInitResponse{Success: true, PaymentLink: "https://pay.example/x"}, nil)

	result, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example/x", result.PaymentLink)
	assert.Equal(t, int64(4100), result.Breakdown.Subtotal)
	assert.Equal(t, int64(1000), result.Breakdown.DeliveryFee)
	assert.Equal(t, int64(5300), result.Breakdown.GrandTotal)

	require.NotNil(t, sent)
	assert.Equal(t, "v1", sent.Vendor)
	assert.Empty(t, sent.Customer)
	require.NotNil(t, sent.GuestInfo)
	assert.Equal(t, models.GuestInfo{Name: "Chidi Okeke", Email: "chidi@example.com", Phone: "08030000000", Address: "12 Herbert Macaulay Way"}, *sent.GuestInfo)
	assert.Equal(t, "Yaba", sent.DeliveryLocation)
	assert.Equal(t, models.DeliveryMethodDelivery, sent.DeliveryMethod)
	assert.Equal(t, models.PaymentStatusPending, sent.PaymentStatus)
	assert.Equal(t, int64(5300), sent.Total)
	assert.Equal(t, []models.OrderLineItem{
		{Product: "a", Name: "Amala", Quantity: 1, Price: 2500, Image: "amala.png", Pack: 0},
		{Product: "b", Name: "Puff-puff", Quantity: 2, Price: 800, Pack: 1},
	}, sent.Items)

	stored, err := f.svc.LastOrder(context.Background(), guestSession.ID)
	require.NoError(t, err)
	assert.Equal(t, sent.TransactionRef, stored.TransactionRef)

	require.Len(t, f.events.topics, 1)
	assert.Equal(t, messaging.TopicCheckoutSubmitted, f.events.topics[0])
	event := f.events.values[0].(messaging.CheckoutEvent)
	assert.True(t, event.Guest)
	assert.Equal(t, 3, event.ItemCount)

	assert.Equal(t, []string{"redirected"}, f.attempts.outcomes())
	assert.Equal(t, AttemptRedirecting, f.svc.Status(guestSession.ID).State)

	// the cart is not touched by checkout
	cart, err := f.carts.GetCart(context.Background(), guestSession.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount)
}

func TestCheckoutService_SubmitAuthenticated(t *testing.T) {
	f := newCheckoutFixture(t)
	session := models.Session{ID: "s-auth", UserID: "u-42", Name: "Ada Obi", Email: "ada@example.com", Token: "tok", Authenticated: true}
	f.fillCart(t, session.ID)

	var sent *models.OrderPayload
	f.api.On("InitPayment", mock.Anything, "tok", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(*models.OrderPayload) }).
		Return(&models.PaymentInitResponse{Success: true, PaymentLink: "https://pay.example/y"}, nil)

	details := models.DeliveryDetails{Phone: "0809", Address: "3 Admiralty Way", Location: "Lekki"}
	_, err := f.svc.Submit(context.Background(), session, "mama-put", details)
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, "u-42", sent.Customer)
	assert.Nil(t, sent.GuestInfo)
	assert.Equal(t, int64(4100+2500+200), sent.Total)
	assert.False(t, sent.IsGuest())
}

func TestCheckoutService_AssembleRejections(t *testing.T) {
	f := newCheckoutFixture(t)

	full := &models.Cart{}
	full.AddItem(models.CartItem{ProductID: "a", Name: "Amala", Price: 2500}, 0)

	mixed := &models.Cart{}
	mixed.AddItem(models.CartItem{ProductID: "a", VendorID: "v1", Name: "Amala", Price: 2500}, 0)
	mixed.AddItem(models.CartItem{ProductID: "s", VendorID: "v2", Name: "Suya", Price: 1500}, 1)

	emptyPacks := &models.Cart{}
	emptyPacks.AddPack()
	emptyPacks.AddPack()

	blank := func(mut func(d *models.DeliveryDetails)) models.DeliveryDetails {
		d := guestDetails
		mut(&d)
		return d
	}

	tests := []struct {
		name    string
		session models.Session
		cart    *models.Cart
		vendor  *models.Vendor
		details models.DeliveryDetails
		field   string
	}{
		{"vendor not loaded", guestSession, full, nil, guestDetails, "vendor"},
		{"empty cart", guestSession, &models.Cart{}, f.vendor, guestDetails, "cart"},
		{"packs without entries", guestSession, emptyPacks, f.vendor, guestDetails, "cart"},
		{"items from another vendor", guestSession, mixed, f.vendor, guestDetails, "cart"},
		{"blank name", guestSession, full, f.vendor, blank(func(d *models.DeliveryDetails) { d.Name = "  " }), "name"},
		{"blank phone", guestSession, full, f.vendor, blank(func(d *models.DeliveryDetails) { d.Phone = "" }), "phone"},
		{"blank address", guestSession, full, f.vendor, blank(func(d *models.DeliveryDetails) { d.Address = "" }), "address"},
		{"blank location", guestSession, full, f.vendor, blank(func(d *models.DeliveryDetails) { d.Location = "" }), "location"},
		{"unknown location", guestSession, full, f.vendor, blank(func(d *models.DeliveryDetails) { d.Location = "Ikeja" }), "location"},
		{"guest without email", guestSession, full, f.vendor, blank(func(d *models.DeliveryDetails) { d.Email = "" }), "email"},
		{"session without user id is a guest", models.Session{ID: "x", Authenticated: true}, full, f.vendor, blank(func(d *models.DeliveryDetails) { d.Email = "" }), "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _, err := f.svc.Assemble(tt.session, tt.cart, tt.vendor, f.locations, tt.details)
			assert.Nil(t, payload)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCheckoutService_AssembleIdentityIsExclusive(t *testing.T) {
	f := newCheckoutFixture(t)
	cart := &models.Cart{}
	cart.AddItem(models.CartItem{ProductID: "a", Name: "Amala", Price: 2500}, 0)

	sessions := []models.Session{
		guestSession,
		{ID: "s", UserID: "u-1", Name: "Ada", Email: "ada@example.com", Authenticated: true},
		{ID: "s", UserID: "u-2", Authenticated: true},
	}
	for _, session := range sessions {
		payload, _, err := f.svc.Assemble(session, cart, f.vendor, f.locations, guestDetails)
		require.NoError(t, err)

		hasCustomer := payload.Customer != ""
		hasGuest := payload.GuestInfo != nil
		assert.True(t, hasCustomer != hasGuest, "session %+v", session)
	}
}

func TestCheckoutService_AuthenticatedNameFromSession(t *testing.T) {
	f := newCheckoutFixture(t)
	cart := &models.Cart{}
	cart.AddItem(models.CartItem{ProductID: "a", Price: 100}, 0)

	session := models.Session{ID: "s", UserID: "u-1", Name: "Ada", Email: "ada@example.com", Authenticated: true}
	details := guestDetails
	details.Name = ""
	details.Email = ""

	payload, _, err := f.svc.Assemble(session, cart, f.vendor, f.locations, details)
	require.NoError(t, err)
	assert.Equal(t, "u-1", payload.Customer)
}

func TestCheckoutService_TransactionRef(t *testing.T) {
	f := newCheckoutFixture(t)
	f.svc.now = func() time.Time { return time.UnixMilli(1760000000000) }

	a := f.svc.newTransactionRef()
	b := f.svc.newTransactionRef()

	assert.Regexp(t, regexp.MustCompile(`^storefront_1760000000000_[0-9a-f]{8}$`), a)
	assert.NotEqual(t, a, b)
}

func TestCheckoutService_RejectedWithoutBackendCall(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)
	assert.True(t, IsValidation(err))

	f.fillCart(t, guestSession.ID)
	details := guestDetails
	details.Phone = ""
	_, err = f.svc.Submit(context.Background(), guestSession, "mama-put", details)
	assert.True(t, IsValidation(err))

	f.api.AssertNotCalled(t, "InitPayment", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"failed", "failed"}, f.attempts.outcomes())

	status := f.svc.Status(guestSession.ID)
	assert.Equal(t, AttemptIdle, status.State)
	assert.Contains(t, status.LastError, "phone")

	_, err = f.svc.LastOrder(context.Background(), guestSession.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCheckoutService_VendorUnavailable(t *testing.T) {
	f := newCheckoutFixture(t)
	f.api.On("GetVendorBySlug", mock.Anything, "closed").Return(nil, errors.New("connection refused"))

	_, err := f.svc.Submit(context.Background(), guestSession, "closed", guestDetails)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Equal(t, AttemptIdle, f.svc.Status(guestSession.ID).State)
}

func TestCheckoutService_BackendFailures(t *testing.T) {
	t.Run("network", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.fillCart(t, guestSession.ID)
		f.api.On("InitPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("503"))

		_, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)
		var netErr *NetworkError
		assert.ErrorAs(t, err, &netErr)
	})

	t.Run("integration", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.fillCart(t, guestSession.ID)
		f.api.On("InitPayment", mock.Anything, mock.Anything, mock.Anything).
			Return(&models.PaymentInitResponse{Success: false, Message: "vendor closed"}, nil)

		_, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)
		var intErr *IntegrationError
		require.ErrorAs(t, err, &intErr)
		assert.Contains(t, err.Error(), "vendor closed")

		status := f.svc.Status(guestSession.ID)
		assert.Equal(t, AttemptIdle, status.State)
		assert.NotEmpty(t, status.TransactionRef)

		_, err = f.svc.LastOrder(context.Background(), guestSession.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.Empty(t, f.events.topics)

		cart, err := f.carts.GetCart(context.Background(), guestSession.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, cart.ItemCount)
	})

	t.Run("success without link", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.fillCart(t, guestSession.ID)
		f.api.On("InitPayment", mock.Anything, mock.Anything, mock.Anything).
			Return(&models.PaymentInitResponse{Success: true}, nil)

		_, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)
		var intErr *IntegrationError
		assert.ErrorAs(t, err, &intErr)
	})
}

func TestCheckoutService_DoubleSubmitIsRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, guestSession.ID)

	started := make(chan struct{})
	release := make(chan struct{})
	f.api.On("InitPayment", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.PaymentInitResponse{Success: true, PaymentLink: "https://pay.example/z"}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)
		done <- err
	}()

	<-started
	assert.Equal(t, AttemptSubmitting, f.svc.Status(guestSession.ID).State)

	_, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	// other sessions are not blocked
	other := models.Session{ID: "guest-2"}
	_, err = f.svc.Submit(context.Background(), other, "mama-put", guestDetails)
	assert.True(t, IsValidation(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, AttemptRedirecting, f.svc.Status(guestSession.ID).State)
	f.api.AssertNumberOfCalls(t, "InitPayment", 1)
}

func TestCheckoutService_Quote(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "s1")

	q, err := f.svc.Quote(context.Background(), "s1", "mama-put", "LEKKI")
	require.NoError(t, err)
	assert.Equal(t, "Lekki", q.SelectedLocation)
	assert.Equal(t, int64(2500), q.Breakdown.DeliveryFee)
	assert.Equal(t, int64(4100+2500+200), q.Breakdown.GrandTotal)
	assert.Len(t, q.Locations, 2)

	q, err = f.svc.Quote(context.Background(), "s1", "mama-put", "")
	require.NoError(t, err)
	assert.Empty(t, q.SelectedLocation)
	assert.Equal(t, int64(0), q.Breakdown.DeliveryFee)
}

func TestCheckoutService_StaleAttemptsAreEvicted(t *testing.T) {
	f := newCheckoutFixture(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.attempts = newAttemptTracker(time.Hour, func() time.Time { return now })

	for i := 0; i < 100; i++ {
		session := models.Session{ID: fmt.Sprintf("guest-%d", i)}
		_, err := f.svc.Submit(context.Background(), session, "mama-put", guestDetails)
		require.True(t, IsValidation(err))
	}
	assert.Len(t, f.svc.attempts.attempts, 100)
	assert.NotEmpty(t, f.svc.Status("guest-0").LastError)

	now = now.Add(time.Hour)
	assert.Equal(t, AttemptStatus{State: AttemptIdle}, f.svc.Status("guest-0"))

	_, err := f.svc.Submit(context.Background(), models.Session{ID: "guest-late"}, "mama-put", guestDetails)
	require.True(t, IsValidation(err))
	assert.Len(t, f.svc.attempts.attempts, 1)
	assert.Contains(t, f.svc.attempts.attempts, "guest-late")
}

func TestAttemptTracker_StaleInFlightDoesNotBlock(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newAttemptTracker(time.Hour, func() time.Time { return now })

	require.NoError(t, tracker.begin("s1"))
	assert.ErrorIs(t, tracker.begin("s1"), ErrCheckoutInFlight)

	now = now.Add(time.Hour)
	assert.NoError(t, tracker.begin("s1"))
}

func TestCheckoutService_EventPublishDoesNotUseRequestContext(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, guestSession.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.api.On("InitPayment", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&models.PaymentInitResponse{Success: true, PaymentLink: "https://pay.example/e"}, nil)

	_, err := f.svc.Submit(ctx, guestSession, "mama-put", guestDetails)
	require.NoError(t, err)

	require.Len(t, f.events.ctxs, 1)
	deadline, ok := f.events.ctxs[0].Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(defaultPublishTimeout), deadline, defaultPublishTimeout)
}

func TestCheckoutService_UnreachableBrokerDoesNotBlockRedirect(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, guestSession.ID)
	f.events.block = true
	f.svc.publishTimeout = 20 * time.Millisecond
	f.api.On("InitPayment", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.PaymentInitResponse{Success: true, PaymentLink: "https://pay.example/b"}, nil)

	start := time.Now()
	result, err := f.svc.Submit(context.Background(), guestSession, "mama-put", guestDetails)

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/b", result.PaymentLink)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, AttemptRedirecting, f.svc.Status(guestSession.ID).State)
}

func TestCheckoutService_SubmitRejectsCartFromAnotherVendor(t *testing.T) {
	f := newCheckoutFixture(t)
	other := &models.Vendor{ID: "v2", Slug: "suya-spot", BusinessName: "Suya Spot"}
	f.api.On("GetVendorBySlug", mock.Anything, "suya-spot").Return(other, nil)
	f.api.On("GetLocationsByVendor", mock.Anything, "v2").Return(f.locations, nil)

	_, err := f.carts.AddToCart(context.Background(), guestSession.ID,
		&AddToCartRequest{ProductID: "a", VendorID: "v1", Name: "Amala", Price: 2500})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), guestSession, "suya-spot", guestDetails)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "cart", vErr.Field)
	f.api.AssertNotCalled(t, "InitPayment", mock.Anything, mock.Anything, mock.Anything)
}
