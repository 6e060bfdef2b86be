package models

import "time"

const (
	DeliveryMethodDelivery = "delivery"
	PaymentStatusPending   = "pending"
)

// DeliveryDetails is the checkout form state
type DeliveryDetails struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Location string `json:"location"`
	Email    string `json:"email,omitempty"`
}

// Session is the shopper identity resolved for a request. Guests have an
// ID but no UserID.
type Session struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Token         string `json:"-"`
	Authenticated bool   `json:"authenticated"`
}

// OrderLineItem is one cart entry as the payment-initiation endpoint expects it
type OrderLineItem struct {
	Product  string `json:"product"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Image    string `json:"image,omitempty"`
	Pack     int    `json:"pack"`
}

// GuestInfo carries contact details for orders placed without a session
type GuestInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderPayload is the body of the payment-initiation request. Exactly one
// of Customer and GuestInfo is set.
type OrderPayload struct {
	Vendor           string          `json:"vendor"`
	Items            []OrderLineItem `json:"items"`
	DeliveryMethod   string          `json:"deliveryMethod"`
	DeliveryAddress  string          `json:"deliveryAddress"`
	DeliveryLocation string          `json:"deliveryLocation"`
	Phone            string          `json:"phone"`
	Total            int64           `json:"total"`
	PaymentStatus    string          `json:"paymentStatus"`
	TransactionRef   string          `json:"transactionRef"`
	Customer         string          `json:"customer,omitempty"`
	GuestInfo        *GuestInfo      `json:"guestInfo,omitempty"`
}

// IsGuest reports whether the payload is a guest order
func (p *OrderPayload) IsGuest() bool {
	return p.GuestInfo != nil
}

// PaymentInitResponse is the backend answer to a payment initiation
type PaymentInitResponse struct {
	Success     bool   `json:"success"`
	PaymentLink string `json:"paymentLink"`
	Message     string `json:"message,omitempty"`
}

// CheckoutLog records one checkout attempt - MongoDB
type CheckoutLog struct {
	SessionID      string        `bson:"session_id" json:"session_id"`
	VendorID       string        `bson:"vendor_id" json:"vendor_id"`
	TransactionRef string        `bson:"transaction_ref" json:"transaction_ref"`
	Guest          bool          `bson:"guest" json:"guest"`
	Total          int64         `bson:"total" json:"total"`
	Outcome        string        `bson:"outcome" json:"outcome"` // redirected, failed
	Reason         string        `bson:"reason,omitempty" json:"reason,omitempty"`
	Payload        *OrderPayload `bson:"payload,omitempty" json:"payload,omitempty"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
}
