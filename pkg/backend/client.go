package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-food-storefront/internal/models"
)

// ErrNotFound matches a 404 from the backend and a response that lacks
// the requested resource
var ErrNotFound = errors.New("backend: not found")

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend API error (status %d): %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match a 404
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the marketplace backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type vendorResponse struct {
	Vendor *models.Vendor `json:"vendor"`
}

type vendorListResponse struct {
	Vendors []models.Vendor `json:"vendors"`
}

// ListVendors fetches the vendor directory
func (c *Client) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var result vendorListResponse
	if err := c.do(ctx, http.MethodGet, "/vendors", "", nil, &result); err != nil {
		return nil, err
	}
	return result.Vendors, nil
}

// GetVendorBySlug resolves a vendor from its URL slug
func (c *Client) GetVendorBySlug(ctx context.Context, slug string) (*models.Vendor, error) {
	var result vendorResponse
	if err := c.do(ctx, http.MethodGet, "/vendors/slug/"+url.PathEscape(slug), "", nil, &result); err != nil {
		return nil, err
	}
	if result.Vendor == nil || result.Vendor.ID == "" {
		return nil, fmt.Errorf("vendor %q missing from response: %w", slug, ErrNotFound)
	}
	if result.Vendor.Slug == "" {
		result.Vendor.Slug = slug
	}
	return result.Vendor, nil
}

// GetLocationsByVendor fetches the delivery locations and fees of a vendor
func (c *Client) GetLocationsByVendor(ctx context.Context, vendorID string) (models.DeliveryLocations, error) {
	var result models.DeliveryLocations
	if err := c.do(ctx, http.MethodGet, "/locations/vendor/"+url.PathEscape(vendorID), "", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// InitPayment submits an order payload and returns the backend's answer.
// token is the shopper's session token, empty for guests.
func (c *Client) InitPayment(ctx context.Context, token string, payload *models.OrderPayload) (*models.PaymentInitResponse, error) {
	var result models.PaymentInitResponse
	if err := c.do(ctx, http.MethodPost, "/payments/init", token, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}
	return nil
}
