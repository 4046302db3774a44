// Package checkout implements the HTTP client for the external
// checkout-session gateway. The gateway owns payment capture and the
// idempotency of booking confirmation; this client only creates sessions
// and verifies webhook signatures.
package checkout

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/config"
)

// EnvironmentURLs maps gateway environment names to their endpoints,
// used when no explicit base URL is configured
var EnvironmentURLs = map[string]string{
	"sandbox":    "https://sandbox.checkout.fourarental.com/v1/sessions",
	"production": "https://checkout.fourarental.com/v1/sessions",
}

// Client talks to the checkout-session gateway
type Client struct {
	config *config.CheckoutConfig
	logger *logrus.Logger
	client *http.Client
}

// NewClient creates a new gateway client
func NewClient(cfg *config.CheckoutConfig, logger *logrus.Logger) *Client {
	return &Client{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DriverPayload is one driver record as transmitted to the gateway.
// The wizard's same-address flag is stripped before transmission.
type DriverPayload struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"date_of_birth"`
	LicenseNumber string `json:"license_number"`
	LicenseState  string `json:"license_state"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ZipCode       string `json:"zip_code"`
}

// SessionRequest is the flattened booking payload POSTed to the gateway
type SessionRequest struct {
	BookingReference string `json:"booking_reference"`

	// Vehicle
	VehicleID       string `json:"vehicle_id"`
	VehicleName     string `json:"vehicle_name"`
	VehicleImageURL string `json:"vehicle_image_url,omitempty"`

	// Dates (RFC3339)
	PickupDate string `json:"pickup_date"`
	ReturnDate string `json:"return_date"`

	// Pickup / delivery
	PickupType       string  `json:"pickup_type"`
	PickupLocation   string  `json:"pickup_location"`
	DeliveryCity     string  `json:"delivery_city,omitempty"`
	DeliveryTimeSlot string  `json:"delivery_time_slot,omitempty"`
	DeliveryFee      float64 `json:"delivery_fee"`

	// Pricing fields, copied verbatim from the snapshot
	RentalDays           int     `json:"rental_days"`
	RentalType           string  `json:"rental_type"`
	BaseRate             float64 `json:"base_rate"`
	BaseCost             float64 `json:"base_cost"`
	AdditionalDriverCost float64 `json:"additional_driver_cost"`
	StudentDiscount      float64 `json:"student_discount"`
	Subtotal             float64 `json:"subtotal"`
	TaxAmount            float64 `json:"tax_amount"`
	TotalAmount          float64 `json:"total_amount"`
	Currency             string  `json:"currency"`

	// Renter
	IsStudent         bool            `json:"is_student"`
	StudentIDURL      string          `json:"student_id_url,omitempty"`
	PrimaryDriver     DriverPayload   `json:"primary_driver"`
	AdditionalDrivers []DriverPayload `json:"additional_drivers,omitempty"`

	// Gateway plumbing
	ReturnURL  string `json:"return_url"`
	WebhookURL string `json:"webhook_url"`
}

// SessionResponse is the gateway's session creation response
type SessionResponse struct {
	Status    string `json:"status"` // "success" or "error"
	SessionID string `json:"session_id"`
	URL       string `json:"url"` // Redirect target for payment
	Message   string `json:"message,omitempty"`
}

// CreateSession POSTs the booking payload and returns the checkout URL
func (c *Client) CreateSession(req *SessionRequest) (*SessionResponse, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("checkout gateway not configured: missing API key")
	}

	endpointURL := c.config.BaseURL
	if endpointURL == "" {
		url, ok := EnvironmentURLs[c.config.Environment]
		if !ok {
			url = EnvironmentURLs["sandbox"]
		}
		endpointURL = url
	}

	req.ReturnURL = c.config.ReturnURL
	req.WebhookURL = c.config.WebhookURL

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"booking_reference": req.BookingReference,
		"total_amount":      req.TotalAmount,
		"endpoint":          endpointURL,
	}).Info("Creating checkout session")

	httpReq, err := http.NewRequest(http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("checkout gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(respBody),
		}).Error("Checkout gateway returned error status")
		return nil, fmt.Errorf("checkout gateway returned status %d", resp.StatusCode)
	}

	var sessionResp SessionResponse
	if err := json.Unmarshal(respBody, &sessionResp); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if sessionResp.Status != "success" {
		return nil, fmt.Errorf("checkout session creation failed: %s", sessionResp.Message)
	}
	if sessionResp.URL == "" {
		return nil, fmt.Errorf("checkout session response missing redirect URL")
	}

	return &sessionResp, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 signature the gateway
// attaches to payment notifications
func (c *Client) VerifyWebhookSignature(sessionID, status, signature string) bool {
	if c.config.APIKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(c.config.APIKey))
	fmt.Fprintf(mac, "%s|%s", sessionID, status)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
