package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/config"
)

// Payment statuses reported by the gateway.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusCanceled  = "canceled"
)

// Webhook event names.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
)

type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// Payment is the gateway's payment object, shared by API responses and
// webhook notifications.
type Payment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Description  string            `json:"description,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
}

// Notification is the webhook body pushed by the gateway.
type Notification struct {
	Type   string  `json:"type"`
	Event  string  `json:"event"`
	Object Payment `json:"object"`
}

type apiError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Gateway is the outbound payment API used by the checkout flow.
type Gateway interface {
	CreatePayment(ctx context.Context, amount float64, orderNumber, description string) (*Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// Client talks to the payment provider's REST API using HTTP basic auth
// with the shop credentials.
type Client struct {
	cfg        config.PaymentConfig
	httpClient *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether shop credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.ShopID != "" && c.cfg.SecretKey != ""
}

// CreatePayment registers a redirect payment for the given order. Every
// attempt carries a fresh idempotency key, so a retried checkout creates a
// new payment rather than resurrecting an aborted one.
func (c *Client) CreatePayment(ctx context.Context, amount float64, orderNumber, description string) (*Payment, error) {
	payload := map[string]interface{}{
		"amount": Amount{
			Value:    fmt.Sprintf("%.2f", amount),
			Currency: "RUB",
		},
		"capture":     true,
		"description": description,
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": fmt.Sprintf("%s?orderNumber=%s", c.cfg.ReturnURL, orderNumber),
		},
		"metadata": map[string]string{
			"orderNumber": orderNumber,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)

	return c.do(req)
}

// GetPayment fetches the current payment state directly from the gateway.
// The webhook handler uses it to verify pushed statuses instead of trusting
// the notification body.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"/payments/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Payment, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: payment gateway unreachable: %v", apperr.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading gateway response: %v", apperr.ErrExternalService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Description != "" {
			return nil, fmt.Errorf("%w: gateway error (%d): %s", apperr.ErrExternalService, resp.StatusCode, apiErr.Description)
		}
		return nil, fmt.Errorf("%w: gateway error (%d): %s", apperr.ErrExternalService, resp.StatusCode, string(body))
	}

	var p Payment
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: failed to parse gateway response: %v", apperr.ErrExternalService, err)
	}
	return &p, nil
}
