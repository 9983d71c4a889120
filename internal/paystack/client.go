package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lifeevents/les/internal/config"
)

const defaultBaseURL = "https://api.paystack.co"

// Client talks to the Paystack transaction API.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Paystack client from config.
func NewClient(cfg config.PaystackConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Metadata is the opaque metadata echoed back by the provider.
type Metadata struct {
	EventId     string `json:"eventId"`
	AmountCents int64  `json:"amountCents"`
}

// Customer is the payer as reported by the provider.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName derives a contributor name, falling back to the email
// local part when the provider has no name on file.
func (c Customer) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name != "" {
		return name
	}
	if at := strings.Index(c.Email, "@"); at > 0 {
		return c.Email[:at]
	}
	return c.Email
}

// Transaction is a charge as reported by verification or webhook delivery.
type Transaction struct {
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"` // minor currency units
	Status    string   `json:"status"`
	Customer  Customer `json:"customer"`
	Metadata  Metadata `json:"metadata"`
}

// TransactionSuccess is the provider's terminal success status.
const TransactionSuccess = "success"

// WebhookEvent is the envelope POSTed by the provider.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

// EventChargeSuccess is the only webhook event type that is processed.
const EventChargeSuccess = "charge.success"

// InitializeRequest starts a checkout session.
type InitializeRequest struct {
	AmountCents int64
	Email       string
	CallbackURL string
	Metadata    Metadata
}

// InitializeData is the provider's checkout handle.
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// apiResponse is the provider's uniform response wrapper.
type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize requests an authorization redirect URL for a charge.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeData, error) {
	payload := map[string]interface{}{
		"amount":       req.AmountCents,
		"email":        req.Email,
		"metadata":     req.Metadata,
		"callback_url": req.CallbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var data InitializeData
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &data); err != nil {
		return nil, err
	}

	return &data, nil
}

// Verify re-checks a charge by its reference. The caller must inspect
// Transaction.Status; a returned transaction is not necessarily successful.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, fmt.Errorf("payment reference is required")
	}

	var tx Transaction
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &tx); err != nil {
		return nil, err
	}

	return &tx, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode paystack response: %w", err)
	}

	if resp.StatusCode >= 400 || !envelope.Status {
		if envelope.Message != "" {
			return fmt.Errorf("paystack: %s", envelope.Message)
		}
		return fmt.Errorf("paystack: request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode paystack data: %w", err)
		}
	}

	return nil
}
