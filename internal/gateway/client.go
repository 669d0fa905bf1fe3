package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	internal "github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
)

// Client talks to the external payments backend over HTTP. It implements
// payment.GatewayAPI for sessions and Ping for the health endpoint.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
}

type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

var _ payment.GatewayAPI = (*Client)(nil)

type initiatePayload struct {
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency"`
	Method      string         `json:"method"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	Purpose     purposePayload `json:"purpose"`
}

type purposePayload struct {
	Type        string `json:"type"`
	EntityID    string `json:"entity_id,omitempty"`
	Description string `json:"description,omitempty"`
}

type paymentData struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type envelope struct {
	Data paymentData `json:"data"`
}

// Initiate submits a payment request to the backend. The call is
// fire-and-forget from the session's point of view: once the backend
// accepts it, cancellation only stops the client-side confirmation.
func (c *Client) Initiate(ctx context.Context, req *payment.PaymentRequest) (*payment.Payment, error) {
	payload := initiatePayload{
		Amount:      req.Amount,
		Currency:    "RWF",
		Method:      string(req.Method),
		PhoneNumber: req.PhoneNumber,
		Purpose: purposePayload{
			Type:        string(req.Purpose.Type),
			EntityID:    req.Purpose.EntityID,
			Description: req.Purpose.Description,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	reqCtx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	c.setHeaders(httpReq)

	c.logger.Info("initiating payment with gateway",
		"amount", req.Amount,
		"method", req.Method,
		"purpose", req.Purpose.Type)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway rejected payment initiation",
			"status", resp.StatusCode,
			"response", string(respBody))
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp envelope
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Info("payment initiated",
		"payment_id", apiResp.Data.ID,
		"status", apiResp.Data.Status)

	return toDomain(apiResp.Data), nil
}

// GetStatus fetches the current payment record. Errors here are transient
// from the poller's perspective.
func (c *Client) GetStatus(ctx context.Context, paymentID string) (*payment.Payment, error) {
	reqCtx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1/payments/%s", c.baseURL, paymentID)
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var apiResp envelope
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return toDomain(apiResp.Data), nil
}

// Ping checks the backend's health endpoint for the service readiness
// probe.
func (c *Client) Ping(ctx context.Context) error {
	reqCtx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway health returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

func toDomain(data paymentData) *payment.Payment {
	return &payment.Payment{
		ID:            data.ID,
		Status:        payment.Status(data.Status),
		FailureReason: data.FailureReason,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}
