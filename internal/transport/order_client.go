package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/models"

	"github.com/rs/zerolog"
)

// ReceiptStatusAccepted is reported when the backend accepted an order
// without stating a status.
const ReceiptStatusAccepted = "accepted"

// TokenSource yields the bearer credential of the current session.
type TokenSource interface {
	Token() string
}

// OrderClient submits a checked-out cart to the REST backend, which
// handles payment.
type OrderClient struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  zerolog.Logger
}

func NewOrderClient(baseURL string, timeout time.Duration, tokens TokenSource, logger zerolog.Logger) *OrderClient {
	return &OrderClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

func (c *OrderClient) PlaceOrder(ctx context.Context, order *models.Order) (*models.OrderReceipt, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", order.IdempotencyKey)
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("retailer_id", string(order.RetailerID)).Msg("Order request failed")
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readError(resp)
	}

	// The order is placed once the backend answers 2xx, whatever the body.
	var receipt models.OrderReceipt
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&receipt); err != nil {
		c.logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Unreadable order receipt, treating order as accepted")
		return &models.OrderReceipt{Status: ReceiptStatusAccepted}, nil
	}
	if receipt.Status == "" {
		receipt.Status = ReceiptStatusAccepted
	}
	return &receipt, nil
}
