package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

type createOrderRequest struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// OrderClient creates payment orders on an external gateway.
type OrderClient struct {
	baseURL   string
	keyID     string
	keySecret string
	currency  string
	http      *http.Client
	log       *zap.Logger
}

func NewOrderClient(baseURL, keyID, keySecret, currency string, timeout time.Duration, log *zap.Logger) *OrderClient {
	return &OrderClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

// CreateOrder returns the gateway order id for amount (major units, e.g. rupees).
func (c *OrderClient) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (string, error) {
	if c.baseURL == "" {
		return "", ErrGatewayNotConfigured
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount.Shift(2).Round(0).IntPart(),
		Currency: c.currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("create order: gateway status %d: %s", resp.StatusCode, msg)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("create order: empty order id")
	}

	c.log.Debug("payment order created", zap.String("order_id", out.ID), zap.String("receipt", receipt))
	return out.ID, nil
}
