package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount orderAmount `json:"amount"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

// CreateOrder opens a CAPTURE-intent order for the given amount and relays
// the provider's order document verbatim.
func (c *Client) CreateOrder(ctx context.Context, amount, currency string) (json.RawMessage, error) {
	body := createOrderRequest{
		Intent:        "CAPTURE",
		PurchaseUnits: []purchaseUnit{{Amount: orderAmount{CurrencyCode: currency, Value: amount}}},
	}
	raw, _, err := c.orderCall(ctx, "orders-create", c.baseURL+ordersPath, body)
	return raw, err
}

// CaptureOrder finalises a previously approved order.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	raw, _, err := c.orderCall(ctx, "orders-capture", fmt.Sprintf("%s%s/%s/capture", c.baseURL, ordersPath, orderID), struct{}{})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}
	return &CaptureResult{ID: parsed.ID, Status: parsed.Status, Raw: raw}, nil
}

func (c *Client) orderCall(ctx context.Context, endpoint, url string, payload any) (json.RawMessage, int, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, 0, err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.orderHTTP.Do(ctx, req)
	observeCall(endpoint, start, err == nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, resp.StatusCode, &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: body}
	}
	return body, resp.StatusCode, nil
}
