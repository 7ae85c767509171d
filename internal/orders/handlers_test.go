package orders_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/paybridge/internal/orders"
	"github.com/noah-isme/paybridge/internal/paypal"
)

type stubClient struct {
	createRaw     json.RawMessage
	createErr     error
	captureResult *paypal.CaptureResult
	captureErr    error
	lastAmount    string
	lastCurrency  string
	lastOrderID   string
}

func (s *stubClient) CreateOrder(_ context.Context, amount, currency string) (json.RawMessage, error) {
	s.lastAmount = amount
	s.lastCurrency = currency
	return s.createRaw, s.createErr
}

func (s *stubClient) CaptureOrder(_ context.Context, orderID string) (*paypal.CaptureResult, error) {
	s.lastOrderID = orderID
	return s.captureResult, s.captureErr
}

func newHandler(client *stubClient) orders.Handler {
	return orders.Handler{Client: client, Amount: "10.00", Currency: "USD", Logger: zerolog.Nop()}
}

func captureRequest(orderID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID+"/capture", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateRelaysProviderResult(t *testing.T) {
	t.Parallel()

	client := &stubClient{createRaw: json.RawMessage(`{"id":"ORDER-1","status":"CREATED"}`)}
	h := newHandler(client)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"id":"ORDER-1","status":"CREATED"}`, rr.Body.String())
	require.Equal(t, "10.00", client.lastAmount)
	require.Equal(t, "USD", client.lastCurrency)
}

func TestCreateRelaysUpstreamFault(t *testing.T) {
	t.Parallel()

	client := &stubClient{createErr: &paypal.APIError{
		Endpoint: "orders-create",
		Status:   http.StatusUnprocessableEntity,
		Body:     json.RawMessage(`{"name":"UNPROCESSABLE_ENTITY"}`),
	}}
	h := newHandler(client)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "UNPROCESSABLE_ENTITY")
}

func TestCreateTransportFault(t *testing.T) {
	t.Parallel()

	client := &stubClient{createErr: errors.New("connection refused")}
	h := newHandler(client)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Contains(t, body, "error")
	// transport detail stays in the log, not the response
	require.NotContains(t, rr.Body.String(), "connection refused")
}

func TestCaptureCompleted(t *testing.T) {
	t.Parallel()

	client := &stubClient{captureResult: &paypal.CaptureResult{
		ID:     "ORDER-1",
		Status: "COMPLETED",
		Raw:    json.RawMessage(`{"id":"ORDER-1","status":"COMPLETED"}`),
	}}
	h := newHandler(client)

	rr := httptest.NewRecorder()
	h.Capture(rr, captureRequest("ORDER-1"))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"COMPLETED","details":{"id":"ORDER-1","status":"COMPLETED"}}`, rr.Body.String())
	require.Equal(t, "ORDER-1", client.lastOrderID)
}

func TestCaptureNotCompleted(t *testing.T) {
	t.Parallel()

	client := &stubClient{captureResult: &paypal.CaptureResult{
		ID:     "ORDER-1",
		Status: "PENDING",
		Raw:    json.RawMessage(`{"id":"ORDER-1","status":"PENDING"}`),
	}}
	h := newHandler(client)

	rr := httptest.NewRecorder()
	h.Capture(rr, captureRequest("ORDER-1"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "PENDING")
}

func TestCaptureUpstreamFault(t *testing.T) {
	t.Parallel()

	client := &stubClient{captureErr: &paypal.APIError{
		Endpoint: "orders-capture",
		Status:   http.StatusUnprocessableEntity,
		Body:     json.RawMessage(`{"details":[{"issue":"ORDER_NOT_APPROVED"}]}`),
	}}
	h := newHandler(client)

	rr := httptest.NewRecorder()
	h.Capture(rr, captureRequest("ORDER-2"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "ORDER_NOT_APPROVED")
}

func TestCaptureMissingOrderID(t *testing.T) {
	t.Parallel()

	h := newHandler(&stubClient{})
	rr := httptest.NewRecorder()
	h.Capture(rr, captureRequest(""))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
