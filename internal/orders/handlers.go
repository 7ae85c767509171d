package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paybridge/internal/common"
	"github.com/noah-isme/paybridge/internal/obs"
	"github.com/noah-isme/paybridge/internal/paypal"
)

const captureCompleted = "COMPLETED"

// ProviderClient is the slice of the provider adapter the order routes use.
type ProviderClient interface {
	CreateOrder(ctx context.Context, amount, currency string) (json.RawMessage, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error)
}

// Handler exposes the order create/capture pass-through routes.
type Handler struct {
	Client   ProviderClient
	Amount   string
	Currency string
	Logger   zerolog.Logger
}

// Create opens a provider order for the configured demo amount and relays
// the provider's order document.
func (h Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		common.JSONError(w, http.StatusInternalServerError, "ORDERS_NOT_CONFIGURED", "order service not configured", nil)
		return
	}
	result, err := h.Client.CreateOrder(r.Context(), h.Amount, h.Currency)
	if err != nil {
		h.countOp("create", "error")
		h.Logger.Error().Err(err).Msg("create order")
		h.relayFault(w, err, "ORDER_CREATE_FAILED", "order creation failed")
		return
	}
	h.countOp("create", "success")
	common.JSONRaw(w, http.StatusOK, result)
}

// Capture finalises a previously created order.
func (h Handler) Capture(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		common.JSONError(w, http.StatusInternalServerError, "ORDERS_NOT_CONFIGURED", "order service not configured", nil)
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "order id is required", nil)
		return
	}
	result, err := h.Client.CaptureOrder(r.Context(), orderID)
	if err != nil {
		h.countOp("capture", "error")
		h.Logger.Error().Err(err).Str("order_id", orderID).Msg("capture order")
		h.relayFault(w, err, "ORDER_CAPTURE_FAILED", "payment capture failed")
		return
	}
	if result.Status != captureCompleted {
		h.countOp("capture", "error")
		h.Logger.Error().Str("order_id", orderID).Str("status", result.Status).Msg("capture not completed")
		common.JSONError(w, http.StatusInternalServerError, "ORDER_CAPTURE_FAILED", "payment capture failed", json.RawMessage(result.Raw))
		return
	}
	h.countOp("capture", "success")
	common.JSON(w, http.StatusOK, map[string]any{
		"status":  captureCompleted,
		"details": json.RawMessage(result.Raw),
	})
}

// relayFault keeps provider-reported detail visible to the caller while
// collapsing transport failures into a generic 500.
func (h Handler) relayFault(w http.ResponseWriter, err error, code, message string) {
	appErr := common.NewAppError(code, message, http.StatusInternalServerError, err)
	var apiErr *paypal.APIError
	if errors.As(err, &apiErr) && len(apiErr.Body) > 0 {
		appErr.Details = json.RawMessage(apiErr.Body)
	}
	common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
}

func (h Handler) countOp(operation, result string) {
	if obs.OrderOpsTotal != nil {
		obs.OrderOpsTotal.WithLabelValues(operation, result).Inc()
	}
}
