package webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/paybridge/internal/common"
	"github.com/noah-isme/paybridge/internal/obs"
	"github.com/noah-isme/paybridge/internal/paypal"
)

var validate = validator.New()

// Handler receives webhook deliveries, authenticates them through the
// Verifier and hands verified events to the Dispatcher. Every request
// terminates in exactly one response.
type Handler struct {
	Verifier   Verifier
	Dispatcher Dispatcher
	Logger     zerolog.Logger
}

// Handle processes POST /webhook deliveries.
func (h Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("webhook.Handler").Start(r.Context(), "Webhook.Handle")
	defer span.End()
	r = r.WithContext(ctx)

	outcome := "error"
	defer func() {
		if obs.WebhookVerifyTotal != nil {
			obs.WebhookVerifyTotal.WithLabelValues(outcome).Inc()
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		span.RecordError(err)
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unable to read payload", nil)
		return
	}
	n := Notification{
		AuthAlgo:         r.Header.Get("Paypal-Auth-Algo"),
		CertURL:          r.Header.Get("Paypal-Cert-Url"),
		TransmissionID:   r.Header.Get("Paypal-Transmission-Id"),
		TransmissionSig:  r.Header.Get("Paypal-Transmission-Sig"),
		TransmissionTime: r.Header.Get("Paypal-Transmission-Time"),
		Event:            body,
	}
	span.SetAttributes(attribute.String("webhook.transmission_id", n.TransmissionID))

	if !h.Verifier.Configured() {
		outcome = "not_configured"
		h.Logger.Error().Msg("webhook id not configured, rejecting delivery")
		common.JSONError(w, http.StatusInternalServerError, "WEBHOOK_NOT_CONFIGURED", "webhook verification is not configured", nil)
		return
	}
	if err := validate.Struct(n); err != nil {
		span.RecordError(err)
		outcome = "invalid_request"
		common.JSONError(w, http.StatusBadRequest, "MISSING_TRANSMISSION_FIELDS", "missing or invalid transmission headers", nil)
		return
	}

	result, err := h.Verifier.Verify(ctx, n)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrNotConfigured) {
			outcome = "not_configured"
			common.JSONError(w, http.StatusInternalServerError, "WEBHOOK_NOT_CONFIGURED", "webhook verification is not configured", nil)
			return
		}
		// indeterminate: the provider could not be consulted. Answering 5xx
		// makes the provider redeliver; the event is never trusted.
		outcome = result.String()
		h.Logger.Warn().Err(err).Str("transmission_id", n.TransmissionID).Msg("webhook verification indeterminate")
		common.JSONError(w, http.StatusInternalServerError, "VERIFICATION_UNAVAILABLE", "unable to verify webhook signature", nil)
		return
	}
	switch result {
	case paypal.OutcomeVerified:
		outcome = result.String()
		span.SetAttributes(attribute.String("webhook.outcome", outcome))
		h.dispatch(w, r, n)
	case paypal.OutcomeRejected:
		outcome = result.String()
		span.SetAttributes(attribute.String("webhook.outcome", outcome))
		common.JSONError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "invalid webhook signature", nil)
	default:
		outcome = paypal.OutcomeIndeterminate.String()
		common.JSONError(w, http.StatusInternalServerError, "VERIFICATION_UNAVAILABLE", "unable to verify webhook signature", nil)
	}
}

// dispatch forwards the verified event and writes the success response. A
// dispatcher failure is logged but does not revoke the 200 already earned
// by signature validity.
func (h Handler) dispatch(w http.ResponseWriter, r *http.Request, n Notification) {
	if h.Dispatcher != nil {
		evt := NewEvent(n.TransmissionID, n.Event)
		if err := h.Dispatcher.Dispatch(r.Context(), evt); err != nil {
			h.Logger.Error().Err(err).
				Str("delivery_id", evt.DeliveryID).
				Str("event_type", evt.Type).
				Msg("dispatch verified webhook event")
		}
	}
	common.JSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
