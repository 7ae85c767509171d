package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/noah-isme/paybridge/internal/paypal"
)

// ErrNotConfigured is returned when no webhook id is registered. This is a
// deployment fault, not a forged-event signal, and no outbound call is made.
var ErrNotConfigured = errors.New("webhook: no registered webhook id configured")

// Notification is the claim carried by an inbound webhook delivery, built
// from the provider's transmission headers and the raw body.
type Notification struct {
	AuthAlgo         string          `validate:"required"`
	CertURL          string          `validate:"required,url"`
	TransmissionID   string          `validate:"required"`
	TransmissionSig  string          `validate:"required"`
	TransmissionTime string          `validate:"required"`
	Event            json.RawMessage `validate:"required"`
}

// SignatureVerifier is the slice of the provider client the verifier needs.
type SignatureVerifier interface {
	VerifySignature(ctx context.Context, req paypal.VerifyWebhookRequest) (paypal.Outcome, error)
}

// Verifier authenticates webhook deliveries against the registered webhook
// subscription. Each delivery is verified independently; redelivery and
// retry policy belong to the provider.
type Verifier struct {
	Adapter   SignatureVerifier
	WebhookID string
}

// Configured reports whether a webhook id has been registered.
func (v Verifier) Configured() bool {
	return strings.TrimSpace(v.WebhookID) != ""
}

// Verify enriches the notification with the registered webhook id and asks
// the provider for a trust decision. The adapter's outcome is returned
// unchanged; no retries happen here.
func (v Verifier) Verify(ctx context.Context, n Notification) (paypal.Outcome, error) {
	if !v.Configured() {
		return paypal.OutcomeIndeterminate, ErrNotConfigured
	}
	if v.Adapter == nil {
		return paypal.OutcomeIndeterminate, errors.New("webhook: signature verifier not configured")
	}
	return v.Adapter.VerifySignature(ctx, paypal.VerifyWebhookRequest{
		AuthAlgo:         n.AuthAlgo,
		CertURL:          n.CertURL,
		TransmissionID:   n.TransmissionID,
		TransmissionSig:  n.TransmissionSig,
		TransmissionTime: n.TransmissionTime,
		WebhookID:        v.WebhookID,
		WebhookEvent:     n.Event,
	})
}
