package paypal

import "encoding/json"

// Outcome is the tri-state result of a webhook signature verification.
// Indeterminate means the provider could not be asked (transport failure,
// unexpected status, malformed response) and must never be treated as
// Verified.
type Outcome int

const (
	// OutcomeIndeterminate means no trust decision could be made.
	OutcomeIndeterminate Outcome = iota
	// OutcomeVerified means the provider confirmed the signature.
	OutcomeVerified
	// OutcomeRejected means the provider explicitly refused the signature.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVerified:
		return "verified"
	case OutcomeRejected:
		return "rejected"
	case OutcomeIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// VerifyWebhookRequest is the payload sent to the provider's
// verify-webhook-signature endpoint. Field names follow the provider API
// and are forwarded without transformation.
type VerifyWebhookRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

// CaptureResult holds the fields of a capture response the broker inspects,
// plus the raw provider document for relay.
type CaptureResult struct {
	ID     string
	Status string
	Raw    json.RawMessage
}
