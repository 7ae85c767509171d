package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const verificationSuccess = "SUCCESS"

// VerifySignature asks the provider whether a webhook delivery genuinely
// originated from it. Exactly one outbound call is made per invocation.
//
// The provider answering SUCCESS yields OutcomeVerified; any other
// structured answer yields OutcomeRejected. Transport failures, unexpected
// statuses and malformed bodies yield OutcomeIndeterminate with the cause in
// the returned error; the error is diagnostic and must not be read as a
// trust decision.
func (c *Client) VerifySignature(ctx context.Context, req VerifyWebhookRequest) (Outcome, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return OutcomeIndeterminate, fmt.Errorf("encode verification request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, bytes.NewReader(payload))
	if err != nil {
		return OutcomeIndeterminate, fmt.Errorf("build verification request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.clientID, c.clientSecret)

	start := time.Now()
	resp, err := c.verifyHTTP.Do(ctx, httpReq)
	observeCall("verify-webhook-signature", start, err == nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("transmission_id", req.TransmissionID).Msg("webhook verification call failed")
		return OutcomeIndeterminate, fmt.Errorf("verify webhook signature: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return OutcomeIndeterminate, fmt.Errorf("read verification response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return OutcomeIndeterminate, fmt.Errorf("verification endpoint returned %s", resp.Status)
	}
	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return OutcomeIndeterminate, fmt.Errorf("decode verification response: %w", err)
	}
	if result.VerificationStatus == "" {
		return OutcomeIndeterminate, errors.New("verification response missing verification_status")
	}
	if result.VerificationStatus == verificationSuccess {
		return OutcomeVerified, nil
	}
	c.logger.Info().
		Str("transmission_id", req.TransmissionID).
		Str("verification_status", result.VerificationStatus).
		Msg("webhook signature rejected by provider")
	return OutcomeRejected, nil
}
