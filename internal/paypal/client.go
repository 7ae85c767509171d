package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/paybridge/internal/obs"
	"github.com/noah-isme/paybridge/internal/resilience"
)

const (
	tokenPath   = "/v1/oauth2/token"
	verifyPath  = "/v1/notifications/verify-webhook-signature"
	ordersPath  = "/v2/checkout/orders"
	maxBodySize = 1 << 20

	// tokens are refreshed slightly before the provider-reported expiry
	tokenExpiryMargin = 60 * time.Second
)

// APIError is a structured failure reported by the provider for an order
// operation. The raw provider body is kept so handlers can relay the detail.
type APIError struct {
	Endpoint string
	Status   int
	Body     json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal %s: status %d", e.Endpoint, e.Status)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Logger       zerolog.Logger
}

// Client talks to the PayPal REST surface. It owns the credentials and the
// OAuth access token cache; nothing else in the process sees the secret.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	logger       zerolog.Logger

	// verification is a single attempt per delivery by contract; order
	// operations may retry on transport-level failures.
	verifyHTTP resilience.HTTPClient
	orderHTTP  resilience.HTTPClient

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient constructs a Client from the provided options.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		logger:       opts.Logger,
		verifyHTTP: resilience.HTTPClient{
			Client:      base,
			Breaker:     resilience.NewBreaker(10, 0.5, 30*time.Second).WithTarget("paypal-verify"),
			MaxAttempts: 1,
			Timeout:     timeout,
		},
		orderHTTP: resilience.HTTPClient{
			Client:      base,
			Breaker:     resilience.NewBreaker(10, 0.5, 30*time.Second).WithTarget("paypal-orders"),
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
			Jitter:      0.2,
			Timeout:     timeout,
		},
	}
}

// Ping exercises the OAuth token endpoint. Used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

// token returns a cached client-credentials access token, fetching a new one
// when the cache is empty or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	start := time.Now()
	resp, err := c.orderHTTP.Do(ctx, req)
	observeCall("oauth2-token", start, err == nil)
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Endpoint: tokenPath, Status: resp.StatusCode, Body: body}
	}
	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}
	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.accessToken, nil
}

func observeCall(endpoint string, start time.Time, success bool) {
	if obs.ProviderCallLatency == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	obs.ProviderCallLatency.WithLabelValues(endpoint, result).Observe(obs.DurationMillis(time.Since(start)))
}
