package paypal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/paybridge/internal/paypal"
)

func TestCreateOrderRelaysProviderDocument(t *testing.T) {
	t.Parallel()

	var tokenCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", user)
		require.Equal(t, "client-secret", pass)
		_, _ = w.Write([]byte(`{"access_token":"token-1","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		var body struct {
			Intent        string `json:"intent"`
			PurchaseUnits []struct {
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"purchase_units"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "CAPTURE", body.Intent)
		require.Len(t, body.PurchaseUnits, 1)
		require.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)
		require.Equal(t, "10.00", body.PurchaseUnits[0].Amount.Value)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"CREATED"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv.URL, 2*time.Second)
	ctx := context.Background()

	raw, err := client.CreateOrder(ctx, "10.00", "USD")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"ORDER-1","status":"CREATED"}`, string(raw))

	// second call reuses the cached access token
	_, err = client.CreateOrder(ctx, "10.00", "USD")
	require.NoError(t, err)
	require.Equal(t, int64(1), atomic.LoadInt64(&tokenCalls))
}

func TestCaptureOrderCompleted(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"token-1","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"COMPLETED"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv.URL, 2*time.Second)
	result, err := client.CaptureOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)
	require.Equal(t, "ORDER-1", result.ID)
	require.Equal(t, "COMPLETED", result.Status)
	require.JSONEq(t, `{"id":"ORDER-1","status":"COMPLETED"}`, string(result.Raw))
}

func TestCaptureOrderUpstreamFault(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"token-1","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-2/capture", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv.URL, 2*time.Second)
	_, err := client.CaptureOrder(context.Background(), "ORDER-2")
	require.Error(t, err)

	var apiErr *paypal.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Contains(t, string(apiErr.Body), "ORDER_NOT_APPROVED")
}

func TestCreateOrderTokenFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv.URL, 2*time.Second)
	_, err := client.CreateOrder(context.Background(), "10.00", "USD")
	require.Error(t, err)
}
