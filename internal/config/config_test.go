package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/paybridge/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"PAYPAL_CLIENT_ID":     "client-id",
		"PAYPAL_CLIENT_SECRET": "client-secret",
		"PAYPAL_WEBHOOK_ID":    "",
		"PAYPAL_BASE_URL":      "",
		"PAYPAL_LIVE":          "",
		"PORT":                 "",
		"PROVIDER_TIMEOUT":     "",
		"ORDER_AMOUNT":         "",
		"ORDER_CURRENCY":       "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, ":3000", cfg.HTTPAddr())
	require.Equal(t, "https://api-m.sandbox.paypal.com", cfg.ProviderBaseURL())
	require.Equal(t, "10.00", cfg.OrderAmount)
	require.Equal(t, "USD", cfg.OrderCurrency)
	require.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	require.Empty(t, cfg.PayPalWebhookID)
}

func TestLoadMissingCredentials(t *testing.T) {
	env := baseEnv()
	env["PAYPAL_CLIENT_ID"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["PAYPAL_CLIENT_SECRET"] = ""
	_, err = config.LoadForTests(env)
	require.Error(t, err)
}

func TestProviderBaseURLSelection(t *testing.T) {
	env := baseEnv()
	env["PAYPAL_LIVE"] = "true"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "https://api-m.paypal.com", cfg.ProviderBaseURL())

	env = baseEnv()
	env["PAYPAL_BASE_URL"] = "http://127.0.0.1:9999/"
	cfg, err = config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9999", cfg.ProviderBaseURL())
}
