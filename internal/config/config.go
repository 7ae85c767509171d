package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	PayPalClientID     string
	PayPalClientSecret string
	PayPalWebhookID    string
	PayPalBaseURL      string
	PayPalLive         bool
	OrderAmount        string
	OrderCurrency      string
	ProviderTimeout    time.Duration
	OrderRateLimit     string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "3000"),
		PayPalClientID:     strings.TrimSpace(k.String("PAYPAL_CLIENT_ID")),
		PayPalClientSecret: strings.TrimSpace(k.String("PAYPAL_CLIENT_SECRET")),
		PayPalWebhookID:    strings.TrimSpace(k.String("PAYPAL_WEBHOOK_ID")),
		PayPalBaseURL:      strings.TrimSpace(k.String("PAYPAL_BASE_URL")),
		PayPalLive:         parseBool(k.String("PAYPAL_LIVE")),
		OrderAmount:        valueOrDefault(k.String("ORDER_AMOUNT"), "10.00"),
		OrderCurrency:      valueOrDefault(k.String("ORDER_CURRENCY"), "USD"),
		ProviderTimeout:    parseDuration(k.String("PROVIDER_TIMEOUT"), "10s"),
		OrderRateLimit:     valueOrDefault(k.String("ORDER_RATE_LIMIT"), "60-M"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.PayPalClientID == "" {
		return nil, errors.New("PAYPAL_CLIENT_ID is required")
	}
	if cfg.PayPalClientSecret == "" {
		return nil, errors.New("PAYPAL_CLIENT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "3000"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// ProviderBaseURL resolves the PayPal REST base URL. An explicit override
// wins; otherwise the sandbox host is used unless PAYPAL_LIVE is set.
func (c *Config) ProviderBaseURL() string {
	if c.PayPalBaseURL != "" {
		return strings.TrimRight(c.PayPalBaseURL, "/")
	}
	if c.PayPalLive {
		return liveBaseURL
	}
	return sandboxBaseURL
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
