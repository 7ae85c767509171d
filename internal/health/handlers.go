package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger represents dependencies that can be probed for readiness.
type Pinger interface {
	PingProvider(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Pinger          Pinger
	ProviderTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the provider probe.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Pinger == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	providerStatus := "ok"
	if err := h.Pinger.PingProvider(r.Context(), h.providerTimeout()); err != nil {
		providerStatus = err.Error()
	}
	status := map[string]string{"provider": providerStatus}
	w.Header().Set("Content-Type", "application/json")
	if providerStatus != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) providerTimeout() time.Duration {
	if h.ProviderTimeout <= 0 {
		return 2 * time.Second
	}
	return h.ProviderTimeout
}
