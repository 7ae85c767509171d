package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// WebhookVerifyTotal counts webhook verification outcomes.
	WebhookVerifyTotal *prometheus.CounterVec
	// OrderOpsTotal counts order create/capture outcomes.
	OrderOpsTotal *prometheus.CounterVec
	// ProviderCallLatency records outbound provider call latency in milliseconds.
	ProviderCallLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		WebhookVerifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_verify_total",
			Help:      "Count of webhook signature verification outcomes.",
		}, []string{"result"})
		OrderOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_ops_total",
			Help:      "Count of order operations relayed to the provider by outcome.",
		}, []string{"operation", "result"})
		ProviderCallLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_ms",
			Help:      "Latency for outbound provider calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"endpoint", "result"})

		mustRegisterCollector(reg, WebhookVerifyTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				WebhookVerifyTotal = v
			}
		})
		mustRegisterCollector(reg, OrderOpsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderOpsTotal = v
			}
		})
		mustRegisterCollector(reg, ProviderCallLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				ProviderCallLatency = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
