package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics exposes counters/histograms for the messaging flows.
// A nil *GatewayMetrics is valid and records nothing.
type GatewayMetrics struct {
	outboundTotal     *prometheus.CounterVec
	inboundTotal      *prometheus.CounterVec
	statusEventsTotal *prometheus.CounterVec
	providerLatency   *prometheus.HistogramVec
	sweptTotal        prometheus.Counter
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound sends by channel and final status",
		}, []string{"channel", "status"}),
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "messaging",
			Name:      "inbound_total",
			Help:      "Total inbound message webhooks by channel and result",
		}, []string{"channel", "result"}),
		statusEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "messaging",
			Name:      "status_events_total",
			Help:      "Total delivery status events by provider and result",
		}, []string{"provider", "result"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Subsystem: "messaging",
			Name:      "provider_latency_seconds",
			Help:      "Latency of outbound provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		sweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "messaging",
			Name:      "swept_total",
			Help:      "Outbound messages failed by the stale pending sweeper",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outboundTotal, m.inboundTotal, m.statusEventsTotal, m.providerLatency, m.sweptTotal)
	return m
}

func (m *GatewayMetrics) ObserveOutbound(channel, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *GatewayMetrics) ObserveInbound(channel, result string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(channel, result).Inc()
}

func (m *GatewayMetrics) ObserveStatusEvent(provider, result string) {
	if m == nil {
		return
	}
	m.statusEventsTotal.WithLabelValues(provider, result).Inc()
}

func (m *GatewayMetrics) ObserveProviderLatency(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *GatewayMetrics) ObserveSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptTotal.Add(float64(n))
}
