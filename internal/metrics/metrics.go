// Package metrics defines the server's Prometheus collectors and the gRPC
// interceptors that feed them.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// Metrics holds the collectors registered with one registry.
type Metrics struct {
	RPCs        *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec
	Streams     prometheus.Gauge
	Events      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RPCs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsechat",
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by method and status code.",
		}, []string{"method", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pulsechat",
			Name:      "rpc_duration_seconds",
			Help:      "Unary RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		Streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsechat",
			Name:      "subscriptions_active",
			Help:      "Open change-feed streams.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsechat",
			Name:      "events_published_total",
			Help:      "Change events published, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.RPCs, m.RPCDuration, m.Streams, m.Events)
	return m
}

// UnaryInterceptor records count and latency per method.
func (m *Metrics) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.RPCDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		m.RPCs.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}

// StreamInterceptor counts streams and tracks how many are open.
func (m *Metrics) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		m.Streams.Inc()
		defer m.Streams.Dec()
		err := handler(srv, ss)
		m.RPCs.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return err
	}
}

// Publisher counts events on their way to next.
func (m *Metrics) Publisher(next events.Publisher) events.Publisher {
	return countingPublisher{next: next, events: m.Events}
}

type countingPublisher struct {
	next   events.Publisher
	events *prometheus.CounterVec
}

func (p countingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.events.WithLabelValues(string(e.Kind)).Inc()
	return p.next.Publish(ctx, e)
}
