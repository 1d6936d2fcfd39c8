// Package metrics exports protocol activity as Prometheus metrics.
//
// Collector implements log.Logger, so it can be attached to a connection
// or listener directly or through log.MultiLogger next to a FileLogger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uacp-protocol/uacp-go/pkg/log"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// Collector turns protocol events into metrics. Safe for concurrent use.
type Collector struct {
	bytes        *prometheus.CounterVec
	chunks       *prometheus.CounterVec
	handshakes   *prometheus.CounterVec
	stateChanges *prometheus.CounterVec
	errors       *prometheus.CounterVec
	breaks       prometheus.Counter
	active       prometheus.Gauge
	listening    prometheus.Gauge
}

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uacp_transport_bytes_total",
			Help: "Bytes of completed chunks by direction",
		}, []string{"direction"}),
		chunks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uacp_transport_chunks_total",
			Help: "Completed chunks by direction and message type",
		}, []string{"direction", "msg_type"}),
		handshakes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uacp_handshakes_total",
			Help: "Handshake outcomes by local role and status",
		}, []string{"role", "status"}),
		stateChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uacp_state_changes_total",
			Help: "State transitions by entity and new state",
		}, []string{"entity", "state"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uacp_errors_total",
			Help: "Errors by layer",
		}, []string{"layer"}),
		breaks: factory.NewCounter(prometheus.CounterOpts{
			Name: "uacp_connection_breaks_total",
			Help: "Connections lost without a local disconnect",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "uacp_connections_active",
			Help: "Connections currently owning a socket",
		}),
		listening: factory.NewGauge(prometheus.GaugeOpts{
			Name: "uacp_listeners_active",
			Help: "Listeners currently accepting sockets",
		}),
	}
}

// Log implements log.Logger.
func (c *Collector) Log(ev log.Event) {
	switch {
	case ev.Frame != nil:
		dir := ev.Direction.String()
		c.bytes.WithLabelValues(dir).Add(float64(ev.Frame.Size))
		c.chunks.WithLabelValues(dir, ev.Frame.MessageType).Inc()

	case ev.Handshake != nil:
		status := "Good"
		if !ev.Handshake.Success {
			status = "failed"
			if ev.Handshake.StatusCode != nil {
				status = wire.StatusCode(*ev.Handshake.StatusCode).String()
			}
		}
		c.handshakes.WithLabelValues(ev.LocalRole.String(), status).Inc()

	case ev.StateChange != nil:
		c.onStateChange(ev.StateChange)

	case ev.Error != nil:
		c.errors.WithLabelValues(ev.Error.Layer.String()).Inc()
		if ev.Error.Break {
			c.breaks.Inc()
		}
	}
}

func (c *Collector) onStateChange(sc *log.StateChangeEvent) {
	c.stateChanges.WithLabelValues(sc.Entity.String(), sc.NewState).Inc()

	gauge := c.active
	if sc.Entity == log.StateEntityListener {
		gauge = c.listening
	}
	wasClosed := sc.OldState == "" || sc.OldState == "CLOSED"
	isClosed := sc.NewState == "CLOSED"
	switch {
	case wasClosed && !isClosed:
		gauge.Inc()
	case !wasClosed && isClosed:
		gauge.Dec()
	}
}

// Compile-time interface satisfaction check.
var _ log.Logger = (*Collector)(nil)
