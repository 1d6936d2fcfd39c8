package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/uacp-protocol/uacp-go/pkg/log"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

func newTestCollector() *Collector {
	return New(prometheus.NewRegistry())
}

func TestCollectorFrames(t *testing.T) {
	c := newTestCollector()

	c.Log(log.Event{Direction: log.DirectionOut, Frame: &log.FrameEvent{Size: 40, MessageType: "HEL"}})
	c.Log(log.Event{Direction: log.DirectionIn, Frame: &log.FrameEvent{Size: 36, MessageType: "ACK"}})
	c.Log(log.Event{Direction: log.DirectionIn, Frame: &log.FrameEvent{Size: 100, MessageType: "MSG"}})

	assert.Equal(t, 40.0, testutil.ToFloat64(c.bytes.WithLabelValues("OUT")))
	assert.Equal(t, 136.0, testutil.ToFloat64(c.bytes.WithLabelValues("IN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.chunks.WithLabelValues("IN", "MSG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.chunks.WithLabelValues("OUT", "HEL")))
}

func TestCollectorHandshakes(t *testing.T) {
	c := newTestCollector()
	code := uint32(wire.StatusBadConnectionRejected)

	c.Log(log.Event{LocalRole: log.RoleServer, Handshake: &log.HandshakeEvent{Success: true}})
	c.Log(log.Event{LocalRole: log.RoleServer, Handshake: &log.HandshakeEvent{StatusCode: &code}})
	c.Log(log.Event{LocalRole: log.RoleClient, Handshake: &log.HandshakeEvent{}})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.handshakes.WithLabelValues("SERVER", "Good")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.handshakes.WithLabelValues("SERVER", "BadConnectionRejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.handshakes.WithLabelValues("CLIENT", "failed")))
}

func TestCollectorActiveConnections(t *testing.T) {
	c := newTestCollector()
	change := func(entity log.StateEntity, from, to string) {
		c.Log(log.Event{StateChange: &log.StateChangeEvent{Entity: entity, OldState: from, NewState: to}})
	}

	change(log.StateEntityConnection, "CLOSED", "ESTABLISHED")
	change(log.StateEntityConnection, "CLOSED", "ESTABLISHED")
	change(log.StateEntityConnection, "ESTABLISHED", "HANDSHAKED")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.active))

	change(log.StateEntityConnection, "HANDSHAKED", "CLOSED")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.active))

	change(log.StateEntityListener, "CLOSED", "LISTENING")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.listening))
	change(log.StateEntityListener, "LISTENING", "CLOSED")
	assert.Equal(t, 0.0, testutil.ToFloat64(c.listening))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.stateChanges.WithLabelValues("CONNECTION", "ESTABLISHED")))
}

func TestCollectorErrors(t *testing.T) {
	c := newTestCollector()

	c.Log(log.Event{Error: &log.ErrorEventData{Layer: log.LayerSocket, Message: "reset", Break: true}})
	c.Log(log.Event{Error: &log.ErrorEventData{Layer: log.LayerHandshake, Message: "bad"}})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.breaks))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues("SOCKET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues("HANDSHAKE")))
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.Log(log.Event{Error: &log.ErrorEventData{Layer: log.LayerSocket, Break: true}})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["uacp_connection_breaks_total"])
	assert.True(t, names["uacp_connections_active"])
}
