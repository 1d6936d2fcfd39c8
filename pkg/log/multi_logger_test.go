package log

import (
	"testing"
	"time"
)

// recorder collects events in memory.
type recorder struct {
	events []Event
}

func (r *recorder) Log(ev Event) {
	r.events = append(r.events, ev)
}

func TestMultiLoggerFansOut(t *testing.T) {
	sinks := []*recorder{{}, {}, {}}
	multi := NewMultiLogger(sinks[0], sinks[1], sinks[2])

	multi.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
	})

	for i, r := range sinks {
		if len(r.events) != 1 || r.events[0].ConnectionID != "conn-123" {
			t.Errorf("sink %d: events = %+v", i, r.events)
		}
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	r := &recorder{}
	multi := NewMultiLogger(nil, r, nil)

	if multi.Len() != 1 {
		t.Fatalf("Len = %d, want 1", multi.Len())
	}
	multi.Log(Event{ConnectionID: "conn-456", Layer: LayerHandshake})
	if len(r.events) != 1 {
		t.Errorf("got %d events, want 1", len(r.events))
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()
	if multi.Len() != 0 {
		t.Errorf("Len = %d, want 0", multi.Len())
	}
	multi.Log(Event{Timestamp: time.Now()})
}
