package log

import (
	"testing"
	"time"
)

func TestNoopLoggerAcceptsAnyPayload(t *testing.T) {
	var logger NoopLogger

	events := []Event{
		{},
		{Frame: &FrameEvent{Size: 100, Data: []byte{1, 2, 3}}},
		{Handshake: &HandshakeEvent{Success: true, ReceiveBufferSize: 65536}},
		{StateChange: &StateChangeEvent{Entity: StateEntityConnection, NewState: "HANDSHAKED"}},
		{Error: &ErrorEventData{Message: "boom"}},
	}
	for _, ev := range events {
		ev.Timestamp = time.Now()
		logger.Log(ev)
	}
}

func TestLoggerFunc(t *testing.T) {
	var got []string
	var logger Logger = LoggerFunc(func(ev Event) {
		got = append(got, ev.ConnectionID)
	})

	logger.Log(Event{ConnectionID: "a"})
	logger.Log(Event{ConnectionID: "b"})

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
}
