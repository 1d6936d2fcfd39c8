package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bassosimone/slogstub"
)

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		Frame: &FrameEvent{
			Size:        256,
			Data:        []byte{0x01, 0x02},
			MessageType: "MSG",
			ChunkType:   "F",
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	// Parse JSON log entry
	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	// Verify key fields
	if logEntry["conn_id"] != "conn-123" {
		t.Errorf("conn_id: got %v, want %q", logEntry["conn_id"], "conn-123")
	}
	if logEntry["direction"] != "IN" {
		t.Errorf("direction: got %v, want %q", logEntry["direction"], "IN")
	}
	if logEntry["layer"] != "TRANSPORT" {
		t.Errorf("layer: got %v, want %q", logEntry["layer"], "TRANSPORT")
	}
	if logEntry["frame_size"] != float64(256) {
		t.Errorf("frame_size: got %v, want %v", logEntry["frame_size"], 256)
	}
	if logEntry["msg_type"] != "MSG" {
		t.Errorf("msg_type: got %v, want %q", logEntry["msg_type"], "MSG")
	}
}

func TestSlogAdapterLogsHandshakeEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	status := uint32(0x80AC0000)
	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-456",
		Direction:    DirectionOut,
		Layer:        LayerHandshake,
		Category:     CategoryHandshake,
		LocalRole:    RoleServer,
		Handshake: &HandshakeEvent{
			Success:    false,
			StatusCode: &status,
			Reason:     "buffer size too small",
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	// Parse JSON log entry
	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["success"] != false {
		t.Errorf("success: got %v, want false", logEntry["success"])
	}
	if logEntry["status"] != "0x80AC0000" {
		t.Errorf("status: got %v, want %q", logEntry["status"], "0x80AC0000")
	}
	if logEntry["role"] != "SERVER" {
		t.Errorf("role: got %v, want %q", logEntry["role"], "SERVER")
	}
	if logEntry["reason"] != "buffer size too small" {
		t.Errorf("reason: got %v", logEntry["reason"])
	}
}

func TestSlogAdapterIncludesConnectionID(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "abc12345-def6-7890",
		Direction:    DirectionIn,
		Layer:        LayerSocket,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityConnection,
			NewState: "connected",
		},
	})

	output := buf.String()
	if !strings.Contains(output, "abc12345-def6-7890") {
		t.Error("output does not contain connection ID")
	}
}

func TestSlogAdapterLevels(t *testing.T) {
	var records []slog.Record
	adapter := NewSlogAdapter(slog.New(&slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return level >= slog.LevelInfo
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}))

	adapter.Log(Event{ConnectionID: "quiet", Frame: &FrameEvent{MessageType: "MSG"}})
	if len(records) != 0 {
		t.Fatalf("frame logged above Debug: %d records", len(records))
	}

	adapter.Log(Event{ConnectionID: "loud", Error: &ErrorEventData{Message: "reset", Break: true}})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Level != slog.LevelWarn {
		t.Errorf("level = %s, want WARN", records[0].Level)
	}
	brk := false
	records[0].Attrs(func(a slog.Attr) bool {
		if a.Key == "break" {
			brk = a.Value.Bool()
		}
		return true
	})
	if !brk {
		t.Error("break attribute missing")
	}
}
