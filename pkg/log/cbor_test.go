package log

import (
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp:    ts,
		ConnectionID: "abc12345-def6-7890-abcd-ef1234567890",
		Direction:    DirectionOut,
		Layer:        LayerHandshake,
		Category:     CategoryHandshake,
		LocalRole:    RoleServer,
		RemoteAddr:   "192.168.1.100:4840",
		EndpointURL:  "opc.tcp://192.168.1.100:4840/UA/Server",
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	// Compare fields
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.ConnectionID != original.ConnectionID {
		t.Errorf("ConnectionID: got %q, want %q", decoded.ConnectionID, original.ConnectionID)
	}
	if decoded.Direction != original.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, original.Direction)
	}
	if decoded.Layer != original.Layer {
		t.Errorf("Layer: got %v, want %v", decoded.Layer, original.Layer)
	}
	if decoded.Category != original.Category {
		t.Errorf("Category: got %v, want %v", decoded.Category, original.Category)
	}
	if decoded.LocalRole != original.LocalRole {
		t.Errorf("LocalRole: got %v, want %v", decoded.LocalRole, original.LocalRole)
	}
	if decoded.RemoteAddr != original.RemoteAddr {
		t.Errorf("RemoteAddr: got %q, want %q", decoded.RemoteAddr, original.RemoteAddr)
	}
	if decoded.EndpointURL != original.EndpointURL {
		t.Errorf("EndpointURL: got %q, want %q", decoded.EndpointURL, original.EndpointURL)
	}
}

func TestFrameEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		Frame: &FrameEvent{
			Size:        256,
			Data:        []byte{'M', 'S', 'G', 'F', 0x00, 0x01, 0x00, 0x00},
			Truncated:   true,
			MessageType: "MSG",
			ChunkType:   "F",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Frame == nil {
		t.Fatal("Frame is nil")
	}
	if decoded.Frame.Size != original.Frame.Size {
		t.Errorf("Frame.Size: got %d, want %d", decoded.Frame.Size, original.Frame.Size)
	}
	if string(decoded.Frame.Data) != string(original.Frame.Data) {
		t.Errorf("Frame.Data: got %v, want %v", decoded.Frame.Data, original.Frame.Data)
	}
	if decoded.Frame.Truncated != original.Frame.Truncated {
		t.Errorf("Frame.Truncated: got %v, want %v", decoded.Frame.Truncated, original.Frame.Truncated)
	}
	if decoded.Frame.MessageType != "MSG" || decoded.Frame.ChunkType != "F" {
		t.Errorf("Frame header: got %s/%s, want MSG/F", decoded.Frame.MessageType, decoded.Frame.ChunkType)
	}
}

func TestHandshakeEventCBORRoundTrip(t *testing.T) {
	rejected := uint32(0x80AC0000)

	tests := []struct {
		name string
		hs   *HandshakeEvent
	}{
		{
			name: "negotiated",
			hs: &HandshakeEvent{
				Success:           true,
				ReceiveBufferSize: 65536,
				SendBufferSize:    65536,
				MaxMessageSize:    16777216,
				MaxChunkCount:     65535,
			},
		},
		{
			name: "aborted",
			hs: &HandshakeEvent{
				StatusCode: &rejected,
				Reason:     "receive buffer size 4096 below minimum 8192",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := Event{
				Timestamp:    time.Now(),
				ConnectionID: "conn-hs",
				Layer:        LayerHandshake,
				Category:     CategoryHandshake,
				Handshake:    tt.hs,
			}

			data, err := EncodeEvent(original)
			if err != nil {
				t.Fatalf("EncodeEvent failed: %v", err)
			}

			decoded, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}

			if decoded.Handshake == nil {
				t.Fatal("Handshake is nil")
			}
			got := decoded.Handshake
			if got.Success != tt.hs.Success {
				t.Errorf("Success: got %v, want %v", got.Success, tt.hs.Success)
			}
			if got.MaxMessageSize != tt.hs.MaxMessageSize {
				t.Errorf("MaxMessageSize: got %d, want %d", got.MaxMessageSize, tt.hs.MaxMessageSize)
			}
			if got.MaxChunkCount != tt.hs.MaxChunkCount {
				t.Errorf("MaxChunkCount: got %d, want %d", got.MaxChunkCount, tt.hs.MaxChunkCount)
			}
			if (got.StatusCode == nil) != (tt.hs.StatusCode == nil) {
				t.Fatalf("StatusCode presence: got %v, want %v", got.StatusCode, tt.hs.StatusCode)
			}
			if got.StatusCode != nil && *got.StatusCode != *tt.hs.StatusCode {
				t.Errorf("StatusCode: got %#x, want %#x", *got.StatusCode, *tt.hs.StatusCode)
			}
			if got.Reason != tt.hs.Reason {
				t.Errorf("Reason: got %q, want %q", got.Reason, tt.hs.Reason)
			}
		})
	}
}

func TestStateChangeEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Layer:        LayerTransport,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityConnection,
			OldState: "ESTABLISHED",
			NewState: "HANDSHAKED",
			Reason:   "ACK received",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.StateChange == nil {
		t.Fatal("StateChange is nil")
	}
	if *decoded.StateChange != *original.StateChange {
		t.Errorf("StateChange: got %+v, want %+v", *decoded.StateChange, *original.StateChange)
	}
}

func TestErrorEventCBORRoundTrip(t *testing.T) {
	code := uint32(0x80800000)

	original := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerTransport,
			Message: "chunk length 900000 exceeds receive buffer 65536",
			Code:    &code,
			Context: "read",
			Break:   false,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Error == nil {
		t.Fatal("Error is nil")
	}
	if decoded.Error.Layer != original.Error.Layer {
		t.Errorf("Error.Layer: got %v, want %v", decoded.Error.Layer, original.Error.Layer)
	}
	if decoded.Error.Message != original.Error.Message {
		t.Errorf("Error.Message: got %q, want %q", decoded.Error.Message, original.Error.Message)
	}
	if decoded.Error.Code == nil || *decoded.Error.Code != *original.Error.Code {
		t.Errorf("Error.Code: got %v, want %v", decoded.Error.Code, original.Error.Code)
	}
	if decoded.Error.Context != original.Error.Context {
		t.Errorf("Error.Context: got %q, want %q", decoded.Error.Context, original.Error.Context)
	}
}

func TestEventCBORIgnoresUnknownKeys(t *testing.T) {
	// A newer writer may add payload keys; older readers must skip them.
	type NewerEvent struct {
		Timestamp    time.Time `cbor:"1,keyasint"`
		ConnectionID string    `cbor:"2,keyasint"`
		Category     Category  `cbor:"5,keyasint"`
		Extra        string    `cbor:"99,keyasint"`
	}

	data, err := encMode.Marshal(NewerEvent{
		Timestamp:    time.Now(),
		ConnectionID: "conn-future",
		Category:     CategoryState,
		Extra:        "ignored",
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent with unknown key should succeed, got: %v", err)
	}
	if decoded.ConnectionID != "conn-future" {
		t.Errorf("ConnectionID: got %q, want %q", decoded.ConnectionID, "conn-future")
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	// Decode to generic map and verify keys are integers
	var rawMap map[uint64]any
	if err := decMode.Unmarshal(data, &rawMap); err != nil {
		t.Fatalf("failed to decode as map: %v", err)
	}

	// Should have integer keys 1, 2, 3, 4, 5 etc.
	expectedKeys := []uint64{1, 2, 3, 4, 5}
	for _, key := range expectedKeys {
		if _, ok := rawMap[key]; !ok {
			t.Errorf("expected integer key %d not found in encoded data", key)
		}
	}

	// Verify no string keys
	var stringMap map[string]any
	if err := decMode.Unmarshal(data, &stringMap); err == nil && len(stringMap) > 0 {
		t.Error("encoded data contains string keys, expected integer keys only")
	}
}
