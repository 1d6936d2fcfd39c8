package transport

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		name                string
		requested, min, max uint32
		want                uint32
	}{
		{"zero means unlimited", 0, 8192, 65536, 65536},
		{"below minimum", 4096, 8192, 65536, 8192},
		{"at minimum", 8192, 8192, 65536, 8192},
		{"inside range", 10000, 8192, 65536, 10000},
		{"at maximum", 65536, 8192, 65536, 65536},
		{"above maximum", 1 << 20, 8192, 65536, 65536},
		{"zero minimum", 5, 0, 65535, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.requested, tt.min, tt.max); got != tt.want {
				t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.requested, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestNegotiateDefaults(t *testing.T) {
	got := Negotiate(0, Negotiation{
		ReceiveBufferSize: 65536,
		SendBufferSize:    65536,
	}, Limits{})

	want := Negotiation{
		ProtocolVersion:   0,
		ReceiveBufferSize: 65536,
		SendBufferSize:    65536,
		MaxMessageSize:    MaxMessageSize,
		MaxChunkCount:     MaxChunkCount,
	}
	if got != want {
		t.Errorf("Negotiate = %+v, want %+v", got, want)
	}
}

func TestNegotiateMaxChunkCountZero(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxChunkCount = 1000

	got := Negotiate(0, Negotiation{ReceiveBufferSize: 8192, SendBufferSize: 8192}, limits)
	if got.MaxChunkCount != 1000 {
		t.Errorf("MaxChunkCount = %d, want configured maximum 1000", got.MaxChunkCount)
	}
}

func TestNegotiateMessageSizeClamp(t *testing.T) {
	got := Negotiate(0, Negotiation{
		ReceiveBufferSize: 8192,
		SendBufferSize:    8192,
		MaxMessageSize:    50,
	}, DefaultLimits())
	if got.MaxMessageSize != MinMessageSize {
		t.Errorf("MaxMessageSize = %d, want %d", got.MaxMessageSize, MinMessageSize)
	}
}

func TestLimitsWithDefaults(t *testing.T) {
	l := Limits{MaxReceiveBufferSize: 100, MaxMessageSize: 200000}.withDefaults()
	if l.MaxReceiveBufferSize != MaxBufferSize {
		t.Errorf("MaxReceiveBufferSize = %d, want %d", l.MaxReceiveBufferSize, MaxBufferSize)
	}
	if l.MaxMessageSize != 200000 {
		t.Errorf("MaxMessageSize = %d, want 200000", l.MaxMessageSize)
	}
	if l.MaxChunkCount != MaxChunkCount {
		t.Errorf("MaxChunkCount = %d, want %d", l.MaxChunkCount, MaxChunkCount)
	}
}
