package transport

// Negotiation limits.
const (
	// MinBufferSize is the smallest receive or send buffer a peer may request.
	MinBufferSize = 8192

	// MaxBufferSize is the default upper bound for receive and send buffers.
	MaxBufferSize = 512 * 1024

	// MinMessageSize is the lower clamp bound for the max message size.
	MinMessageSize = 100000

	// MaxMessageSize is the default upper bound for the max message size.
	MaxMessageSize = 16 * 1024 * 1024

	// MaxChunkCount is the default upper bound for the max chunk count.
	MaxChunkCount = 65535

	// DefaultBufferSize is the receive/send buffer size a client requests
	// when none is configured.
	DefaultBufferSize = 65536

	// TestOnlyProtocolVersion is rejected by servers. Tests use it to
	// provoke BadProtocolVersionUnsupported.
	TestOnlyProtocolVersion = 0xDEADBEEF
)

// Negotiation is the result of a completed handshake.
type Negotiation struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

// Limits are the upper bounds a server accepts during negotiation.
type Limits struct {
	MaxReceiveBufferSize uint32
	MaxSendBufferSize    uint32
	MaxMessageSize       uint32
	MaxChunkCount        uint32
}

// DefaultLimits returns the default server limits.
func DefaultLimits() Limits {
	return Limits{
		MaxReceiveBufferSize: MaxBufferSize,
		MaxSendBufferSize:    MaxBufferSize,
		MaxMessageSize:       MaxMessageSize,
		MaxChunkCount:        MaxChunkCount,
	}
}

// withDefaults fills zero fields and keeps every maximum above its minimum.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxReceiveBufferSize <= MinBufferSize {
		l.MaxReceiveBufferSize = d.MaxReceiveBufferSize
	}
	if l.MaxSendBufferSize <= MinBufferSize {
		l.MaxSendBufferSize = d.MaxSendBufferSize
	}
	if l.MaxMessageSize <= MinMessageSize {
		l.MaxMessageSize = d.MaxMessageSize
	}
	if l.MaxChunkCount == 0 {
		l.MaxChunkCount = d.MaxChunkCount
	}
	return l
}

// Clamp maps a requested value into [min, max]. A request of 0 means
// "no limit" and yields max.
func Clamp(requested, min, max uint32) uint32 {
	switch {
	case requested == 0:
		return max
	case requested < min:
		return min
	case requested >= max:
		return max
	default:
		return requested
	}
}

// Negotiate computes the values a server acknowledges for the given request.
func Negotiate(protocolVersion uint32, req Negotiation, limits Limits) Negotiation {
	limits = limits.withDefaults()
	return Negotiation{
		ProtocolVersion:   protocolVersion,
		ReceiveBufferSize: Clamp(req.ReceiveBufferSize, MinBufferSize, limits.MaxReceiveBufferSize),
		SendBufferSize:    Clamp(req.SendBufferSize, MinBufferSize, limits.MaxSendBufferSize),
		MaxMessageSize:    Clamp(req.MaxMessageSize, MinMessageSize, limits.MaxMessageSize),
		MaxChunkCount:     Clamp(req.MaxChunkCount, 0, limits.MaxChunkCount),
	}
}
