package log

import (
	"go.uber.org/zap"
)

// ZapAdapter writes protocol events to a zap.Logger.
// It mirrors SlogAdapter for applications that already run on zap.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter creates a new ZapAdapter that writes to the given zap.Logger.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{logger: logger}
}

// Log writes the event to the zap logger at Debug level.
func (a *ZapAdapter) Log(event Event) {
	fields := []zap.Field{
		zap.String("conn_id", event.ConnectionID),
		zap.Stringer("direction", event.Direction),
		zap.Stringer("layer", event.Layer),
		zap.Stringer("category", event.Category),
		zap.Stringer("role", event.LocalRole),
	}

	if event.RemoteAddr != "" {
		fields = append(fields, zap.String("remote_addr", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		fields = append(fields,
			zap.String("msg_type", event.Frame.MessageType),
			zap.String("chunk_type", event.Frame.ChunkType),
			zap.Int("frame_size", event.Frame.Size),
		)
	case event.Handshake != nil:
		h := event.Handshake
		fields = append(fields,
			zap.Bool("success", h.Success),
			zap.Uint32("recv_buffer", h.ReceiveBufferSize),
			zap.Uint32("send_buffer", h.SendBufferSize),
			zap.Uint32("max_message_size", h.MaxMessageSize),
			zap.Uint32("max_chunk_count", h.MaxChunkCount),
		)
		if h.StatusCode != nil {
			fields = append(fields, zap.String("status", statusHex(*h.StatusCode)))
		}
	case event.StateChange != nil:
		fields = append(fields,
			zap.Stringer("entity", event.StateChange.Entity),
			zap.String("old_state", event.StateChange.OldState),
			zap.String("new_state", event.StateChange.NewState),
		)
	case event.Error != nil:
		fields = append(fields,
			zap.String("error_msg", event.Error.Message),
			zap.String("error_context", event.Error.Context),
			zap.Bool("break", event.Error.Break),
		)
	}

	a.logger.Debug("protocol", fields...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZapAdapter)(nil)
