package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger. Errors are logged
// at Warn, everything else at Debug.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log implements Logger.
func (a *SlogAdapter) Log(event Event) {
	level := slog.LevelDebug
	if event.Error != nil {
		level = slog.LevelWarn
	}
	ctx := context.Background()
	if !a.logger.Enabled(ctx, level) {
		return
	}

	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
		slog.String("role", event.LocalRole.String()),
	}

	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}
	if event.EndpointURL != "" {
		attrs = append(attrs, slog.String("endpoint_url", event.EndpointURL))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.String("msg_type", event.Frame.MessageType),
			slog.String("chunk_type", event.Frame.ChunkType),
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Handshake != nil:
		h := event.Handshake
		attrs = append(attrs, slog.Bool("success", h.Success))
		if h.Success {
			attrs = append(attrs,
				slog.Uint64("protocol_version", uint64(h.ProtocolVersion)),
				slog.Uint64("recv_buffer", uint64(h.ReceiveBufferSize)),
				slog.Uint64("send_buffer", uint64(h.SendBufferSize)),
				slog.Uint64("max_message_size", uint64(h.MaxMessageSize)),
				slog.Uint64("max_chunk_count", uint64(h.MaxChunkCount)),
			)
		}
		if h.StatusCode != nil {
			attrs = append(attrs, slog.String("status", statusHex(*h.StatusCode)))
		}
		if h.Reason != "" {
			attrs = append(attrs, slog.String("reason", h.Reason))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
			slog.Bool("break", event.Error.Break),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.String("error_code", statusHex(*event.Error.Code)))
		}
	}

	a.logger.LogAttrs(ctx, level, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
