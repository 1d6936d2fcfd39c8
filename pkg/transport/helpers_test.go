package transport

import (
	"testing"

	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// makeChunk builds a final chunk of msgType carrying payload.
func makeChunk(t *testing.T, msgType wire.MessageType, payload []byte) []byte {
	t.Helper()
	buf := make([]byte, wire.HeaderSize+len(payload))
	if err := wire.PutHeader(buf, wire.Header{
		MessageType: msgType,
		ChunkType:   wire.ChunkFinal,
		Length:      uint32(len(buf)),
	}); err != nil {
		t.Fatalf("PutHeader failed: %v", err)
	}
	copy(buf[wire.HeaderSize:], payload)
	return buf
}

func concat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
