package transport

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uacp-protocol/uacp-go/pkg/log"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// MaxLogFrameDataSize is the maximum chunk data size to include in logs (4 KB).
// Larger chunks are truncated in log events to avoid excessive memory usage.
const MaxLogFrameDataSize = 4096

// Statistics counts completed chunks in both directions.
// Safe for concurrent use.
type Statistics struct {
	bytesRead     atomic.Uint64
	bytesWritten  atomic.Uint64
	chunksRead    atomic.Uint64
	chunksWritten atomic.Uint64
}

func (s *Statistics) read(chunk []byte) {
	s.bytesRead.Add(uint64(len(chunk)))
	s.chunksRead.Add(1)
}

func (s *Statistics) write(chunk []byte) {
	s.bytesWritten.Add(uint64(len(chunk)))
	s.chunksWritten.Add(1)
}

// BytesRead returns the total size of completed inbound chunks.
func (s *Statistics) BytesRead() uint64 { return s.bytesRead.Load() }

// BytesWritten returns the total size of written chunks.
func (s *Statistics) BytesWritten() uint64 { return s.bytesWritten.Load() }

// ChunksRead returns the number of completed inbound chunks.
func (s *Statistics) ChunksRead() uint64 { return s.chunksRead.Load() }

// ChunksWritten returns the number of written chunks.
func (s *Statistics) ChunksWritten() uint64 { return s.chunksWritten.Load() }

// ChunkWriter is the transport write path below the serializer.
type ChunkWriter func(chunk []byte) error

// ChunkReader receives each complete inbound chunk.
type ChunkReader func(chunk []byte)

// ChunkSerializer frames outbound chunks and reassembles inbound ones.
//
// The write side (CreateChunk, Write) is safe for concurrent use. The read
// side must be fed from a single goroutine.
type ChunkSerializer struct {
	stats *Statistics

	writeMu sync.Mutex
	pending []byte
	writeFn ChunkWriter

	assembler *PacketAssembler
	readFn    ChunkReader

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewChunkSerializer creates a serializer counting into stats.
// Init must be called before use.
func NewChunkSerializer(stats *Statistics) *ChunkSerializer {
	if stats == nil {
		stats = &Statistics{}
	}
	return &ChunkSerializer{stats: stats}
}

// Init wires the read and write paths and creates the reassembler.
// maxChunkSize bounds inbound chunks; 0 disables the bound.
func (s *ChunkSerializer) Init(read ChunkReader, write ChunkWriter, maxChunkSize int) {
	s.readFn = read

	s.writeMu.Lock()
	s.writeFn = write
	s.pending = nil
	s.writeMu.Unlock()

	if s.assembler != nil {
		s.assembler.Release()
	}
	s.assembler = NewPacketAssembler(AssemblerConfig{
		ReadHeader:   readChunkLength,
		MinimumSize:  wire.HeaderSize,
		MaxChunkSize: maxChunkSize,
	})
}

// SetLogger configures protocol logging for this serializer.
// Pass nil to disable logging.
func (s *ChunkSerializer) SetLogger(logger log.Logger, connID string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.logger = logger
	s.connID = connID
}

// SetMaxChunkSize updates the inbound bound, typically after negotiation.
func (s *ChunkSerializer) SetMaxChunkSize(n int) {
	if s.assembler != nil {
		s.assembler.SetMaxChunkSize(n)
	}
}

// Stats returns the counters.
func (s *ChunkSerializer) Stats() *Statistics {
	return s.stats
}

// CreateChunk allocates a chunk of payloadLen bytes plus header, writes the
// header and holds the buffer as pending until Write is called with it.
func (s *ChunkSerializer) CreateChunk(msgType wire.MessageType, chunkType wire.ChunkType, payloadLen int) ([]byte, error) {
	if !msgType.Valid() {
		return nil, fmt.Errorf("%w: %q", wire.ErrInvalidMessageType, string(msgType))
	}
	if !chunkType.Valid() {
		return nil, fmt.Errorf("%w: %q", wire.ErrInvalidChunkType, byte(chunkType))
	}
	if payloadLen < 0 {
		return nil, fmt.Errorf("%w: negative payload length %d", wire.ErrInvalidLength, payloadLen)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeFn == nil {
		return nil, ErrNotInitialized
	}
	if s.pending != nil {
		return nil, ErrChunkPending
	}

	buf := make([]byte, wire.HeaderSize+payloadLen)
	if err := wire.PutHeader(buf, wire.Header{
		MessageType: msgType,
		ChunkType:   chunkType,
		Length:      uint32(len(buf)),
	}); err != nil {
		return nil, err
	}
	s.pending = buf
	return buf, nil
}

// Write validates chunk and forwards it to the write path. If a chunk is
// pending, chunk must be that buffer. Counters change only when the write
// path succeeds.
func (s *ChunkSerializer) Write(chunk []byte) error {
	h, err := wire.ReadHeader(chunk)
	if err != nil {
		return err
	}
	if int(h.Length) != len(chunk) {
		return fmt.Errorf("%w: header says %d, buffer has %d", wire.ErrInvalidLength, h.Length, len(chunk))
	}
	if !h.ChunkType.Valid() {
		return fmt.Errorf("%w: %q", wire.ErrInvalidChunkType, byte(h.ChunkType))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeFn == nil {
		return ErrNotInitialized
	}
	if s.pending != nil && !sameBuffer(s.pending, chunk) {
		return ErrChunkMismatch
	}
	s.pending = nil

	if err := s.writeFn(chunk); err != nil {
		return err
	}
	s.stats.write(chunk)

	if s.logger != nil {
		s.logger.Log(s.makeFrameEvent(chunk, h, log.DirectionOut))
	}
	return nil
}

// Read feeds raw socket bytes to the reassembler.
func (s *ChunkSerializer) Read(data []byte) error {
	if s.assembler == nil {
		return ErrNotInitialized
	}
	if len(data) == 0 {
		return nil
	}

	err := s.assembler.Feed(data, s.onChunk)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrChunkTooLarge):
		return fmt.Errorf("%w: %w", wire.NewStatusError(wire.StatusBadTcpMessageTooLarge, ""), err)
	case errors.Is(err, ErrChunkTooSmall):
		return fmt.Errorf("%w: %w", wire.NewStatusError(wire.StatusBadCommunicationError, ""), err)
	default:
		return err
	}
}

// Release frees the reassembly buffer and detaches the write path.
func (s *ChunkSerializer) Release() {
	s.writeMu.Lock()
	s.writeFn = nil
	s.pending = nil
	s.writeMu.Unlock()

	if s.assembler != nil {
		s.assembler.Release()
		s.assembler = nil
	}
}

func (s *ChunkSerializer) onChunk(chunk []byte) {
	s.stats.read(chunk)
	if s.logger != nil {
		h, _ := wire.ReadHeader(chunk)
		s.logger.Log(s.makeFrameEvent(chunk, h, log.DirectionIn))
	}
	if s.readFn != nil {
		s.readFn(chunk)
	}
}

// makeFrameEvent creates a log event for a chunk.
func (s *ChunkSerializer) makeFrameEvent(data []byte, h wire.Header, direction log.Direction) log.Event {
	frameData := data
	truncated := false

	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:        len(data),
			Data:        frameData,
			Truncated:   truncated,
			MessageType: string(h.MessageType),
			ChunkType:   h.ChunkType.String(),
		},
	}
}

// readChunkLength parses the declared length from a header prefix and
// rejects unknown message or chunk types.
func readChunkLength(prefix []byte) (int, error) {
	h, err := wire.ReadHeader(prefix)
	if err != nil {
		return 0, err
	}
	if !h.MessageType.Valid() {
		return 0, wire.NewStatusError(wire.StatusBadTcpMessageTypeInvalid,
			fmt.Sprintf("unknown message type %q", string(h.MessageType)))
	}
	if !h.ChunkType.Valid() {
		return 0, wire.NewStatusError(wire.StatusBadTcpMessageTypeInvalid,
			fmt.Sprintf("unknown chunk type %q", byte(h.ChunkType)))
	}
	return int(h.Length), nil
}

func sameBuffer(a, b []byte) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}
