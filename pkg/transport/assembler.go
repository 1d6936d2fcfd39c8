package transport

import (
	"errors"
	"fmt"

	"github.com/valyala/bytebufferpool"
)

// Assembler errors.
var (
	// ErrChunkTooLarge indicates a declared chunk length above the assembler limit.
	ErrChunkTooLarge = errors.New("chunk too large")

	// ErrChunkTooSmall indicates a declared chunk length shorter than its header.
	ErrChunkTooSmall = errors.New("chunk too small")
)

// HeaderReader parses the declared total length of a chunk from a prefix of
// at least MinimumSize bytes.
type HeaderReader func(prefix []byte) (length int, err error)

// AssemblerConfig configures a PacketAssembler.
type AssemblerConfig struct {
	// ReadHeader extracts the declared chunk length.
	ReadHeader HeaderReader

	// MinimumSize is the number of bytes needed before ReadHeader can run.
	MinimumSize int

	// MaxChunkSize rejects longer chunks. 0 disables the check.
	MaxChunkSize int
}

// PacketAssembler rebuilds complete chunks from arbitrarily split reads.
// Chunks are emitted in arrival order, one complete buffer per emission.
// Not safe for concurrent use.
type PacketAssembler struct {
	config AssemblerConfig
	buf    *bytebufferpool.ByteBuffer

	// expected is the declared length of the chunk in progress, 0 if the
	// header has not been read yet.
	expected int
}

// NewPacketAssembler creates an assembler.
func NewPacketAssembler(config AssemblerConfig) *PacketAssembler {
	if config.MinimumSize <= 0 {
		config.MinimumSize = 1
	}
	return &PacketAssembler{
		config: config,
		buf:    bytebufferpool.Get(),
	}
}

// SetMaxChunkSize changes the upper bound for chunks not yet started.
func (a *PacketAssembler) SetMaxChunkSize(n int) {
	a.config.MaxChunkSize = n
}

// Feed appends data and calls emit for every chunk it completes. The slice
// passed to emit is owned by the callee. After an error the assembler state
// is undefined and the stream must be abandoned.
func (a *PacketAssembler) Feed(data []byte, emit func(chunk []byte)) error {
	if a.buf == nil {
		return fmt.Errorf("packet assembler released")
	}
	_, _ = a.buf.Write(data)

	for {
		if a.expected == 0 {
			if a.buf.Len() < a.config.MinimumSize {
				return nil
			}
			n, err := a.config.ReadHeader(a.buf.B[:a.config.MinimumSize])
			if err != nil {
				return err
			}
			if n < a.config.MinimumSize {
				return fmt.Errorf("%w: declared %d below header size %d", ErrChunkTooSmall, n, a.config.MinimumSize)
			}
			if a.config.MaxChunkSize > 0 && n > a.config.MaxChunkSize {
				return fmt.Errorf("%w: %d > %d", ErrChunkTooLarge, n, a.config.MaxChunkSize)
			}
			a.expected = n
		}

		if a.buf.Len() < a.expected {
			return nil
		}

		chunk := make([]byte, a.expected)
		copy(chunk, a.buf.B[:a.expected])
		rest := copy(a.buf.B, a.buf.B[a.expected:])
		a.buf.B = a.buf.B[:rest]
		a.expected = 0

		emit(chunk)
		if a.buf == nil {
			// Released from within emit.
			return nil
		}
	}
}

// Buffered returns the number of bytes held for an incomplete chunk.
func (a *PacketAssembler) Buffered() int {
	if a.buf == nil {
		return 0
	}
	return a.buf.Len()
}

// Release returns the accumulation buffer to the pool.
func (a *PacketAssembler) Release() {
	if a.buf != nil {
		bytebufferpool.Put(a.buf)
		a.buf = nil
	}
	a.expected = 0
}
