package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxStringLength bounds decoded strings so a corrupt length prefix cannot
// trigger a huge allocation.
const MaxStringLength = 4096

// Codec errors.
var (
	// ErrShortBuffer indicates the payload ended before a field was complete.
	ErrShortBuffer = errors.New("buffer too short")

	// ErrStringTooLong indicates a string longer than MaxStringLength.
	ErrStringTooLong = errors.New("string too long")
)

// Encoder appends little-endian primitives to a byte slice.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder that appends to buf.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// PutUint32 appends v.
func (e *Encoder) PutUint32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// PutInt32 appends v.
func (e *Encoder) PutInt32(v int32) {
	e.PutUint32(uint32(v))
}

// PutString appends a length-prefixed string. The empty string is written
// as a null string.
func (e *Encoder) PutString(s string) {
	if s == "" {
		e.PutInt32(-1)
		return
	}
	e.PutInt32(int32(len(s)))
	e.buf = append(e.buf, s...)
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// StringSize returns the encoded size of s.
func StringSize(s string) int {
	return 4 + len(s)
}

// Decoder reads little-endian primitives from a byte slice.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder creates a decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Uint32 reads a uint32.
func (d *Decoder) Uint32() (uint32, error) {
	if d.Remaining() < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes at offset %d", ErrShortBuffer, d.off)
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v, nil
}

// Int32 reads an int32.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// String reads a length-prefixed string. A null string decodes as "".
func (d *Decoder) String() (string, error) {
	n, err := d.Int32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", nil
	}
	if n > MaxStringLength {
		return "", fmt.Errorf("%w: %d", ErrStringTooLong, n)
	}
	if d.Remaining() < int(n) {
		return "", fmt.Errorf("%w: need %d bytes at offset %d", ErrShortBuffer, n, d.off)
	}
	s := string(d.buf[d.off : d.off+int(n)])
	d.off += int(n)
	return s, nil
}

// Skip advances the read offset by n bytes.
func (d *Decoder) Skip(n int) error {
	if d.Remaining() < n {
		return fmt.Errorf("%w: cannot skip %d bytes at offset %d", ErrShortBuffer, n, d.off)
	}
	d.off += n
	return nil
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}
