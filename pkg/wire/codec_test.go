package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncoderPrimitives(t *testing.T) {
	e := NewEncoder(nil)
	e.PutUint32(0x01020304)
	e.PutInt32(-1)
	e.PutString("ab")
	e.PutString("")

	want := []byte{
		0x04, 0x03, 0x02, 0x01,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x02, 0x00, 0x00, 0x00, 'a', 'b',
		0xFF, 0xFF, 0xFF, 0xFF,
	}
	if !bytes.Equal(e.Bytes(), want) {
		t.Errorf("encoded = %x, want %x", e.Bytes(), want)
	}
	if e.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", e.Len(), len(want))
	}

	d := NewDecoder(e.Bytes())
	if v, err := d.Uint32(); err != nil || v != 0x01020304 {
		t.Errorf("Uint32() = %x, %v", v, err)
	}
	if v, err := d.Int32(); err != nil || v != -1 {
		t.Errorf("Int32() = %d, %v", v, err)
	}
	if s, err := d.String(); err != nil || s != "ab" {
		t.Errorf("String() = %q, %v", s, err)
	}
	if s, err := d.String(); err != nil || s != "" {
		t.Errorf("null String() = %q, %v", s, err)
	}
	if d.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", d.Remaining())
	}
}

func TestDecoderShortBuffer(t *testing.T) {
	d := NewDecoder([]byte{0x01, 0x02})
	if _, err := d.Uint32(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Uint32: expected ErrShortBuffer, got %v", err)
	}

	// Length prefix claims 10 bytes, only 2 follow.
	d = NewDecoder([]byte{0x0A, 0x00, 0x00, 0x00, 'h', 'i'})
	if _, err := d.String(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("String: expected ErrShortBuffer, got %v", err)
	}

	d = NewDecoder([]byte{0x01})
	if err := d.Skip(2); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Skip: expected ErrShortBuffer, got %v", err)
	}
}

func TestDecoderStringTooLong(t *testing.T) {
	e := NewEncoder(nil)
	e.PutString(strings.Repeat("x", MaxStringLength+1))

	d := NewDecoder(e.Bytes())
	if _, err := d.String(); !errors.Is(err, ErrStringTooLong) {
		t.Errorf("expected ErrStringTooLong, got %v", err)
	}
}

func TestStringSize(t *testing.T) {
	if n := StringSize("opc.tcp://localhost:4840"); n != 28 {
		t.Errorf("StringSize() = %d, want 28", n)
	}
}
