package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects events from a capture. Zero fields select everything.
type Filter struct {
	ConnectionID string
	RemoteAddr   string
	EndpointURL  string

	Direction *Direction
	Layer     *Layer
	Category  *Category
	Role      *Role

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time
}

// Match reports whether ev satisfies every set criterion.
func (f Filter) Match(ev Event) bool {
	switch {
	case f.ConnectionID != "" && ev.ConnectionID != f.ConnectionID,
		f.RemoteAddr != "" && ev.RemoteAddr != f.RemoteAddr,
		f.EndpointURL != "" && ev.EndpointURL != f.EndpointURL:
		return false
	case f.Direction != nil && ev.Direction != *f.Direction,
		f.Layer != nil && ev.Layer != *f.Layer,
		f.Category != nil && ev.Category != *f.Category,
		f.Role != nil && ev.LocalRole != *f.Role:
		return false
	case f.TimeStart != nil && ev.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !ev.Timestamp.Before(*f.TimeEnd):
		return false
	}
	return true
}

// Reader streams events from a capture file.
type Reader struct {
	src    io.Closer
	dec    *cbor.Decoder
	filter Filter
}

// NewReader opens a capture and yields every event in it.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a capture and yields the events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{src: f, dec: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the
// capture. A record cut short by a crashed writer also ends the capture.
func (r *Reader) Next() (Event, error) {
	for {
		var ev Event
		err := r.dec.Decode(&ev)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, err
		}
		if r.filter.Match(ev) {
			return ev, nil
		}
	}
}

// Close releases the capture file.
func (r *Reader) Close() error {
	return r.src.Close()
}
