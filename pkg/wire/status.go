package wire

import (
	"errors"
	"fmt"
)

// StatusCode is a 32-bit protocol status code. The top two bits carry the
// severity: 00 good, 01 uncertain, 10 bad.
type StatusCode uint32

// Status codes used by the connection layer.
const (
	StatusGood                          StatusCode = 0x00000000
	StatusBadUnexpectedError            StatusCode = 0x80010000
	StatusBadInternalError              StatusCode = 0x80020000
	StatusBadCommunicationError         StatusCode = 0x80050000
	StatusBadEncodingError              StatusCode = 0x80060000
	StatusBadDecodingError              StatusCode = 0x80070000
	StatusBadTimeout                    StatusCode = 0x800A0000
	StatusBadTcpServerTooBusy           StatusCode = 0x807D0000
	StatusBadTcpMessageTypeInvalid      StatusCode = 0x807E0000
	StatusBadTcpMessageTooLarge         StatusCode = 0x80800000
	StatusBadTcpNotEnoughResources      StatusCode = 0x80810000
	StatusBadTcpInternalError           StatusCode = 0x80820000
	StatusBadTcpEndpointURLInvalid      StatusCode = 0x80830000
	StatusBadConnectionRejected         StatusCode = 0x80AC0000
	StatusBadDisconnect                 StatusCode = 0x80AD0000
	StatusBadConnectionClosed           StatusCode = 0x80AE0000
	StatusBadProtocolVersionUnsupported StatusCode = 0x80BE0000
)

type statusInfo struct {
	name        string
	description string
}

var statusTable = map[StatusCode]statusInfo{
	StatusGood:                          {"Good", "The operation completed successfully."},
	StatusBadUnexpectedError:            {"BadUnexpectedError", "An unexpected error occurred."},
	StatusBadInternalError:              {"BadInternalError", "An internal error occurred as a result of a programming or configuration error."},
	StatusBadCommunicationError:         {"BadCommunicationError", "A low level communication error occurred."},
	StatusBadEncodingError:              {"BadEncodingError", "Encoding halted because of invalid data in the objects being serialized."},
	StatusBadDecodingError:              {"BadDecodingError", "Decoding halted because of invalid data in the stream."},
	StatusBadTimeout:                    {"BadTimeout", "The operation timed out."},
	StatusBadTcpServerTooBusy:           {"BadTcpServerTooBusy", "The server cannot process the request because it is too busy."},
	StatusBadTcpMessageTypeInvalid:      {"BadTcpMessageTypeInvalid", "The type of the message specified in the header invalid."},
	StatusBadTcpMessageTooLarge:         {"BadTcpMessageTooLarge", "The size of the message specified in the header is too large."},
	StatusBadTcpNotEnoughResources:      {"BadTcpNotEnoughResources", "There are not enough resources to process the request."},
	StatusBadTcpInternalError:           {"BadTcpInternalError", "An internal error occurred."},
	StatusBadTcpEndpointURLInvalid:      {"BadTcpEndpointUrlInvalid", "The server does not recognize the QueryString specified."},
	StatusBadConnectionRejected:         {"BadConnectionRejected", "Could not establish a network connection to remote server."},
	StatusBadDisconnect:                 {"BadDisconnect", "The server has disconnected from the client."},
	StatusBadConnectionClosed:           {"BadConnectionClosed", "The network connection has been closed."},
	StatusBadProtocolVersionUnsupported: {"BadProtocolVersionUnsupported", "The applications do not have compatible protocol versions."},
}

// String returns the symbolic name of the status code.
func (s StatusCode) String() string {
	if info, ok := statusTable[s]; ok {
		return info.name
	}
	return fmt.Sprintf("StatusCode(0x%08X)", uint32(s))
}

// Description returns the human-readable description of the status code.
func (s StatusCode) Description() string {
	if info, ok := statusTable[s]; ok {
		return info.description
	}
	return "Unknown status code."
}

// IsGood returns true if the severity bits are good.
func (s StatusCode) IsGood() bool {
	return s&0xC0000000 == 0
}

// IsBad returns true if the severity bits are bad.
func (s StatusCode) IsBad() bool {
	return s&0x80000000 != 0
}

// StatusError is an error carrying a protocol status code.
type StatusError struct {
	Code   StatusCode
	Reason string
}

// NewStatusError creates a StatusError.
func NewStatusError(code StatusCode, reason string) *StatusError {
	return &StatusError{Code: code, Reason: reason}
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Reason == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// Is matches any StatusError with the same code, so callers can write
// errors.Is(err, wire.NewStatusError(wire.StatusBadTimeout, "")).
func (e *StatusError) Is(target error) bool {
	var se *StatusError
	if !errors.As(target, &se) {
		return false
	}
	return se.Code == e.Code
}

// StatusOf extracts the status code from err, or StatusBadUnexpectedError
// when err carries none. A nil error yields StatusGood.
func StatusOf(err error) StatusCode {
	if err == nil {
		return StatusGood
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return StatusBadUnexpectedError
}
