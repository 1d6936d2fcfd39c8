package wire

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusCodeString(t *testing.T) {
	tests := []struct {
		code StatusCode
		want string
	}{
		{StatusGood, "Good"},
		{StatusBadTimeout, "BadTimeout"},
		{StatusBadTcpMessageTooLarge, "BadTcpMessageTooLarge"},
		{StatusBadTcpEndpointURLInvalid, "BadTcpEndpointUrlInvalid"},
		{StatusBadProtocolVersionUnsupported, "BadProtocolVersionUnsupported"},
		{StatusCode(0x80FF0000), "StatusCode(0x80FF0000)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusCodeSeverity(t *testing.T) {
	if !StatusGood.IsGood() || StatusGood.IsBad() {
		t.Error("Good should be good")
	}
	if StatusBadDisconnect.IsGood() || !StatusBadDisconnect.IsBad() {
		t.Error("BadDisconnect should be bad")
	}
	if StatusCode(0x12345678).Description() != "Unknown status code." {
		t.Error("unknown code should have a generic description")
	}
}

func TestStatusError(t *testing.T) {
	err := NewStatusError(StatusBadTimeout, "HEL/ACK transaction")
	if got := err.Error(); got != "BadTimeout: HEL/ACK transaction" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewStatusError(StatusBadTimeout, "").Error(); got != "BadTimeout" {
		t.Errorf("Error() without reason = %q", got)
	}

	wrapped := fmt.Errorf("connect: %w", err)
	if !errors.Is(wrapped, NewStatusError(StatusBadTimeout, "")) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(wrapped, NewStatusError(StatusBadDisconnect, "")) {
		t.Error("errors.Is should not match a different code")
	}
	if StatusOf(wrapped) != StatusBadTimeout {
		t.Errorf("StatusOf() = %s", StatusOf(wrapped))
	}
	if StatusOf(nil) != StatusGood {
		t.Error("StatusOf(nil) should be Good")
	}
	if StatusOf(errors.New("x")) != StatusBadUnexpectedError {
		t.Error("StatusOf(plain) should be BadUnexpectedError")
	}
}
