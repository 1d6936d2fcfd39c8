package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/gorilla/websocket"
)

func TestClassifySocketError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      SocketErrorClass
		wantBreak bool
	}{
		{"nil", nil, SocketErrorNone, false},
		{"eof", io.EOF, SocketErrorEnd, true},
		{"wrapped eof", fmt.Errorf("read: %w", io.EOF), SocketErrorEnd, true},
		{"reset", &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, SocketErrorReset, true},
		{"broken pipe", &net.OpError{Op: "write", Net: "tcp", Err: os.NewSyscallError("write", syscall.EPIPE)}, SocketErrorBrokenPipe, true},
		{"local close", fmt.Errorf("read: %w", net.ErrClosed), SocketErrorClosed, false},
		{"ws normal close", &websocket.CloseError{Code: websocket.CloseNormalClosure}, SocketErrorEnd, true},
		{"ws abnormal close", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, SocketErrorReset, true},
		{"other", errors.New("boom"), SocketErrorOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySocketError(tt.err); got != tt.want {
				t.Errorf("ClassifySocketError = %s, want %s", got, tt.want)
			}
			if got := IsConnectionBreak(tt.err); got != tt.wantBreak {
				t.Errorf("IsConnectionBreak = %v, want %v", got, tt.wantBreak)
			}
		})
	}
}
