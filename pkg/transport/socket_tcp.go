package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPBinding carries chunks over raw TCP (opc.tcp://).
type TCPBinding struct {
	// KeepAlive is the TCP keep-alive period. 0 uses the OS default.
	KeepAlive time.Duration
}

// Name implements Binding.
func (b *TCPBinding) Name() string {
	return "tcp"
}

// Dial implements Binding.
func (b *TCPBinding) Dial(ctx context.Context, ep Endpoint) (Socket, error) {
	dialer := &net.Dialer{KeepAlive: b.KeepAlive}
	conn, err := dialer.DialContext(ctx, "tcp", ep.HostPort())
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

// Listen implements Binding.
func (b *TCPBinding) Listen(ctx context.Context, address, _ string) (SocketListener, error) {
	lc := net.ListenConfig{KeepAlive: b.KeepAlive}
	l, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return &tcpListener{l: l}, nil
}

type tcpListener struct {
	l net.Listener
}

func (t *tcpListener) Accept() (Socket, error) {
	conn, err := t.l.Accept()
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

func (t *tcpListener) Close() error {
	return t.l.Close()
}

func (t *tcpListener) Addr() net.Addr {
	return t.l.Addr()
}
