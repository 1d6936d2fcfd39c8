package transport

import (
	"fmt"
	"strings"
)

// Endpoint schemes.
const (
	SchemeTCP       = "opc.tcp"
	SchemeWS        = "ws"
	SchemeWebSocket = "websocket"
	SchemeFake      = "fake"
)

// BindingFor returns the socket binding for a scheme. Server-side "fake"
// is not supported.
func BindingFor(scheme string, server bool) (Binding, error) {
	switch strings.ToLower(scheme) {
	case SchemeTCP:
		return &TCPBinding{}, nil
	case SchemeWS, SchemeWebSocket:
		return &WebSocketBinding{}, nil
	case SchemeFake:
		if !server {
			return fakeBinding{}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
}

// NewClient returns a client connection whose binding matches the scheme
// of endpointURL.
func NewClient(endpointURL string, config ConnectionConfig) (*Connection, error) {
	ep, err := ParseEndpointURL(endpointURL)
	if err != nil {
		return nil, err
	}
	binding, err := BindingFor(ep.Protocol, false)
	if err != nil {
		return nil, err
	}
	return NewConnection(binding, config), nil
}

// NewServer returns a listener for scheme ("opc.tcp", "ws" or "websocket").
func NewServer(scheme string, config ListenerConfig) (*Listener, error) {
	binding, err := BindingFor(scheme, true)
	if err != nil {
		return nil, err
	}
	return NewListener(binding, config), nil
}
