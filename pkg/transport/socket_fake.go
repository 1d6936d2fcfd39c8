package transport

import (
	"context"
	"errors"
)

// errFakeBinding is returned by every fakeBinding operation.
var errFakeBinding = errors.New("fake binding has no sockets")

// fakeBinding backs the "fake" scheme. A connection created on it is never
// valid and its Connect fails immediately.
type fakeBinding struct{}

func (fakeBinding) Name() string {
	return "fake"
}

func (fakeBinding) Dial(context.Context, Endpoint) (Socket, error) {
	return nil, errFakeBinding
}

func (fakeBinding) Listen(context.Context, string, string) (SocketListener, error) {
	return nil, errFakeBinding
}
