package transport

import (
	"errors"
	"testing"
)

func TestParseEndpointURL(t *testing.T) {
	tests := []struct {
		url  string
		want Endpoint
	}{
		{"opc.tcp://localhost:4840", Endpoint{Protocol: "opc.tcp", Hostname: "localhost", Port: 4840}},
		{"opc.tcp://10.0.0.1:48010/UA/Server", Endpoint{Protocol: "opc.tcp", Hostname: "10.0.0.1", Port: 48010, Address: "/UA/Server"}},
		{"ws://my_host-1.example.com:80/", Endpoint{Protocol: "ws", Hostname: "my_host-1.example.com", Port: 80, Address: "/"}},
		{"fake://x:1", Endpoint{Protocol: "fake", Hostname: "x", Port: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseEndpointURL(tt.url)
			if err != nil {
				t.Fatalf("ParseEndpointURL failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.url {
				t.Errorf("String() = %q, want %q", got.String(), tt.url)
			}
			if !IsValidEndpointURL(tt.url) {
				t.Error("IsValidEndpointURL = false")
			}
		})
	}
}

func TestParseEndpointURLMalformed(t *testing.T) {
	for _, url := range []string{
		"",
		"localhost:4840",
		"opc.tcp://localhost",
		"opc.tcp://localhost:",
		"opc.tcp://:4840",
		"OPC.TCP://localhost:4840",
		"opc.tcp://local host:4840",
		"opc.tcp://localhost:99999",
	} {
		t.Run(url, func(t *testing.T) {
			if _, err := ParseEndpointURL(url); !errors.Is(err, ErrInvalidEndpointURL) {
				t.Errorf("got %v, want ErrInvalidEndpointURL", err)
			}
			if IsValidEndpointURL(url) {
				t.Error("IsValidEndpointURL = true")
			}
		})
	}
}

func TestEndpointHostPort(t *testing.T) {
	ep := Endpoint{Protocol: "opc.tcp", Hostname: "::1", Port: 4840}
	if got := ep.HostPort(); got != "[::1]:4840" {
		t.Errorf("HostPort = %q", got)
	}
}
