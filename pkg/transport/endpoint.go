package transport

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
)

// Endpoint is a parsed endpoint URL of the form scheme://host:port[/path].
type Endpoint struct {
	// Protocol is the scheme without "://", e.g. "opc.tcp" or "ws".
	Protocol string

	Hostname string
	Port     int

	// Address is the path including the leading slash, or "".
	Address string
}

var endpointPattern = regexp.MustCompile(`^([a-z.]*)://([a-zA-Z_\-.0-9]+):([0-9]+)(/.*)?$`)

// ParseEndpointURL parses an endpoint URL.
func ParseEndpointURL(endpointURL string) (Endpoint, error) {
	m := endpointPattern.FindStringSubmatch(endpointURL)
	if m == nil {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrInvalidEndpointURL, endpointURL)
	}
	port, err := strconv.Atoi(m[3])
	if err != nil || port > 65535 {
		return Endpoint{}, fmt.Errorf("%w: port %q out of range", ErrInvalidEndpointURL, m[3])
	}
	return Endpoint{
		Protocol: m[1],
		Hostname: m[2],
		Port:     port,
		Address:  m[4],
	}, nil
}

// IsValidEndpointURL reports whether endpointURL parses.
func IsValidEndpointURL(endpointURL string) bool {
	_, err := ParseEndpointURL(endpointURL)
	return err == nil
}

// HostPort returns "host:port" suitable for net.Dial.
func (e Endpoint) HostPort() string {
	return net.JoinHostPort(e.Hostname, strconv.Itoa(e.Port))
}

// String rebuilds the URL.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s%s", e.Protocol, e.HostPort(), e.Address)
}
