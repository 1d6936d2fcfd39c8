// Package config loads the YAML configuration of the uacp command-line tools.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uacp-protocol/uacp-go/pkg/transport"
)

// Config is the top-level configuration file.
type Config struct {
	Endpoint  EndpointConfig  `yaml:"endpoint"`
	Transport TransportConfig `yaml:"transport"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// EndpointConfig is the endpoint a client connects to.
type EndpointConfig struct {
	URL string `yaml:"url"`
}

// TransportConfig holds the per-connection settings.
type TransportConfig struct {
	ProtocolVersion   uint32        `yaml:"protocol_version"`
	ReceiveBufferSize uint32        `yaml:"receive_buffer_size"`
	SendBufferSize    uint32        `yaml:"send_buffer_size"`
	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`
	DialTimeout       time.Duration `yaml:"dial_timeout"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Scheme         string       `yaml:"scheme"`
	Address        string       `yaml:"address"`
	Path           string       `yaml:"path"`
	MaxConnections int          `yaml:"max_connections"`
	Limits         LimitsConfig `yaml:"limits"`
}

// LimitsConfig bounds what the server acknowledges.
type LimitsConfig struct {
	MaxReceiveBufferSize uint32 `yaml:"max_receive_buffer_size"`
	MaxSendBufferSize    uint32 `yaml:"max_send_buffer_size"`
	MaxMessageSize       uint32 `yaml:"max_message_size"`
	MaxChunkCount        uint32 `yaml:"max_chunk_count"`
}

// LogConfig selects operational and protocol logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of text, json, zap.
	Format string `yaml:"format"`

	// ProtocolLog is the path of a protocol event capture file (.ulog).
	// Empty disables capture.
	ProtocolLog string `yaml:"protocol_log"`
}

// MetricsConfig exposes the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	limits := transport.DefaultLimits()
	conn := transport.DefaultConnectionConfig()
	return &Config{
		Endpoint: EndpointConfig{
			URL: fmt.Sprintf("opc.tcp://localhost:%d", transport.DefaultPort),
		},
		Transport: TransportConfig{
			ReceiveBufferSize: conn.ReceiveBufferSize,
			SendBufferSize:    conn.SendBufferSize,
			HandshakeTimeout:  conn.HandshakeTimeout,
			DialTimeout:       conn.DialTimeout,
		},
		Server: ServerConfig{
			Scheme:         transport.SchemeTCP,
			Address:        fmt.Sprintf(":%d", transport.DefaultPort),
			Path:           "/",
			MaxConnections: transport.DefaultMaxConnections,
			Limits: LimitsConfig{
				MaxReceiveBufferSize: limits.MaxReceiveBufferSize,
				MaxSendBufferSize:    limits.MaxSendBufferSize,
				MaxMessageSize:       limits.MaxMessageSize,
				MaxChunkCount:        limits.MaxChunkCount,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9484",
			Path: "/metrics",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Endpoint.URL != "" && !transport.IsValidEndpointURL(c.Endpoint.URL) {
		errs = append(errs, fmt.Errorf("endpoint.url: invalid endpoint %q", c.Endpoint.URL))
	}
	if c.Transport.ReceiveBufferSize != 0 && c.Transport.ReceiveBufferSize < transport.MinBufferSize {
		errs = append(errs, fmt.Errorf("transport.receive_buffer_size: must be at least %d", transport.MinBufferSize))
	}
	if c.Transport.SendBufferSize != 0 && c.Transport.SendBufferSize < transport.MinBufferSize {
		errs = append(errs, fmt.Errorf("transport.send_buffer_size: must be at least %d", transport.MinBufferSize))
	}
	if c.Transport.HandshakeTimeout < 0 {
		errs = append(errs, errors.New("transport.handshake_timeout: must not be negative"))
	}
	if c.Transport.DialTimeout < 0 {
		errs = append(errs, errors.New("transport.dial_timeout: must not be negative"))
	}

	switch c.Server.Scheme {
	case transport.SchemeTCP, transport.SchemeWS, transport.SchemeWebSocket:
	default:
		errs = append(errs, fmt.Errorf("server.scheme: unsupported scheme %q", c.Server.Scheme))
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, errors.New("server.max_connections: must not be negative"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json", "zap":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr: required when metrics are enabled"))
	}

	return errors.Join(errs...)
}

// ConnectionConfig converts the transport section.
func (c *Config) ConnectionConfig() transport.ConnectionConfig {
	return transport.ConnectionConfig{
		ProtocolVersion:   c.Transport.ProtocolVersion,
		ReceiveBufferSize: c.Transport.ReceiveBufferSize,
		SendBufferSize:    c.Transport.SendBufferSize,
		HandshakeTimeout:  c.Transport.HandshakeTimeout,
		DialTimeout:       c.Transport.DialTimeout,
		Limits: transport.Limits{
			MaxReceiveBufferSize: c.Server.Limits.MaxReceiveBufferSize,
			MaxSendBufferSize:    c.Server.Limits.MaxSendBufferSize,
			MaxMessageSize:       c.Server.Limits.MaxMessageSize,
			MaxChunkCount:        c.Server.Limits.MaxChunkCount,
		},
	}
}

// ListenerConfig converts the server and transport sections.
func (c *Config) ListenerConfig() transport.ListenerConfig {
	return transport.ListenerConfig{
		Address:        c.Server.Address,
		Path:           c.Server.Path,
		MaxConnections: c.Server.MaxConnections,
		Connection:     c.ConnectionConfig(),
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}
