package client

import (
	"fmt"
	"time"
)

// Default configuration values used by [DefaultConfig].
const (
	DefaultStatusCode               = -1
	DefaultConnectTimeout           = 10 * time.Second
	DefaultSocketTimeout            = 30 * time.Second
	DefaultConnectionRequestTimeout = 10 * time.Second
)

// Config holds the scalar settings of a [Client]. It is copied at
// [Build] and never changes for the lifetime of the client.
//
// A zero timeout leaves that phase unbounded.
type Config struct {
	// DefaultStatusCode is reported by every call that fails before a
	// response is materialized.
	DefaultStatusCode int `mapstructure:"default_status_code" yaml:"default_status_code" validate:"gte=-1,lte=999"`

	// ConnectTimeout bounds dialing, including the TLS handshake.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"gte=0"`

	// SocketTimeout bounds inactivity while reading from an established
	// connection.
	SocketTimeout time.Duration `mapstructure:"socket_timeout" yaml:"socket_timeout" validate:"gte=0"`

	// ConnectionRequestTimeout bounds the wait for a connection to become
	// available before dialing or reuse begins.
	ConnectionRequestTimeout time.Duration `mapstructure:"connection_request_timeout" yaml:"connection_request_timeout" validate:"gte=0"`
}

// DefaultConfig returns a Config with every timeout bounded.
func DefaultConfig() Config {
	return Config{
		DefaultStatusCode:        DefaultStatusCode,
		ConnectTimeout:           DefaultConnectTimeout,
		SocketTimeout:            DefaultSocketTimeout,
		ConnectionRequestTimeout: DefaultConnectionRequestTimeout,
	}
}

// Validate checks cfg against its declared constraints.
func (cfg Config) Validate() error {
	if err := validateStruct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// unbounded lists the names of timeouts left at zero.
func (cfg Config) unbounded() []string {
	var names []string
	if cfg.ConnectTimeout == 0 {
		names = append(names, "connect_timeout")
	}
	if cfg.SocketTimeout == 0 {
		names = append(names, "socket_timeout")
	}
	if cfg.ConnectionRequestTimeout == 0 {
		names = append(names, "connection_request_timeout")
	}

	return names
}
