// Package xhttp exposes the client builder.
package xhttp

import (
	"fmt"

	"github.com/adamwoolhether/xhttp/client"
	"github.com/adamwoolhether/xhttp/config"
)

// NewClient instantiates a new *client.Client using
// [client.DefaultConfig] and the provided options.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(client.DefaultConfig(), opts...)
}

// NewClientFromConfig loads the configuration with [config.Load] and
// builds a client from it.
func NewClientFromConfig(loadOpts []config.Option, opts ...client.Option) (*client.Client, error) {
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return client.Build(cfg, opts...)
}
