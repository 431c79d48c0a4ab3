// Package qiskit is a client for the IBM Q Experience API.
//
// It lists the available backends and retrieves the configuration and pulse
// defaults that backend calibrations are built from.
package qiskit

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Client represents a concurrent-safe IBM QX API client
type Client struct {
	mu sync.Mutex

	opts     clientOptions
	conn     *Conn
	backends Backends
}

// NewClient returns a IBMQuantumExperience API Client
func NewClient(conn *Conn, options ...ClientOption) *Client {
	var opts clientOptions
	for _, option := range options {
		option(&opts)
	}

	return &Client{
		opts:     opts,
		conn:     conn,
		backends: make(Backends),
	}
}

// Version retrieves the current API version
func (c *Client) Version(ctx context.Context) (float64, error) {
	var v float64
	if err := c.conn.get(ctx, "version", "", &v); err != nil {
		return 0, errors.Wrap(err, "retrieving api version")
	}
	return v, nil
}

// UserID returns the id of the logged in user
func (c *Client) UserID() string {
	return c.conn.UserID()
}
