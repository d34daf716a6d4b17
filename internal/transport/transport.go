// SPDX-License-Identifier: MIT
package transport

import "errors"

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport closed")

// Transport defines a generic interface for sending decoder events.
// Implementations must be safe for concurrent use and must not block the
// caller for longer than a queue insert.
type Transport interface {
	Send(data any) error
	Close() error
}

// Discard drops every payload.
type Discard struct{}

func (Discard) Send(any) error { return nil }
func (Discard) Close() error   { return nil }

var _ Transport = Discard{}
