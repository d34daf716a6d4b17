// SPDX-License-Identifier: MIT
package transport

import (
	"sync"
	"sync/atomic"
)

// ChannelTransport hands payloads to an in-process consumer such as the
// TUI. Send never blocks: when the buffer is full the payload is dropped
// and counted.
type ChannelTransport struct {
	ch      chan any
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func NewChannelTransport(size int) *ChannelTransport {
	return &ChannelTransport{ch: make(chan any, size)}
}

// C returns the receive side. It is closed by Close.
func (c *ChannelTransport) C() <-chan any {
	return c.ch
}

func (c *ChannelTransport) Send(data any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	select {
	case c.ch <- data:
	default:
		c.dropped.Add(1)
	}
	return nil
}

// Dropped returns how many payloads did not fit the buffer.
func (c *ChannelTransport) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *ChannelTransport) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}

var _ Transport = (*ChannelTransport)(nil)
