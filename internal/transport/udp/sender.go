// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"dtmf/internal/log"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("udp sender is closed")

// UDPSender writes level packets to one connected UDP peer. It satisfies
// PacketSender and is safe for concurrent use.
type UDPSender struct {
	target string
	conn   *net.UDPConn

	mu     sync.Mutex
	closed bool
}

// NewUDPSender dials target ("host:port"). UDP is connectionless, so an
// absent listener only shows up later as write errors.
func NewUDPSender(target string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve level target %q: %w", target, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial level target %q: %w", target, err)
	}

	log.Debugf("UDP: level packets from %s to %s", conn.LocalAddr(), conn.RemoteAddr())
	return &UDPSender{target: target, conn: conn}, nil
}

// Target returns the address the sender was created with.
func (s *UDPSender) Target() string {
	return s.target
}

// Send writes packet as a single datagram.
func (s *UDPSender) Send(packet []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSenderClosed
	}
	if _, err := s.conn.Write(packet); err != nil {
		return fmt.Errorf("failed to send level packet to %s: %w", s.target, err)
	}
	return nil
}

// Close releases the socket. Later calls are no-ops.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close level socket: %w", err)
	}
	return nil
}
