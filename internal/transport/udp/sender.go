package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	applog "ffaa/internal/log"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("udp: sender closed")

// UDPSender writes datagrams to one connected peer and counts what it sent.
// Send and Close may be called from different goroutines.
type UDPSender struct {
	mu      sync.Mutex
	conn    *net.UDPConn // nil once closed
	target  string
	packets uint64
	bytes   uint64
}

// NewUDPSender dials targetAddress ("host:port") from an ephemeral local
// port.
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	raddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %q: %w", targetAddress, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("udp: dial %s: %w", raddr, err)
	}

	applog.Infof("UDP Sender: Sending to %s from %s", conn.RemoteAddr(), conn.LocalAddr())
	return &UDPSender{conn: conn, target: raddr.String()}, nil
}

// Send writes data as a single datagram. A partial write is an error.
func (s *UDPSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrSenderClosed
	}
	n, err := s.conn.Write(data)
	if err != nil {
		return fmt.Errorf("udp: send to %s: %w", s.target, err)
	}
	if n != len(data) {
		return fmt.Errorf("udp: short write to %s: %d of %d bytes", s.target, n, len(data))
	}
	s.packets++
	s.bytes += uint64(n)
	return nil
}

// Stats returns the datagrams and bytes sent so far.
func (s *UDPSender) Stats() (packets, bytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packets, s.bytes
}

// Close releases the socket. Later calls return nil.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	applog.Infof("UDP Sender: Closed %s after %d packets (%d bytes)", s.target, s.packets, s.bytes)
	if err != nil {
		return fmt.Errorf("udp: close %s: %w", s.target, err)
	}
	return nil
}
