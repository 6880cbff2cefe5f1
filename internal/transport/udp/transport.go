package udp

import (
	"sync"

	applog "ffaa/internal/log"
	"ffaa/internal/transport"
)

// Transport implements transport.Transport by sending each frame as one
// UDP packet with its own sequence counter.
type Transport struct {
	sender *UDPSender

	mu     sync.Mutex
	seq    uint32
	packet []byte // Reusable buffer for constructing the binary packet.
}

// NewTransport dials targetAddress.
func NewTransport(targetAddress string) (*Transport, error) {
	sender, err := NewUDPSender(targetAddress)
	if err != nil {
		return nil, err
	}
	return &Transport{sender: sender}, nil
}

// Send packs f and writes it to the target.
func (t *Transport) Send(f transport.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	packet, err := AppendPacket(t.packet[:0], t.seq, f)
	if err != nil {
		return err
	}
	t.packet = packet

	if err := t.sender.Send(packet); err != nil {
		return err
	}
	applog.Debugf("UDP Transport: Sent packet %d (%d bytes)", t.seq, len(packet))
	return nil
}

// Close closes the underlying sender.
func (t *Transport) Close() error {
	return t.sender.Close()
}

var _ transport.Transport = (*Transport)(nil)
