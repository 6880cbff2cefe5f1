// Package transport publishes band frames to consumers outside the audio
// path: WebSocket clients, UDP listeners and the log.
package transport

import "time"

// Frame is one published set of band values.
type Frame struct {
	Sequence   uint64    // analysis sequence number from the band source
	Timestamp  time.Time // when the frame was taken
	SampleRate int       // sample rate the bands were computed at
	Bands      []float32 // band values in ascending frequency order
}

// Transport sends frames to one kind of consumer. Implementations must not
// retain f.Bands after Send returns; the publisher reuses the buffer.
// Implementations should be thread-safe.
type Transport interface {
	Send(f Frame) error
	Close() error
}

// FrequencyMessage is the JSON message sent to WebSocket clients:
//
//	{"type":"frequencies","freqs":[...]}
type FrequencyMessage struct {
	Type  string    `json:"type"`
	Freqs []float32 `json:"freqs"`
}

// MessageTypeFrequencies is the Type of every FrequencyMessage.
const MessageTypeFrequencies = "frequencies"

// NewFrequencyMessage wraps the frame's bands. The message aliases f.Bands.
func NewFrequencyMessage(f Frame) FrequencyMessage {
	return FrequencyMessage{Type: MessageTypeFrequencies, Freqs: f.Bands}
}
