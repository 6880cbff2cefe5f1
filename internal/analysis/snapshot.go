// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"sync"
)

// Snapshot holds a copy of the most recent band values for readers on
// other goroutines (publishers, the TUI). The audio path calls Store after
// each analysis; readers call BandsInto with their own buffer.
type Snapshot struct {
	mu         sync.RWMutex
	bands      []float32
	sequence   uint64
	sampleRate int
}

// NewSnapshot allocates a Snapshot for n bands.
func NewSnapshot(n int) *Snapshot {
	return &Snapshot{bands: make([]float32, n)}
}

// Store copies values in and bumps the sequence number.
func (s *Snapshot) Store(values []float32, sampleRate int) {
	s.mu.Lock()
	copy(s.bands, values)
	s.sequence++
	s.sampleRate = sampleRate
	s.mu.Unlock()
}

// BandsInto copies the latest values into dst and returns their sequence
// number. dst must have length Len().
func (s *Snapshot) BandsInto(dst []float32) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(dst) != len(s.bands) {
		return 0, fmt.Errorf("destination slice length %d does not match band count %d", len(dst), len(s.bands))
	}
	copy(dst, s.bands)
	return s.sequence, nil
}

// Len returns the band count.
func (s *Snapshot) Len() int {
	return len(s.bands)
}

// Sequence returns how many times Store has been called.
func (s *Snapshot) Sequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequence
}

// SampleRate returns the sample rate recorded with the latest Store.
func (s *Snapshot) SampleRate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampleRate
}
