// SPDX-License-Identifier: MIT
package analysis

// BlockProcessor is the per-callback contract between a host runtime and a
// pipeline: fill the block, then call Process. Implementations must be
// real-time safe (no blocking, no allocation in steady state).
type BlockProcessor interface {
	Block() *[BlockSize]float32
	Process() bool
	Output() []float32
	SampleRate() int
}

// BandSource decouples consumers on other goroutines (publishers, the TUI)
// from the audio path. Snapshot is the standard implementation.
type BandSource interface {
	BandsInto(dst []float32) (uint64, error) // copy latest values, return their sequence number
	Len() int                                // number of bands
	SampleRate() int                         // sample rate of the latest values
}

// Compile-time checks for interface implementations.
var _ BlockProcessor = (*Analyzer)(nil)
var _ BandSource = (*Snapshot)(nil)
