// SPDX-License-Identifier: MIT
/*
Package host exposes one Analyzer through the flat boundary an audio host
drives: set the sample rate, learn where the input and output buffers live,
and call ProcessSamples once per filled block.

There is exactly one instance per isolated execution context (a wasm
reactor, an embedding process). The first boundary call creates it with
the default configuration unless Register installed one beforehand.
Callers are expected to drive the boundary from a single thread, the way
an audio render callback does.
*/
package host

import (
	"fmt"
	"sync"
	"unsafe"

	"ffaa/internal/analysis"
)

var (
	once     sync.Once
	instance *analysis.Analyzer
)

// Register installs a as the context's instance. It must be called before
// any other boundary function and at most once.
func Register(a *analysis.Analyzer) error {
	if a == nil {
		return fmt.Errorf("host: cannot register a nil analyzer")
	}
	registered := false
	once.Do(func() {
		instance = a
		registered = true
	})
	if !registered {
		return fmt.Errorf("host: an analyzer is already registered")
	}
	return nil
}

// Default returns the context's instance, creating it from
// analysis.DefaultConfig on first use.
func Default() *analysis.Analyzer {
	once.Do(func() {
		a, err := analysis.NewAnalyzer(analysis.DefaultConfig())
		if err != nil {
			panic(fmt.Sprintf("host: default analyzer: %v", err))
		}
		instance = a
	})
	return instance
}

// SetSampleRate changes the sample rate used for future band tables.
// The history is kept.
func SetSampleRate(rateHz int) {
	Default().SetSampleRate(rateHz)
}

// SampleInPtr returns the address of the analysis.BlockSize float32 input
// slots. The address is stable for the lifetime of the context.
func SampleInPtr() unsafe.Pointer {
	return Default().SampleInPtr()
}

// FreqOutPtr returns the address of the band output buffer.
func FreqOutPtr() unsafe.Pointer {
	return Default().FreqOutPtr()
}

// FreqOutLen returns the number of float32 values at FreqOutPtr.
func FreqOutLen() int {
	return Default().FreqOutLen()
}

// ProcessSamples consumes the block currently at SampleInPtr.
func ProcessSamples() {
	Default().Process()
}
