// SPDX-License-Identifier: MIT
/*
Package analysis implements the real-time band analyzer: a sliding history
of audio samples, a window function, a forward transform, magnitude
reduction and log-spaced band aggregation.

The host writes exactly BlockSize samples into the Analyzer's block and calls
Process once per audio callback. Until the history holds a full window,
Process only appends; after that every call produces a fresh set of band
values in the output buffer.

Thread Safety:
  - An Analyzer is owned by one call path; it performs no locking.
  - Readers on other goroutines should go through a Snapshot.
  - Process performs no heap allocation once the first analysis has run.
*/
package analysis

import (
	"fmt"
	"unsafe"

	applog "ffaa/internal/log"
	"ffaa/pkg/bitint"
)

// BlockSize is the number of samples the host delivers per Process call.
const BlockSize = 128

// Defaults used by DefaultConfig.
const (
	DefaultSamplesSize = 4096
	DefaultBands       = 70
	DefaultMinFreq     = 70.0
	DefaultMaxFreq     = 1200.0
	DefaultSampleRate  = 48000
)

// MinSamplesSize is the smallest window with a bin strictly between DC and
// Nyquist.
const MinSamplesSize = 4

// Config is the static configuration of an Analyzer.
type Config struct {
	SamplesSize int        // analysis window length, power of two
	Bands       int        // number of output bands
	MinFreq     float64    // lower edge of the first band (Hz)
	MaxFreq     float64    // upper edge of the last band (Hz) when Ceiling is CeilingFixed
	Ceiling     Ceiling    // fixed MaxFreq or Nyquist
	SampleRate  int        // initial sample rate (Hz)
	Window      WindowFunc // window applied before the transform
	Engine      Engine     // transform library
}

// DefaultConfig returns the stock 4096-point, 70-band, 70-1200 Hz layout.
func DefaultConfig() Config {
	return Config{
		SamplesSize: DefaultSamplesSize,
		Bands:       DefaultBands,
		MinFreq:     DefaultMinFreq,
		MaxFreq:     DefaultMaxFreq,
		Ceiling:     CeilingFixed,
		SampleRate:  DefaultSampleRate,
		Window:      Hann,
		Engine:      EngineGonum,
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	if !bitint.IsPowerOfTwo(c.SamplesSize) {
		return fmt.Errorf("samples size must be a power of 2, got %d (next power of 2 is %d)",
			c.SamplesSize, bitint.NextPowerOfTwo(c.SamplesSize))
	}
	// Bands start at bin 1 and end at or below bin SamplesSize/2.
	if c.SamplesSize < MinSamplesSize {
		return fmt.Errorf("samples size must be at least %d, got %d", MinSamplesSize, c.SamplesSize)
	}
	if c.Bands < 1 {
		return fmt.Errorf("band count must be at least 1, got %d", c.Bands)
	}
	if c.MinFreq <= 0 {
		return fmt.Errorf("min frequency must be positive, got %g", c.MinFreq)
	}
	if c.Ceiling == CeilingFixed && c.MaxFreq <= c.MinFreq {
		return fmt.Errorf("max frequency %g must be above min frequency %g", c.MaxFreq, c.MinFreq)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.MinFreq >= float64(c.SampleRate)/2 {
		return fmt.Errorf("min frequency %g must be below Nyquist (%d Hz)", c.MinFreq, c.SampleRate/2)
	}
	return nil
}

func (c Config) layout() BandLayout {
	return BandLayout{
		Count:   c.Bands,
		MinFreq: c.MinFreq,
		MaxFreq: c.MaxFreq,
		Ceiling: c.Ceiling,
	}
}

// Analyzer owns every buffer of one pipeline instance. Independent
// instances share nothing.
type Analyzer struct {
	block [BlockSize]float32 // written by the host before each Process

	cfg        Config
	sampleRate int
	history    *History
	transform  *Transform

	window   []float64 // precomputed coefficients
	scratch  []float32 // history snapshot
	reals    []float64 // windowed input
	mags     []float64 // magnitude per bin
	bands    []Band    // cached band table
	bandsOK  bool      // bands matches sampleRate
	output   []float32 // latest band values
	analyses uint64
}

// NewAnalyzer validates cfg and allocates all pipeline buffers.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer configuration: %w", err)
	}

	coeffs, err := windowCoefficients(cfg.Window, cfg.SamplesSize)
	if err != nil {
		return nil, err
	}
	transform, err := NewTransform(cfg.SamplesSize, cfg.Engine)
	if err != nil {
		return nil, err
	}

	applog.Infof("Analysis: Initializing Analyzer (Size: %d = 2^%d, Bands: %d, Range: %.0f-%.0f Hz, Ceiling: %s, Window: %s, Engine: %s)",
		cfg.SamplesSize, bitint.Log2(cfg.SamplesSize), cfg.Bands, cfg.MinFreq, cfg.MaxFreq, cfg.Ceiling, cfg.Window, cfg.Engine)

	return &Analyzer{
		cfg:        cfg,
		sampleRate: cfg.SampleRate,
		history:    NewHistory(cfg.SamplesSize),
		transform:  transform,
		window:     coeffs,
		scratch:    make([]float32, cfg.SamplesSize),
		reals:      make([]float64, cfg.SamplesSize),
		mags:       make([]float64, cfg.SamplesSize),
		bands:      make([]Band, cfg.Bands),
		output:     make([]float32, cfg.Bands),
	}, nil
}

// Config returns the configuration the Analyzer was built with.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// SampleRate returns the current sample rate in Hz.
func (a *Analyzer) SampleRate() int {
	return a.sampleRate
}

// SetSampleRate changes the sample rate and invalidates the band table.
// A non-positive rate is a caller bug and panics.
func (a *Analyzer) SetSampleRate(rateHz int) {
	if rateHz <= 0 {
		panic(fmt.Sprintf("analysis: sample rate must be positive, got %d", rateHz))
	}
	if rateHz == a.sampleRate {
		return
	}
	applog.Debugf("Analysis: Sample rate %d -> %d Hz, band table invalidated", a.sampleRate, rateHz)
	a.sampleRate = rateHz
	a.bandsOK = false
}

// Block returns the input block the host fills before calling Process.
func (a *Analyzer) Block() *[BlockSize]float32 {
	return &a.block
}

// Output returns the latest band values in ascending frequency order. The
// slice aliases the Analyzer's buffer and is rewritten by Process.
func (a *Analyzer) Output() []float32 {
	return a.output
}

// SampleInPtr returns the address of the BlockSize-sample input block. The
// address is stable for the lifetime of the Analyzer.
func (a *Analyzer) SampleInPtr() unsafe.Pointer {
	return unsafe.Pointer(&a.block[0])
}

// FreqOutPtr returns the address of the output buffer.
func (a *Analyzer) FreqOutPtr() unsafe.Pointer {
	return unsafe.Pointer(&a.output[0])
}

// FreqOutLen returns the number of float32 values at FreqOutPtr.
func (a *Analyzer) FreqOutLen() int {
	return len(a.output)
}

// HistoryLen returns how many samples the sliding window currently holds.
func (a *Analyzer) HistoryLen() int {
	return a.history.Len()
}

// Analyses returns how many full analyses have completed.
func (a *Analyzer) Analyses() uint64 {
	return a.analyses
}

// Bands returns the band table for the current sample rate, recomputing it
// if the sample rate changed. The slice is owned by the Analyzer.
func (a *Analyzer) Bands() []Band {
	if !a.bandsOK {
		computeBandsInto(a.bands, a.cfg.layout(), a.cfg.SamplesSize, a.sampleRate)
		a.bandsOK = true
	}
	return a.bands
}

// Process appends the current block to the history and, once the history
// holds a full window, recomputes the output bands. It reports whether an
// analysis ran; when it did not, the output is left untouched.
func (a *Analyzer) Process() bool {
	a.history.Append(a.block[:])
	if !a.history.Full() {
		return false
	}

	applyWindow(a.reals, a.window, a.scratch, a.history)
	spectrum := a.transform.Forward(a.reals)
	magnitudes(a.mags, spectrum)
	aggregate(a.output, a.mags, a.Bands())

	a.analyses++
	return true
}
