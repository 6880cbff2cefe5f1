// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"strings"
)

// compression is the exponent applied to each band's mean magnitude. It
// flattens spikes relative to quiet bands for display.
const compression = 0.35

// Ceiling selects where the top edge of the highest band sits.
type Ceiling int

const (
	// CeilingFixed uses the configured MaxFreq regardless of sample rate.
	CeilingFixed Ceiling = iota
	// CeilingNyquist tracks half the current sample rate.
	CeilingNyquist
)

func (c Ceiling) String() string {
	switch c {
	case CeilingFixed:
		return "fixed"
	case CeilingNyquist:
		return "nyquist"
	default:
		return fmt.Sprintf("Ceiling(%d)", int(c))
	}
}

// ParseCeiling converts "fixed" or "nyquist" to a Ceiling.
func ParseCeiling(name string) (Ceiling, error) {
	switch strings.ToLower(name) {
	case "fixed", "":
		return CeilingFixed, nil
	case "nyquist":
		return CeilingNyquist, nil
	default:
		return CeilingFixed, fmt.Errorf("unknown ceiling mode: '%s'", name)
	}
}

// Band is a half-open bin range [Start, End) of the magnitude spectrum.
type Band struct {
	Start int
	End   int
}

// Width returns the number of bins in the band.
func (b Band) Width() int {
	return b.End - b.Start
}

// Contains reports whether bin falls inside the band.
func (b Band) Contains(bin int) bool {
	return bin >= b.Start && bin < b.End
}

// BandLayout is the static configuration the band table is derived from.
type BandLayout struct {
	Count   int
	MinFreq float64
	MaxFreq float64
	Ceiling Ceiling
}

// ceiling returns the effective top edge in Hz, never above Nyquist.
func (l BandLayout) ceiling(sampleRate int) float64 {
	nyquist := float64(sampleRate) / 2
	if l.Ceiling == CeilingNyquist {
		return nyquist
	}
	return math.Min(l.MaxFreq, nyquist)
}

// FrequencyToBin maps a frequency to floor(freq*size/sampleRate).
func FrequencyToBin(freq float64, size, sampleRate int) int {
	return int(math.Floor(freq * float64(size) / float64(sampleRate)))
}

// BinToFrequency returns the lower edge frequency of bin in Hz.
func BinToFrequency(bin, size, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / float64(size)
}

// ComputeBands derives the band table for a transform of size points at
// sampleRate. Edges are spaced geometrically between MinFreq and the
// ceiling; each band then starts at bin 1 or later and spans at least one
// bin, so adjacent low bands may share a bin when their edges round to the
// same index.
func ComputeBands(l BandLayout, size, sampleRate int) []Band {
	return computeBandsInto(make([]Band, l.Count), l, size, sampleRate)
}

func computeBandsInto(dst []Band, l BandLayout, size, sampleRate int) []Band {
	lo := l.MinFreq
	hi := l.ceiling(sampleRate)
	half := size / 2

	prev := FrequencyToBin(lo, size, sampleRate)
	for k := range l.Count {
		freq := hi
		if k+1 < l.Count {
			freq = lo * math.Pow(hi/lo, float64(k+1)/float64(l.Count))
		}
		next := FrequencyToBin(freq, size, sampleRate)

		start := max(prev, 1)
		end := max(next, start+1)
		if end > half {
			end = half
			start = min(start, end-1)
		}
		dst[k] = Band{Start: start, End: end}
		prev = next
	}
	return dst
}

// aggregate writes mean(mags[b.Start:b.End])^0.35 for each band into dst.
func aggregate(dst []float32, mags []float64, bands []Band) {
	for i, b := range bands {
		var sum float64
		for _, m := range mags[b.Start:b.End] {
			sum += m
		}
		energy := sum / float64(b.Width())
		dst[i] = float32(math.Pow(energy, compression))
	}
}
