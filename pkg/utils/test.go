// SPDX-License-Identifier: MIT
package utils

import "math"

// GenerateSineWave returns size samples of a unit-amplitude sine at
// frequency Hz, sampled at sampleRate.
func GenerateSineWave(size int, sampleRate, frequency float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2 * math.Pi * frequency * t))
	}
	return buffer
}

// GenerateBinTone returns size samples of a sine that completes exactly bin
// cycles every window samples, so its energy lands on a single transform
// bin with no leakage between neighbouring bins beyond the window's main lobe.
func GenerateBinTone(size, bin, window int) []float32 {
	buffer := make([]float32, size)
	step := 2 * math.Pi * float64(bin) / float64(window)
	for i := range buffer {
		buffer[i] = float32(math.Sin(step * float64(i)))
	}
	return buffer
}

// GenerateComplexWave returns a 440 Hz fundamental plus two harmonics.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// SplitBlocks cuts samples into consecutive blocks of size samples. A short
// final block is zero-padded.
func SplitBlocks(samples []float32, size int) [][]float32 {
	var blocks [][]float32
	for start := 0; start < len(samples); start += size {
		block := make([]float32, size)
		copy(block, samples[start:min(start+size, len(samples))])
		blocks = append(blocks, block)
	}
	return blocks
}

// FindPeakBand returns the index of the largest value, or 0 for an empty
// slice. Ties resolve to the lowest index.
func FindPeakBand(values []float32) int {
	peak := 0
	for i, v := range values {
		if v > values[peak] {
			peak = i
		}
	}
	return peak
}
