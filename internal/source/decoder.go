// Package source decodes audio files to mono float32 samples and drives an
// Analyzer with them offline, block by block, the way a live host would.
package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Decoder reads mono samples from an audio file.
type Decoder interface {
	// Read fills dst with the next mono samples, downmixing when the file
	// has several channels. It returns the number of samples written and
	// io.EOF once the stream is exhausted.
	Read(dst []float32) (int, error)

	// SampleRate returns the audio sample rate in Hz.
	SampleRate() int

	// NumChannels returns the number of channels in the file (1=mono, 2=stereo).
	NumChannels() int

	// Close releases the file.
	Close() error
}

// Open picks a decoder from the file extension.
func Open(filename string) (Decoder, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".wav", ".wave":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("unsupported audio format '%s' (want .wav, .mp3 or .flac)", ext)
	}
}
