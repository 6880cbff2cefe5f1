// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"ffaa/internal/analysis"
	applog "ffaa/internal/log"
)

// RecordingBitDepth is the PCM depth of recorded WAV files.
const RecordingBitDepth = 16

// Recorder writes mono float32 blocks to a 16-bit PCM WAV file.
type Recorder struct {
	file      *os.File
	encoder   *wav.Encoder
	sampleBuf *audio.IntBuffer // Reusable buffer for format conversion
	frames    int
}

// NewRecorder creates filename and prepares an encoder for blocks of up to
// blockSize samples.
func NewRecorder(filename string, sampleRate, blockSize int) (*Recorder, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	return &Recorder{
		file:    file,
		encoder: wav.NewEncoder(file, sampleRate, RecordingBitDepth, 1, 1),
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 1,
				SampleRate:  sampleRate,
			},
			Data:           make([]int, blockSize),
			SourceBitDepth: RecordingBitDepth,
		},
	}, nil
}

// Write converts samples to 16-bit PCM and appends them. Values outside
// [-1, 1] are clipped.
func (r *Recorder) Write(samples []float32) error {
	for len(samples) > 0 {
		n := min(len(samples), cap(r.sampleBuf.Data))
		r.sampleBuf.Data = r.sampleBuf.Data[:n]
		for i, s := range samples[:n] {
			r.sampleBuf.Data[i] = floatToPCM16(s)
		}
		if err := r.encoder.Write(r.sampleBuf); err != nil {
			return err
		}
		r.frames += n
		samples = samples[n:]
	}
	return nil
}

// Frames returns the number of samples written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	if err := r.encoder.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

func floatToPCM16(s float32) int {
	v := math.Round(float64(s) * math.MaxInt16)
	return int(max(min(v, math.MaxInt16), math.MinInt16))
}

func (e *Engine) StartRecording(filename string) error {
	if e.isRecording.Load() {
		return fmt.Errorf("already recording")
	}

	recorder, err := NewRecorder(filename, e.analyzer.SampleRate(), analysis.BlockSize)
	if err != nil {
		return err
	}
	e.recorder = recorder
	e.isRecording.Store(true)

	applog.Infof("Audio: Recording input to %s", filename)
	return nil
}

func (e *Engine) StopRecording() error {
	if !e.isRecording.Swap(false) {
		return nil
	}

	recorder := e.recorder
	e.recorder = nil
	if recorder == nil {
		return nil
	}
	if err := recorder.Close(); err != nil {
		return err
	}
	applog.Infof("Audio: Recording closed after %d frames", recorder.Frames())
	return nil
}
