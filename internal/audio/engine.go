// SPDX-License-Identifier: MIT
/*
Package audio implements the live host runtime:
- PortAudio mono capture in BlockSize-frame callbacks
- One Analyzer.Process call per block, exactly like a render quantum
- Band snapshots for readers on other goroutines
- WAV recording of the raw input with atomic state management

Thread Safety:
- The PortAudio callback is the only caller of the Analyzer
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"ffaa/internal/analysis"
	applog "ffaa/internal/log"
)

// Options configures an Engine.
type Options struct {
	DeviceID   int  // PortAudio device index, -1 for the system default
	LowLatency bool // use the device's low input latency
}

type Engine struct {
	opts Options

	// Audio input handling.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Analysis. fill counts samples staged in the analyzer block when a
	// callback delivers a frame count other than BlockSize.
	analyzer *analysis.Analyzer
	snapshot *analysis.Snapshot
	fill     int

	// Recording state.
	isRecording atomic.Bool
	recorder    *Recorder

	callbacks atomic.Uint64
	overflows atomic.Uint64
}

// NewEngine resolves the input device and binds the engine to an analyzer.
// Each completed analysis is published to snapshot.
func NewEngine(opts Options, analyzer *analysis.Analyzer, snapshot *analysis.Snapshot) (*Engine, error) {
	if analyzer == nil || snapshot == nil {
		return nil, fmt.Errorf("audio: analyzer and snapshot are required")
	}
	if snapshot.Len() != analyzer.FreqOutLen() {
		return nil, fmt.Errorf("audio: snapshot holds %d bands, analyzer produces %d", snapshot.Len(), analyzer.FreqOutLen())
	}

	inputDevice, err := InputDevice(opts.DeviceID)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		opts:        opts,
		inputDevice: inputDevice,
		analyzer:    analyzer,
		snapshot:    snapshot,
	}

	if opts.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return engine, nil
}

// SampleRate returns the analyzer's sample rate, which is also the stream's.
func (e *Engine) SampleRate() int {
	return e.analyzer.SampleRate()
}

// Device returns the resolved input device.
func (e *Engine) Device() *portaudio.DeviceInfo {
	return e.inputDevice
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: analysis.BlockSize,
		SampleRate:      float64(e.analyzer.SampleRate()),
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream on '%s': %w", e.inputDevice.Name, err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	applog.Infof("Audio: Capturing from '%s' at %d Hz, %d frames per buffer, latency %s",
		e.inputDevice.Name, e.analyzer.SampleRate(), analysis.BlockSize, e.inputLatency)
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
		applog.Infof("Audio: Input stream stopped after %d callbacks", e.callbacks.Load())
	}

	return nil
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32, flags portaudio.StreamCallbackFlags) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.callbacks.Add(1)
	if flags&portaudio.InputOverflow != 0 {
		e.overflows.Add(1)
	}

	e.processBlock(in)

	if e.isRecording.Load() && e.recorder != nil {
		if err := e.recorder.Write(in); err != nil {
			applog.Errorf("Audio: Error writing to WAV file: %v", err)
		}
	}
}

// processBlock stages in into the analyzer block and processes every block
// it completes. With FramesPerBuffer equal to BlockSize each call is exactly
// one Process.
func (e *Engine) processBlock(in []float32) {
	block := e.analyzer.Block()
	for len(in) > 0 {
		n := copy(block[e.fill:], in)
		e.fill += n
		in = in[n:]
		if e.fill < analysis.BlockSize {
			return
		}
		e.fill = 0
		if e.analyzer.Process() {
			e.snapshot.Store(e.analyzer.Output(), e.analyzer.SampleRate())
		}
	}
}

// Stats returns the number of callbacks served and how many reported an
// input overflow.
func (e *Engine) Stats() (callbacks, overflows uint64) {
	return e.callbacks.Load(), e.overflows.Load()
}

func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}

	if err := e.StopInputStream(); err != nil {
		return err
	}

	return nil
}
