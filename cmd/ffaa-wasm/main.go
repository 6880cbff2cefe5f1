//go:build wasip1

// Command ffaa-wasm builds the analyzer as a WASI reactor for an audio
// worklet host:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o ffaa.wasm ./cmd/ffaa-wasm
//
// The host calls set_sample_rate once, reads sample_in_ptr, freq_out_ptr and
// freq_out_len, then per render quantum writes 128 float32 samples at the
// input address, calls process_samples and reads the bands back.
package main

import (
	"unsafe"

	"ffaa/internal/host"
)

//go:wasmexport set_sample_rate
func setSampleRate(rateHz uint32) {
	host.SetSampleRate(int(rateHz))
}

//go:wasmexport sample_in_ptr
func sampleInPtr() unsafe.Pointer {
	return host.SampleInPtr()
}

//go:wasmexport freq_out_ptr
func freqOutPtr() unsafe.Pointer {
	return host.FreqOutPtr()
}

//go:wasmexport freq_out_len
func freqOutLen() uint32 {
	return uint32(host.FreqOutLen())
}

//go:wasmexport process_samples
func processSamples() {
	host.ProcessSamples()
}

func main() {}
