// SPDX-License-Identifier: MIT
package analysis

import (
	"strings"
	"testing"
	"unsafe"

	"ffaa/pkg/utils"
)

const (
	blocksPerWindow = DefaultSamplesSize / BlockSize
	toneBin         = 40 // 468.75 Hz at 48 kHz, 430.66 Hz at 44.1 kHz
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewAnalyzer() error: %v", err)
	}
	return a
}

// feed copies each block into the analyzer and processes it, returning the
// result of the last Process call.
func feed(a *Analyzer, samples []float32) bool {
	var analysed bool
	for _, block := range utils.SplitBlocks(samples, BlockSize) {
		copy(a.Block()[:], block)
		analysed = a.Process()
	}
	return analysed
}

func bandContaining(bands []Band, bin int) int {
	for i, b := range bands {
		if b.Contains(bin) {
			return i
		}
	}
	return -1
}

func TestAnalyzerColdStartGating(t *testing.T) {
	a := newTestAnalyzer(t)
	tone := utils.GenerateBinTone(DefaultSamplesSize, toneBin, DefaultSamplesSize)
	blocks := utils.SplitBlocks(tone, BlockSize)

	for i, block := range blocks[:blocksPerWindow-1] {
		copy(a.Block()[:], block)
		if a.Process() {
			t.Fatalf("block %d: analysis ran before the window was full", i)
		}
		for j, v := range a.Output() {
			if v != 0 {
				t.Fatalf("block %d: output[%d] = %f before the window was full", i, j, v)
			}
		}
		if a.HistoryLen() != (i+1)*BlockSize {
			t.Fatalf("block %d: HistoryLen() = %d", i, a.HistoryLen())
		}
	}

	copy(a.Block()[:], blocks[blocksPerWindow-1])
	if !a.Process() {
		t.Fatal("analysis should run once the window is full")
	}
	if a.Analyses() != 1 {
		t.Errorf("Analyses() = %d, want 1", a.Analyses())
	}

	var nonZero bool
	for _, v := range a.Output() {
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Error("output should be populated after the first full window")
	}
}

func TestAnalyzerSilenceIsZero(t *testing.T) {
	a := newTestAnalyzer(t)
	feed(a, make([]float32, DefaultSamplesSize+BlockSize))

	for i, v := range a.Output() {
		if v != 0 {
			t.Errorf("output[%d] = %f, want exactly 0", i, v)
		}
	}
}

func TestAnalyzerOutputNonNegative(t *testing.T) {
	a := newTestAnalyzer(t)
	feed(a, utils.GenerateComplexWave(2*DefaultSamplesSize, DefaultSampleRate))

	for i, v := range a.Output() {
		if v < 0 {
			t.Errorf("output[%d] = %f, want >= 0", i, v)
		}
	}
}

func TestAnalyzerPureToneLocalization(t *testing.T) {
	a := newTestAnalyzer(t)
	freq := BinToFrequency(toneBin, DefaultSamplesSize, DefaultSampleRate)
	tone := utils.GenerateSineWave(DefaultSamplesSize, DefaultSampleRate, freq)

	if !feed(a, tone) {
		t.Fatal("expected an analysis after one full window")
	}

	bin := FrequencyToBin(freq, DefaultSamplesSize, DefaultSampleRate)
	want := bandContaining(a.Bands(), bin)
	if want < 0 {
		t.Fatalf("no band contains bin %d", bin)
	}
	out := a.Output()
	for i, v := range out {
		if v > out[want] {
			t.Errorf("band %d (%f) exceeds tone band %d (%f)", i, v, want, out[want])
		}
	}
	t.Logf("%.2f Hz -> bin %d -> band %d %+v", freq, bin, want, a.Bands()[want])
}

func TestAnalyzerSampleRateChangeMovesPeak(t *testing.T) {
	a := newTestAnalyzer(t)
	tone := utils.GenerateBinTone(DefaultSamplesSize+BlockSize, toneBin, DefaultSamplesSize)

	feed(a, tone[:DefaultSamplesSize])
	before := utils.FindPeakBand(a.Output())
	if want := bandContaining(a.Bands(), toneBin); before != want {
		t.Fatalf("peak band at 48 kHz = %d, want %d", before, want)
	}

	a.SetSampleRate(44100)
	feed(a, tone[DefaultSamplesSize:])

	after := utils.FindPeakBand(a.Output())
	want := bandContaining(ComputeBands(DefaultConfig().layout(), DefaultSamplesSize, 44100), toneBin)
	if after != want {
		t.Errorf("peak band at 44.1 kHz = %d, want %d", after, want)
	}
	if after == before {
		t.Errorf("peak band did not move after the sample rate change (still %d)", after)
	}
}

func TestAnalyzerSetSampleRateSameValueKeepsTable(t *testing.T) {
	a := newTestAnalyzer(t)
	first := a.Bands()[10]
	a.SetSampleRate(DefaultSampleRate)
	if !a.bandsOK {
		t.Error("setting the same rate should not invalidate the band table")
	}
	if a.Bands()[10] != first {
		t.Error("band table changed without a rate change")
	}
}

func TestAnalyzerSetSampleRatePanicsOnNonPositive(t *testing.T) {
	a := newTestAnalyzer(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero sample rate")
		}
	}()
	a.SetSampleRate(0)
}

func TestAnalyzerInstancesAreIndependent(t *testing.T) {
	a := newTestAnalyzer(t)
	b := newTestAnalyzer(t)

	feed(a, utils.GenerateComplexWave(DefaultSamplesSize, DefaultSampleRate))

	if b.HistoryLen() != 0 || b.Analyses() != 0 {
		t.Error("processing one analyzer touched another")
	}
	if a.SampleInPtr() == b.SampleInPtr() || a.FreqOutPtr() == b.FreqOutPtr() {
		t.Error("analyzers share buffers")
	}
}

func TestAnalyzerPointersAreStableAndAliased(t *testing.T) {
	a := newTestAnalyzer(t)
	in := a.SampleInPtr()
	out := a.FreqOutPtr()

	host := unsafe.Slice((*float32)(in), BlockSize)
	tone := utils.GenerateBinTone(DefaultSamplesSize, toneBin, DefaultSamplesSize)
	for _, block := range utils.SplitBlocks(tone, BlockSize) {
		copy(host, block)
		a.Process()
	}

	if a.SampleInPtr() != in || a.FreqOutPtr() != out {
		t.Fatal("buffer addresses moved during processing")
	}
	view := unsafe.Slice((*float32)(out), a.FreqOutLen())
	for i := range view {
		if view[i] != a.Output()[i] {
			t.Fatalf("raw view[%d] = %f, Output()[%d] = %f", i, view[i], i, a.Output()[i])
		}
	}
	if a.FreqOutLen() != DefaultBands {
		t.Errorf("FreqOutLen() = %d, want %d", a.FreqOutLen(), DefaultBands)
	}
}

func TestNewAnalyzerValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Default", func(c *Config) {}, ""},
		{"Not Power Of Two", func(c *Config) { c.SamplesSize = 4000 }, "next power of 2 is 4096"},
		{"Two Point Window", func(c *Config) { c.SamplesSize = 2; c.Bands = 3 }, "at least 4"},
		{"Zero Size", func(c *Config) { c.SamplesSize = 0 }, "samples size"},
		{"Four Point Window", func(c *Config) { c.SamplesSize = 4 }, ""},
		{"No Bands", func(c *Config) { c.Bands = 0 }, "band count"},
		{"Zero Min", func(c *Config) { c.MinFreq = 0 }, "min frequency"},
		{"Inverted Range", func(c *Config) { c.MaxFreq = 50 }, "max frequency"},
		{"Nyquist Ignores Max", func(c *Config) { c.MaxFreq = 0; c.Ceiling = CeilingNyquist }, ""},
		{"Zero Rate", func(c *Config) { c.SampleRate = 0 }, "sample rate"},
		{"Min Above Nyquist", func(c *Config) { c.SampleRate = 100 }, "Nyquist"},
		{"Unknown Window", func(c *Config) { c.Window = WindowFunc(42) }, "window"},
		{"Unknown Engine", func(c *Config) { c.Engine = Engine(42) }, "engine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewAnalyzer(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzerProcessHotPath(t *testing.T) {
	a := newTestAnalyzer(t)
	feed(a, utils.GenerateComplexWave(DefaultSamplesSize, DefaultSampleRate))

	// Warm-up call (band table and plan already built by the full window).
	a.Process()
	allocs := testing.AllocsPerRun(100, func() {
		a.Process()
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Analyzer.Process hot path, got %.1f", allocs)
	}
}

func BenchmarkAnalyzerProcess(b *testing.B) {
	a, _ := NewAnalyzer(DefaultConfig())
	feed(a, utils.GenerateComplexWave(DefaultSamplesSize, DefaultSampleRate))

	b.ReportAllocs()
	for b.Loop() {
		a.Process()
	}
}
