// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"strings"

	"github.com/argusdusty/gofft"
	"gonum.org/v1/gonum/dsp/fourier"

	"ffaa/pkg/bitint"
)

// Engine selects the library that executes the forward transform.
type Engine int

const (
	EngineGonum Engine = iota // gonum dsp/fourier complex FFT
	EngineGofft               // argusdusty/gofft in-place radix-2 FFT
)

func (e Engine) String() string {
	switch e {
	case EngineGonum:
		return "gonum"
	case EngineGofft:
		return "gofft"
	default:
		return fmt.Sprintf("Engine(%d)", int(e))
	}
}

// ParseEngine converts a case-insensitive engine name to an Engine.
func ParseEngine(name string) (Engine, error) {
	switch strings.ToLower(name) {
	case "gonum", "":
		return EngineGonum, nil
	case "gofft":
		return EngineGofft, nil
	default:
		return EngineGonum, fmt.Errorf("unknown transform engine: '%s'", name)
	}
}

// Transform runs a forward transform of a fixed power-of-two length over a
// real input. The execution plan is built on the first call to Forward and
// reused for the lifetime of the Transform.
type Transform struct {
	size   int
	engine Engine

	plan     *fourier.CmplxFFT // nil until first use (gonum)
	prepared bool              // gofft tables built

	imags []float64    // constant zero imaginary input
	in    []complex128 // packed input
	out   []complex128 // transform output, valid until the next Forward
}

// NewTransform returns a Transform for size points. size must be a power of
// two.
func NewTransform(size int, engine Engine) (*Transform, error) {
	if !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("transform size must be a power of 2, got %d", size)
	}
	if engine != EngineGonum && engine != EngineGofft {
		return nil, fmt.Errorf("unknown transform engine %d", int(engine))
	}
	return &Transform{
		size:   size,
		engine: engine,
		imags:  make([]float64, size),
		in:     make([]complex128, size),
		out:    make([]complex128, size),
	}, nil
}

// Size returns the transform length.
func (t *Transform) Size() int {
	return t.size
}

// Forward transforms reals (with an identically zero imaginary part) and
// returns the full-length spectrum. The returned slice is owned by the
// Transform and is overwritten by the next call.
func (t *Transform) Forward(reals []float64) []complex128 {
	if len(reals) != t.size {
		panic(fmt.Sprintf("transform input length %d, want %d", len(reals), t.size))
	}
	for i, re := range reals {
		t.in[i] = complex(re, t.imags[i])
	}

	switch t.engine {
	case EngineGofft:
		if !t.prepared {
			if err := gofft.Prepare(t.size); err != nil {
				panic(fmt.Sprintf("gofft prepare %d: %v", t.size, err))
			}
			t.prepared = true
		}
		copy(t.out, t.in)
		if err := gofft.FFT(t.out); err != nil {
			panic(fmt.Sprintf("gofft: %v", err))
		}
	default:
		if t.plan == nil {
			t.plan = fourier.NewCmplxFFT(t.size)
		}
		t.plan.Coefficients(t.out, t.in)
	}
	return t.out
}
