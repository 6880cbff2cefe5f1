package source

import (
	"context"
	"fmt"
	"io"
	"time"

	"ffaa/internal/analysis"
	applog "ffaa/internal/log"
)

// Result is one completed analysis. Bands aliases the analyzer's output and
// is only valid until the callback returns.
type Result struct {
	Index      int           // zero-based analysis number
	Time       time.Duration // stream position at the end of the block that produced it
	SampleRate int
	Bands      []float32
}

// Summary describes a finished run.
type Summary struct {
	SampleRate int
	Channels   int
	Samples    int // mono samples decoded
	Blocks     int // blocks processed, including a zero-padded final block
	Analyses   int
}

// Analyze feeds dec through a in BlockSize-sample blocks, calling fn
// after every block that completed an analysis. The analyzer is switched
// to the decoder's sample rate first. A short final block is zero-padded.
// Decoding stops early when ctx is cancelled or fn returns an error.
func Analyze(ctx context.Context, dec Decoder, a *analysis.Analyzer, fn func(Result) error) (Summary, error) {
	sum := Summary{SampleRate: dec.SampleRate(), Channels: dec.NumChannels()}
	if sum.SampleRate <= 0 {
		return sum, fmt.Errorf("decoder reports invalid sample rate %d", sum.SampleRate)
	}
	a.SetSampleRate(sum.SampleRate)

	block := a.Block()
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		n, err := readFull(dec, block[:])
		if n == 0 && err == io.EOF {
			return sum, nil
		}
		if err != nil && err != io.EOF {
			return sum, err
		}
		clear(block[n:])
		sum.Samples += n
		sum.Blocks++

		if a.Process() {
			res := Result{
				Index:      sum.Analyses,
				Time:       time.Duration(sum.Blocks*analysis.BlockSize) * time.Second / time.Duration(sum.SampleRate),
				SampleRate: sum.SampleRate,
				Bands:      a.Output(),
			}
			sum.Analyses++
			if fn != nil {
				if err := fn(res); err != nil {
					return sum, err
				}
			}
		}
		if err == io.EOF {
			return sum, nil
		}
	}
}

// readFull reads until dst is full or the decoder is exhausted.
func readFull(dec Decoder, dst []float32) (int, error) {
	n := 0
	for n < len(dst) {
		m, err := dec.Read(dst[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// AnalyzeFile opens filename, builds an Analyzer from cfg and runs Analyze.
func AnalyzeFile(ctx context.Context, filename string, cfg analysis.Config, fn func(Result) error) (Summary, error) {
	dec, err := Open(filename)
	if err != nil {
		return Summary{}, err
	}
	defer dec.Close()

	cfg.SampleRate = dec.SampleRate()
	a, err := analysis.NewAnalyzer(cfg)
	if err != nil {
		return Summary{}, err
	}

	applog.Infof("Source: Analyzing %s (%d Hz, %d channel(s))", filename, dec.SampleRate(), dec.NumChannels())
	sum, err := Analyze(ctx, dec, a, fn)
	if err != nil {
		return sum, fmt.Errorf("analyzing %s: %w", filename, err)
	}
	applog.Infof("Source: %d samples, %d blocks, %d analyses", sum.Samples, sum.Blocks, sum.Analyses)
	return sum, nil
}
