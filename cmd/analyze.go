package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ffaa/internal/source"
	"ffaa/internal/transport"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var (
		every  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyze a WAV, MP3 or FLAC file block by block",
		Long: "Feeds the file through the analyzer in the same fixed-size blocks a live host uses " +
			"and prints one line per completed analysis. The sample rate comes from the file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if every < 1 {
				return fmt.Errorf("--every must be at least 1, got %d", every)
			}
			cfg, err := opts.cfg.AnalyzerConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pub, err := newTransports(opts.cfg)
			if err != nil {
				return err
			}
			defer closeAll(pub)

			var seq uint64
			sum, err := source.AnalyzeFile(cmd.Context(), args[0], cfg, func(r source.Result) error {
				seq++
				frame := transport.Frame{Sequence: seq, Timestamp: time.Now(), SampleRate: r.SampleRate, Bands: r.Bands}
				for _, t := range pub {
					if err := t.Send(frame); err != nil {
						return err
					}
				}
				if r.Index%every != 0 {
					return nil
				}
				if asJSON {
					return writeJSONLine(out, transport.NewFrequencyMessage(frame))
				}
				return writeSummaryLine(out, r)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%d Hz, %d channel(s), %d samples, %d blocks, %d analyses\n",
				sum.SampleRate, sum.Channels, sum.Samples, sum.Blocks, sum.Analyses)
			return nil
		},
	}

	cmd.Flags().IntVar(&every, "every", 1, "Print every Nth analysis")
	cmd.Flags().BoolVar(&asJSON, "json", false, `Print {"type":"frequencies","freqs":[...]} lines`)
	return cmd
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// writeSummaryLine prints the analysis time, the loudest band and its value.
func writeSummaryLine(w io.Writer, r source.Result) error {
	peak := 0
	for i, v := range r.Bands {
		if v > r.Bands[peak] {
			peak = i
		}
	}
	_, err := fmt.Fprintf(w, "%6d  %10s  peak band %2d  %8.3f  %s\n",
		r.Index, r.Time.Round(time.Millisecond), peak, r.Bands[peak], sparkline(r.Bands))
	return err
}

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// sparkline renders bands relative to their own maximum.
func sparkline(bands []float32) string {
	var hi float32
	for _, v := range bands {
		hi = max(hi, v)
	}
	out := make([]rune, len(bands))
	for i, v := range bands {
		idx := 0
		if hi > 0 {
			idx = int(v / hi * float32(len(sparkGlyphs)-1))
		}
		out[i] = sparkGlyphs[idx]
	}
	return string(out)
}
