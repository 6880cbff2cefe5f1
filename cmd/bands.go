package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ffaa/internal/analysis"
)

func newBandsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bands",
		Short: "Print the band table for the configured layout and sample rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.cfg.AnalyzerConfig()
			if err != nil {
				return err
			}
			a, err := analysis.NewAnalyzer(cfg)
			if err != nil {
				return err
			}
			return printBands(cmd.OutOrStdout(), cfg, a.Bands())
		},
	}
}

func printBands(w io.Writer, cfg analysis.Config, bands []analysis.Band) error {
	fmt.Fprintf(w, "%d bands, %d-point window at %d Hz (%.2f Hz per bin), window %s\n\n",
		len(bands), cfg.SamplesSize, cfg.SampleRate,
		analysis.BinToFrequency(1, cfg.SamplesSize, cfg.SampleRate), cfg.Window)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "band\tstart bin\tend bin\tbins\tfrom Hz\tto Hz\t")
	for i, b := range bands {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.1f\t%.1f\t\n", i, b.Start, b.End, b.Width(),
			analysis.BinToFrequency(b.Start, cfg.SamplesSize, cfg.SampleRate),
			analysis.BinToFrequency(b.End, cfg.SamplesSize, cfg.SampleRate))
	}
	return tw.Flush()
}
