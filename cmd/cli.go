// Package cmd is the ffaa command line.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ffaa/internal/config"
	applog "ffaa/internal/log"
	"ffaa/pkg/build"
)

// options holds flag values. Only flags the user set override the loaded
// configuration.
type options struct {
	configPath string
	logLevel   string

	sampleRate  int
	samplesSize int
	bands       int
	minFreq     float64
	maxFreq     float64
	ceiling     string
	window      string
	engine      string

	deviceID   int
	lowLatency bool
	pick       bool
	record     bool
	outputFile string

	tui     bool
	udp     bool
	udpAddr string
	ws      bool
	wsAddr  string

	cfg *config.Config
}

// Execute runs the CLI with args and returns the first error.
func Execute(ctx context.Context, args []string, stdout io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         build.Description,
		Long:          build.Description + ".\n\nWithout a subcommand, captures live input and analyzes it block by block.",
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, opts)
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default ./"+config.DefaultPath+" if present)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Analysis layout
	pf.IntVarP(&opts.sampleRate, "sample-rate", "s", 0, "Sample rate, measured in Hertz (Hz)")
	pf.IntVar(&opts.samplesSize, "samples-size", 0, "Analysis window length in samples (power of 2)")
	pf.IntVar(&opts.bands, "bands", 0, "Number of output bands")
	pf.Float64Var(&opts.minFreq, "min-freq", 0, "Lower edge of the first band (Hz)")
	pf.Float64Var(&opts.maxFreq, "max-freq", 0, "Upper edge of the last band (Hz)")
	pf.StringVar(&opts.ceiling, "ceiling", "", "Top band edge: fixed (max-freq) or nyquist")
	pf.StringVar(&opts.window, "window", "", "Window function: hann, hamming, blackman, blackmannuttall, bartletthann, lanczos, nuttall")
	pf.StringVar(&opts.engine, "engine", "", "Transform engine: gonum or gofft")

	// Publishing
	pf.BoolVar(&opts.udp, "udp", false, "Send band frames over UDP")
	pf.StringVar(&opts.udpAddr, "udp-addr", "", "UDP target address (host:port)")
	pf.BoolVar(&opts.ws, "ws", false, "Serve band frames to WebSocket clients")
	pf.StringVar(&opts.wsAddr, "ws-addr", "", "WebSocket listen address (host:port)")

	// Live capture
	f := rootCmd.Flags()
	f.IntVarP(&opts.deviceID, "device", "d", -1, "Input device ID. Use 'list' command to see available devices.")
	f.BoolVarP(&opts.lowLatency, "low-latency", "l", false, "Use the device's low input latency")
	f.BoolVar(&opts.pick, "pick", false, "Choose the input device and sample rate interactively")
	f.BoolVarP(&opts.record, "record", "r", false, "Record the raw input to a WAV file")
	f.StringVarP(&opts.outputFile, "output", "o", "", "Recording file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")
	f.BoolVar(&opts.tui, "tui", false, "Show the live band view")

	rootCmd.AddCommand(newListCmd(), newBandsCmd(opts), newAnalyzeCmd(opts))
	return rootCmd
}

// load reads the config file, applies flags the user set, validates the
// result and configures logging.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("log-level", func() { cfg.LogLevel = o.logLevel })
	set("sample-rate", func() { cfg.Analysis.SampleRate = o.sampleRate })
	set("samples-size", func() { cfg.Analysis.SamplesSize = o.samplesSize })
	set("bands", func() { cfg.Analysis.Bands = o.bands })
	set("min-freq", func() { cfg.Analysis.MinFreq = o.minFreq })
	set("max-freq", func() { cfg.Analysis.MaxFreq = o.maxFreq })
	set("ceiling", func() { cfg.Analysis.Ceiling = o.ceiling })
	set("window", func() { cfg.Analysis.Window = o.window })
	set("engine", func() { cfg.Analysis.Engine = o.engine })
	set("udp", func() { cfg.Transport.UDPEnabled = o.udp })
	set("udp-addr", func() { cfg.Transport.UDPTargetAddress = o.udpAddr })
	set("ws", func() { cfg.Transport.WebSocketEnabled = o.ws })
	set("ws-addr", func() { cfg.Transport.WebSocketAddress = o.wsAddr })
	set("device", func() { cfg.Audio.InputDevice = o.deviceID })
	set("low-latency", func() { cfg.Audio.LowLatency = o.lowLatency })
	set("record", func() { cfg.Recording.Enabled = o.record })
	set("output", func() { cfg.Recording.OutputFile = o.outputFile })
	set("tui", func() { cfg.TUI.Enabled = o.tui })

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	applog.SetLevel(level)
	o.cfg = cfg
	return nil
}
